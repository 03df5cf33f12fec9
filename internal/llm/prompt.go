package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/trustscan/internal/model"
)

// completer is a chat model that answers a system+user prompt with a JSON object
type completer interface {
	complete(ctx context.Context, system, prompt string) (string, error)
}

const judgeSystem = `You are a natural-language inference model used to detect hallucinated statements.
Given a claim and an optional context, estimate the probability that the claim is
contradicted by the context or by well-established knowledge (contradiction), that it
cannot be decided (neutral), or that it is supported (entailment).
Respond with a single JSON object: {"contradiction": p, "neutral": p, "entailment": p}.
The three probabilities must sum to 1. Do not add any other text.`

const classifySystem = `You are a zero-shot text classifier.
Score how well the text matches each candidate label. Scores are probabilities that sum to 1.
Respond with a single JSON object mapping every label to its score. Do not add any other text.`

const entitySystem = `You are a named entity recognizer.
Find the people (PER), organizations (ORG), locations (LOC) and other names (MISC) in the text.
Respond with a single JSON object: {"entities": [{"text": "...", "type": "PER", "score": 0.0}]}.
Use an empty list when there are none. Do not add any other text.`

// BuildJudgePrompt builds the user prompt for a judgment call
func BuildJudgePrompt(text, reference string) string {
	if reference != "" {
		return fmt.Sprintf("Context: %s\nClaim: %s", reference, text)
	}
	return text
}

// BuildClassifyPrompt builds the user prompt for a classification call
func BuildClassifyPrompt(text string, labels []string) string {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = fmt.Sprintf("%q", l)
	}
	return fmt.Sprintf("Candidate labels: [%s]\nText: %s", strings.Join(quoted, ", "), text)
}

func judgeWith(ctx context.Context, c completer, text, reference string) (*Judgment, error) {
	content, err := c.complete(ctx, judgeSystem, BuildJudgePrompt(text, reference))
	if err != nil {
		return nil, err
	}
	return parseJudgment(content)
}

func classifyWith(ctx context.Context, c completer, text string, labels []string) (map[string]float64, error) {
	content, err := c.complete(ctx, classifySystem, BuildClassifyPrompt(text, labels))
	if err != nil {
		return nil, err
	}
	return parseScores(content, labels)
}

func entitiesWith(ctx context.Context, c completer, text string) ([]model.Entity, error) {
	content, err := c.complete(ctx, entitySystem, text)
	if err != nil {
		return nil, err
	}
	return parseEntities(content)
}

// jsonObject returns the outermost {...} in s, tolerating code fences and chatter
func jsonObject(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("no JSON object in response: %q", truncate(s, 120))
	}
	return s[start : end+1], nil
}

func parseJudgment(content string) (*Judgment, error) {
	raw, err := jsonObject(content)
	if err != nil {
		return nil, err
	}

	var j Judgment
	if err := json.Unmarshal([]byte(raw), &j); err != nil {
		return nil, fmt.Errorf("unmarshal judgment: %w", err)
	}

	sum := j.Contradiction + j.Neutral + j.Entailment
	if sum <= 0 || math.IsNaN(sum) || j.Contradiction < 0 || j.Neutral < 0 || j.Entailment < 0 {
		return nil, fmt.Errorf("invalid judgment probabilities: %+v", j)
	}

	// Renormalize; chat models rarely sum to exactly one
	j.Contradiction /= sum
	j.Neutral /= sum
	j.Entailment /= sum
	return &j, nil
}

// parseScores keeps only the requested labels, matching case-insensitively
func parseScores(content string, labels []string) (map[string]float64, error) {
	raw, err := jsonObject(content)
	if err != nil {
		return nil, err
	}

	var decoded map[string]float64
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal scores: %w", err)
	}

	byLower := make(map[string]float64, len(decoded))
	for k, v := range decoded {
		byLower[strings.ToLower(strings.TrimSpace(k))] = v
	}

	scores := make(map[string]float64, len(labels))
	for _, label := range labels {
		if v, ok := byLower[strings.ToLower(label)]; ok && v >= 0 {
			scores[label] = min(v, 1.0)
		}
	}
	return scores, nil
}

func parseEntities(content string) ([]model.Entity, error) {
	raw, err := jsonObject(content)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Entities []model.Entity `json:"entities"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal entities: %w", err)
	}

	entities := make([]model.Entity, 0, len(decoded.Entities))
	for _, e := range decoded.Entities {
		if strings.TrimSpace(e.Text) == "" {
			continue
		}
		e.Type = strings.ToUpper(e.Type)
		e.Score = math.Round(e.Score*1000) / 1000
		entities = append(entities, e)
	}
	return entities, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
