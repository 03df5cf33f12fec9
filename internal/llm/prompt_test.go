package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildJudgePrompt(t *testing.T) {
	assert.Equal(t, "claim", BuildJudgePrompt("claim", ""))
	assert.Equal(t, "Context: ctx\nClaim: claim", BuildJudgePrompt("claim", "ctx"))
}

func TestBuildClassifyPrompt(t *testing.T) {
	prompt := BuildClassifyPrompt("It will rain", []string{"factual statement", "opinion or speculation"})
	assert.Equal(t, "Candidate labels: [\"factual statement\", \"opinion or speculation\"]\nText: It will rain", prompt)
}

func TestParseJudgment(t *testing.T) {
	j, err := parseJudgment("Sure! {\"contradiction\": 0.6, \"neutral\": 0.3, \"entailment\": 0.1}")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, j.Contradiction, 1e-9)

	for _, bad := range []string{
		"no json here",
		`{"contradiction": 0, "neutral": 0, "entailment": 0}`,
		`{"contradiction": -1, "neutral": 1, "entailment": 1}`,
		`{"contradiction": "high"}`,
	} {
		_, err := parseJudgment(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseScores(t *testing.T) {
	scores, err := parseScores(`{"FACTUAL STATEMENT ": 0.3, "opinion or speculation": 1.4, "other": 0.2, "negative": -1}`,
		[]string{"factual statement", "opinion or speculation", "negative"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"factual statement": 0.3, "opinion or speculation": 1.0}, scores)
}

func TestParseEntities(t *testing.T) {
	entities, err := parseEntities(`{"entities": [{"text": "NASA", "type": "org", "score": 0.91234}, {"text": "", "type": "PER", "score": 1}]}`)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "ORG", entities[0].Type)
	assert.Equal(t, 0.912, entities[0].Score)

	entities, err = parseEntities(`{"entities": []}`)
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}
