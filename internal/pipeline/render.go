package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ppiankov/trustscan/internal/model"
)

// Renderer writes verification reports
type Renderer struct {
	out io.Writer // Destination for "-" JSON output
	log io.Writer // Destination for human-readable summaries
}

// NewRenderer creates a renderer writing JSON to stdout and summaries to stderr
func NewRenderer() *Renderer {
	return &Renderer{out: os.Stdout, log: os.Stderr}
}

// NewRendererTo creates a renderer with explicit writers
func NewRendererTo(out, log io.Writer) *Renderer {
	return &Renderer{out: out, log: log}
}

// RenderJSON writes the report as indented JSON to path, or to the
// output writer when path is "" or "-"
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err := r.out.Write(data)
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSummary prints a short human-readable summary of the report
func (r *Renderer) RenderSummary(report *model.Report) {
	s := report.Summary

	_, _ = fmt.Fprintf(r.log, "\nTrust score: %.2f (%s)\n", report.TrustScore, trustLabel(report.TrustScore))
	_, _ = fmt.Fprintf(r.log, "Citations:   %d total, %d verified, %d broken, %d suspicious, %d hallucinated\n",
		s.TotalCitations, s.VerifiedCitations, s.BrokenCitations, s.SuspiciousCitations, s.HallucinatedCitations)
	_, _ = fmt.Fprintf(r.log, "Claims:      %d total, %d high risk\n", s.TotalClaims, s.HighRiskClaims)
	if report.SemanticEnabled {
		_, _ = fmt.Fprintf(r.log, "Semantic:    %d flagged\n", s.SemanticFlagged)
	} else {
		_, _ = fmt.Fprintf(r.log, "Semantic:    disabled (fallback mode)\n")
	}

	for _, f := range report.TrustFactors {
		_, _ = fmt.Fprintf(r.log, "  × %.2f  %s = %s\n", f.Value, f.Name, f.Formula)
	}

	for _, c := range report.Citations {
		if c.Status == model.StatusVerified {
			continue
		}
		_, _ = fmt.Fprintf(r.log, "  ⚠ [%s] %s\n", c.Status, truncateText(c.Citation.Text, 80))
	}
	for _, c := range report.Claims {
		if c.RiskLevel != model.RiskHigh {
			continue
		}
		_, _ = fmt.Fprintf(r.log, "  ⚠ [HIGH] %s\n", truncateText(c.Claim, 80))
	}
	_, _ = fmt.Fprintln(r.log)
}

func trustLabel(score float64) string {
	switch {
	case score >= 0.8:
		return "high"
	case score >= 0.5:
		return "moderate"
	default:
		return "low"
	}
}

func truncateText(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
