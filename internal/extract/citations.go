package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/trustscan/internal/model"
)

// EntityExtractor returns named entities found in text. Implementations
// return an empty slice when extraction is unavailable or fails.
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, text string) []model.Entity
}

var (
	// Author(s) (Year). Title. [URL]
	apaPattern = regexp.MustCompile(`([A-Z][a-z]+(?:,?\s+[A-Z]\.?)*)\s+\((\d{4})\)\.?\s*([^.]+)\.?\s*(https?://[^\s]+)?`)

	// [Author, Year, Title]
	bracketPattern = regexp.MustCompile(`\[([^,]+),\s*(\d{4}),\s*([^\]]+)\]`)

	// Optional lead-in followed by a bare URL
	bareURLPattern = regexp.MustCompile(`(?i)(?:according to|see|source:|reference:)?\s*(https?://[^\s]+)`)
)

// CitationExtractor extracts citation candidates from free text using
// three independent grammars: APA-style, bracketed and bare URL.
//
// Matches from each grammar are concatenated in that order. A span matched
// by more than one grammar is reported once per grammar.
type CitationExtractor struct {
	entities EntityExtractor
}

// NewCitationExtractor creates a citation extractor. entities may be nil.
func NewCitationExtractor(entities EntityExtractor) *CitationExtractor {
	return &CitationExtractor{entities: entities}
}

// Extract returns every citation candidate in text
func (e *CitationExtractor) Extract(ctx context.Context, text string) []model.Citation {
	var citations []model.Citation

	for _, m := range apaPattern.FindAllStringSubmatch(text, -1) {
		year, _ := strconv.Atoi(m[2])
		citations = append(citations, model.Citation{
			Text:     m[0],
			Author:   m[1],
			Year:     year,
			Title:    strings.TrimSpace(m[3]),
			URL:      trimURL(m[4]),
			Entities: e.extractEntities(ctx, m[0]),
		})
	}

	for _, m := range bracketPattern.FindAllStringSubmatch(text, -1) {
		year, _ := strconv.Atoi(m[2])
		citations = append(citations, model.Citation{
			Text:     m[0],
			Author:   strings.TrimSpace(m[1]),
			Year:     year,
			Title:    strings.TrimSpace(m[3]),
			Entities: e.extractEntities(ctx, m[0]),
		})
	}

	for _, m := range bareURLPattern.FindAllStringSubmatch(text, -1) {
		citations = append(citations, model.Citation{
			Text: m[0],
			URL:  trimURL(m[1]),
		})
	}

	return citations
}

func (e *CitationExtractor) extractEntities(ctx context.Context, span string) []model.Entity {
	if e.entities == nil {
		return nil
	}
	return e.entities.ExtractEntities(ctx, span)
}

// trimURL strips trailing sentence punctuation picked up by the URL token
func trimURL(u string) string {
	return strings.TrimRight(u, ".,;:!?")
}
