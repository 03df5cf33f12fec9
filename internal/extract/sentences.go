package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var sentenceTerminators = regexp.MustCompile(`[.!?]+`)

// SplitSentences splits text into candidate claim sentences.
// Runs of terminators count as one boundary. Sentences whose trimmed length
// is minLength characters or fewer are dropped.
func SplitSentences(text string, minLength int) []string {
	var sentences []string
	for _, part := range sentenceTerminators.Split(text, -1) {
		sentence := strings.TrimSpace(part)
		if utf8.RuneCountInString(sentence) > minLength {
			sentences = append(sentences, sentence)
		}
	}
	return sentences
}
