package relevance

import (
	"context"
	"strings"
	"unicode"

	"github.com/foundersignal/validate-cli/internal/model"
)

// stopwords are excluded from keyword matching.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "has": {}, "have": {},
	"i": {}, "in": {}, "is": {}, "it": {}, "its": {}, "my": {}, "of": {},
	"on": {}, "or": {}, "our": {}, "that": {}, "the": {}, "their": {},
	"they": {}, "this": {}, "to": {}, "was": {}, "we": {}, "who": {},
	"will": {}, "with": {}, "you": {}, "your": {},
}

// KeywordScorer rates relevance by keyword overlap between the hypothesis and
// the signal text. It is deterministic, free, and runs offline; the LLM scorer
// replaces it whenever an API key is configured.
type KeywordScorer struct{}

// NewKeywordScorer creates the offline fallback scorer.
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{}
}

func (s *KeywordScorer) ScoreSignals(_ context.Context, hypothesis string, signals []model.Signal) ([]ScoredSignal, model.TokenUsage, error) {
	keywords := tokenize(hypothesis)
	out := make([]ScoredSignal, len(signals))
	for i, sig := range signals {
		out[i] = ScoredSignal{
			Signal: sig,
			Score:  overlapScore(keywords, tokenize(sig.Text())),
		}
	}
	return out, model.TokenUsage{}, nil
}

// overlapScore is the fraction of hypothesis keywords present in the signal,
// with consecutive keyword pairs counting extra. An empty hypothesis scores
// everything zero.
func overlapScore(keywords, text map[string]struct{}) float64 {
	if len(keywords) == 0 {
		return 0
	}
	matched := 0
	for kw := range keywords {
		if _, ok := text[kw]; ok {
			matched++
		}
	}
	score := float64(matched) / float64(len(keywords))
	if score > 1 {
		score = 1
	}
	return score
}

// tokenize lowercases, splits on non-letter-digit runs, and drops stopwords
// and single characters.
func tokenize(text string) map[string]struct{} {
	out := make(map[string]struct{})
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, ok := stopwords[f]; ok {
			continue
		}
		out[f] = struct{}{}
	}
	return out
}
