package themes

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/foundersignal/validate-cli/internal/model"
)

const (
	maxEmotionalTerms = 10
	maxTools          = 15
	maxProblemPhrases = 12
	maxAdjacentThemes = 3
	maxQuoteLen       = 200
)

// toolVerbPattern captures a capitalized noun following a tool-adoption verb,
// e.g. "switched to Airtable" or "tried Notion".
var toolVerbPattern = regexp.MustCompile(`\b(?:using|used|use|tried|try|switched to|switching to|moved to)\s+([A-Z][A-Za-z0-9'+.-]*)`)

// sentenceSplit breaks text on terminal punctuation and newlines.
var sentenceSplit = regexp.MustCompile(`[.!?\n]+`)

var themeStopwords = map[string]struct{}{
	"about": {}, "after": {}, "all": {}, "also": {}, "and": {}, "any": {},
	"are": {}, "been": {}, "because": {}, "but": {}, "can": {}, "cant": {},
	"could": {}, "does": {}, "doesnt": {}, "dont": {}, "even": {}, "every": {},
	"for": {}, "from": {}, "get": {}, "has": {}, "have": {}, "how": {},
	"into": {}, "its": {}, "just": {}, "like": {}, "more": {}, "much": {},
	"need": {}, "not": {}, "now": {}, "one": {}, "only": {}, "other": {},
	"our": {}, "out": {}, "over": {}, "really": {}, "should": {}, "some": {},
	"still": {}, "than": {}, "that": {}, "the": {}, "their": {}, "them": {},
	"then": {}, "there": {}, "they": {}, "this": {}, "very": {}, "was": {},
	"way": {}, "what": {}, "when": {}, "which": {}, "will": {}, "with": {},
	"would": {}, "you": {}, "your": {},
}

// Extractor derives theme and language features from signal text. Extraction
// is a pure transformation: it never mutates signals and produces the same
// output for the same input.
type Extractor struct {
	lex *Lexicon
}

// NewExtractor creates an extractor over the given lexicon. A nil lexicon
// uses the defaults.
func NewExtractor(lex *Lexicon) *Extractor {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Extractor{lex: lex}
}

// Extract pulls problem phrases, emotional terms, and tool mentions from the
// core+strong analysis set, and ranks adjacent-tier signals into the top
// pivot themes.
func (e *Extractor) Extract(analysisSignals, adjacentSignals []model.Signal) *model.ThemeExtraction {
	return &model.ThemeExtraction{
		ProblemPhrases:    e.problemPhrases(analysisSignals),
		EmotionalLanguage: e.emotionalTerms(analysisSignals),
		ToolsMentioned:    e.toolsMentioned(analysisSignals),
		AdjacentThemes:    e.adjacentThemes(adjacentSignals),
	}
}

// emotionalTerms matches lexicon stems against signal tokens. Single-word
// stems match as token prefixes; multi-word stems match as substrings of the
// full text and contribute the stem itself. Terms are lowercased, deduped,
// and capped.
func (e *Extractor) emotionalTerms(signals []model.Signal) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(term string) {
		if len(out) >= maxEmotionalTerms {
			return
		}
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}

	for _, sig := range signals {
		text := strings.ToLower(sig.Text())

		for _, stem := range e.lex.EmotionalStems {
			if !strings.Contains(stem, " ") {
				continue
			}
			if strings.Contains(text, stem) {
				add(stem)
			}
		}

		for _, token := range splitWords(text) {
			for _, stem := range e.lex.EmotionalStems {
				if strings.Contains(stem, " ") {
					continue
				}
				if strings.HasPrefix(token, stem) {
					add(token)
					break
				}
			}
		}
	}

	return out
}

// problemPhrases returns verbatim sentences containing a problem marker.
func (e *Extractor) problemPhrases(signals []model.Signal) []string {
	seen := make(map[string]struct{})
	var out []string

	for _, sig := range signals {
		for _, sentence := range sentenceSplit.Split(sig.Text(), -1) {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" || len(out) >= maxProblemPhrases {
				continue
			}

			lower := strings.ToLower(sentence)
			matched := false
			for _, marker := range e.lex.ProblemMarkers {
				if strings.Contains(lower, marker) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}

			if len(sentence) > maxQuoteLen {
				sentence = sentence[:maxQuoteLen]
			}
			if _, ok := seen[lower]; ok {
				continue
			}
			seen[lower] = struct{}{}
			out = append(out, sentence)
		}
	}

	return out
}

// toolsMentioned seeds from the alternatives list, then harvests capitalized
// nouns following tool-adoption verbs. Dedup is case-insensitive; the first
// spelling encountered wins.
func (e *Extractor) toolsMentioned(signals []model.Signal) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(tool string) {
		if len(out) >= maxTools {
			return
		}
		key := strings.ToLower(tool)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, tool)
	}

	for _, sig := range signals {
		text := sig.Text()
		lower := strings.ToLower(text)

		for _, alt := range e.lex.Alternatives {
			if containsWord(lower, strings.ToLower(alt)) {
				add(alt)
			}
		}

		for _, m := range toolVerbPattern.FindAllStringSubmatch(text, -1) {
			candidate := strings.TrimRight(m[1], ".'-")
			if len(candidate) >= 2 {
				add(candidate)
			}
		}
	}

	return out
}

// adjacentThemes ranks bigrams across adjacent-tier signals by the number of
// signals mentioning them, and pairs each of the top themes with a
// representative quote containing the theme's first word.
func (e *Extractor) adjacentThemes(signals []model.Signal) []model.AdjacentTheme {
	if len(signals) == 0 {
		return nil
	}

	counts := make(map[string]int)
	examples := make(map[string][]string)

	for _, sig := range signals {
		tokens := splitWords(strings.ToLower(sig.Text()))
		seenHere := make(map[string]struct{})
		for i := 0; i+1 < len(tokens); i++ {
			a, b := tokens[i], tokens[i+1]
			if isThemeStopword(a) || isThemeStopword(b) {
				continue
			}
			bigram := a + " " + b
			if _, ok := seenHere[bigram]; ok {
				continue
			}
			seenHere[bigram] = struct{}{}
			counts[bigram]++
			if len(examples[bigram]) < 2 {
				examples[bigram] = append(examples[bigram], snippet(sig.Text()))
			}
		}
	}

	type ranked struct {
		theme string
		count int
	}
	all := make([]ranked, 0, len(counts))
	for theme, count := range counts {
		if count < 2 {
			continue
		}
		all = append(all, ranked{theme, count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].theme < all[j].theme
	})
	if len(all) > maxAdjacentThemes {
		all = all[:maxAdjacentThemes]
	}

	out := make([]model.AdjacentTheme, 0, len(all))
	for _, r := range all {
		theme := model.AdjacentTheme{
			Theme:     r.theme,
			Frequency: r.count,
			Examples:  examples[r.theme],
		}
		if q := findQuote(signals, r.theme, examples[r.theme]); q != nil {
			theme.Quote = q
		}
		out = append(out, theme)
	}
	return out
}

// findQuote picks the first signal whose text contains the theme's first word
// or one of its example snippets.
func findQuote(signals []model.Signal, theme string, examples []string) *model.Quote {
	firstWord := theme
	if idx := strings.IndexByte(theme, ' '); idx > 0 {
		firstWord = theme[:idx]
	}

	for _, sig := range signals {
		lower := strings.ToLower(sig.Text())
		matched := containsWord(lower, firstWord)
		if !matched {
			for _, ex := range examples {
				if strings.Contains(lower, strings.ToLower(ex)) {
					matched = true
					break
				}
			}
		}
		if matched {
			return &model.Quote{
				Text:      snippet(sig.Text()),
				Source:    sig.Source,
				Community: sig.Community,
			}
		}
	}
	return nil
}

func isThemeStopword(token string) bool {
	if len(token) < 3 {
		return true
	}
	_, ok := themeStopwords[token]
	return ok
}

// snippet truncates text for use as an example or quote.
func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxQuoteLen {
		text = text[:maxQuoteLen]
	}
	return text
}

// containsWord reports whether lower contains word with non-letter boundaries
// on both sides.
func containsWord(lower, word string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], word)
		if i < 0 {
			return false
		}
		i += idx
		prev, _ := utf8.DecodeLastRuneInString(lower[:i])
		before := i == 0 || !isWordRune(prev)
		afterIdx := i + len(word)
		next, _ := utf8.DecodeRuneInString(lower[afterIdx:])
		after := afterIdx >= len(lower) || !isWordRune(next)
		if before && after {
			return true
		}
		idx = i + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// splitWords lowercase-tokenizes on non-letter-digit runs.
func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
