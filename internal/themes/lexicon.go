// Package themes extracts problem language, emotional terms, tool mentions,
// and adjacent opportunity themes from tiered signals.
package themes

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Lexicon holds the word lists driving extraction. The built-in defaults can
// be replaced wholesale from a YAML file.
type Lexicon struct {
	// EmotionalStems are lowercase prefixes matched against signal tokens,
	// e.g. "frustrat" matches "frustrated" and "frustrating".
	EmotionalStems []string `yaml:"emotional_stems"`

	// Alternatives are known tool/product names seeded into the
	// tools-mentioned extraction regardless of capitalization.
	Alternatives []string `yaml:"alternatives"`

	// ProblemMarkers are lowercase substrings that mark a sentence as a
	// verbatim problem phrase.
	ProblemMarkers []string `yaml:"problem_markers"`
}

// DefaultLexicon returns the built-in word lists.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		EmotionalStems: []string{
			"frustrat", "overwhelm", "hopeless", "desperat", "exhaust",
			"stress", "anxi", "annoy", "dread", "struggl", "hate",
			"nightmare", "miserable", "painful", "infuriat", "unbearable",
			"awful", "terrible", "useless", "fed up", "give up", "giving up",
		},
		Alternatives: []string{
			"Notion", "Airtable", "Trello", "Asana", "Monday", "ClickUp",
			"Excel", "Google Sheets", "Calendly", "Zapier", "Slack",
			"Evernote", "Todoist", "Basecamp", "Jira", "Linear",
		},
		ProblemMarkers: []string{
			"i wish", "i can't", "i cannot", "there's no way", "no way to",
			"why is it so hard", "so hard to", "doesn't work", "does not work",
			"i need", "tired of", "sick of", "fed up", "waste of time",
			"wasting time", "takes forever", "impossible to", "struggling",
			"frustrating", "annoying",
		},
	}
}

// LoadLexicon reads a lexicon from a YAML file. An empty path returns the
// built-in defaults; a file with empty lists inherits the defaults for those
// lists.
func LoadLexicon(path string) (*Lexicon, error) {
	if path == "" {
		return DefaultLexicon(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "themes: read lexicon %s", path)
	}

	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, eris.Wrap(err, "themes: parse lexicon")
	}

	defaults := DefaultLexicon()
	if len(lex.EmotionalStems) == 0 {
		lex.EmotionalStems = defaults.EmotionalStems
	}
	if len(lex.Alternatives) == 0 {
		lex.Alternatives = defaults.Alternatives
	}
	if len(lex.ProblemMarkers) == 0 {
		lex.ProblemMarkers = defaults.ProblemMarkers
	}

	for i, s := range lex.EmotionalStems {
		lex.EmotionalStems[i] = strings.ToLower(s)
	}
	for i, m := range lex.ProblemMarkers {
		lex.ProblemMarkers[i] = strings.ToLower(m)
	}

	return &lex, nil
}
