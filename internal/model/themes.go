package model

// Quote is a representative verbatim snippet supporting a theme.
type Quote struct {
	Text      string       `json:"text"`
	Source    SignalSource `json:"source"`
	Community string       `json:"community,omitempty"`
}

// AdjacentTheme is a contextual theme surfaced as a pivot candidate.
type AdjacentTheme struct {
	Theme     string   `json:"theme"`
	Frequency int      `json:"frequency"`
	Examples  []string `json:"examples,omitempty"`
	Quote     *Quote   `json:"quote,omitempty"`
}

// ThemeExtraction is the pure, deduplicated output of the theme and language
// extractor over CORE+STRONG signals.
type ThemeExtraction struct {
	ProblemPhrases    []string        `json:"problem_phrases"`
	EmotionalLanguage []string        `json:"emotional_language"` // capped at 10
	ToolsMentioned    []string        `json:"tools_mentioned"`    // capped at 15
	AdjacentThemes    []AdjacentTheme `json:"adjacent_themes"`    // top 3 by frequency
}
