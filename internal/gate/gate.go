// Package gate filters raw signals down to those that plausibly concern a
// named subject app.
package gate

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/foundersignal/validate-cli/internal/model"
)

// ErrEmptySubject is returned when the subject name normalizes to nothing.
// An empty name would compile to a pattern that matches every signal, so the
// gate rejects it up front instead of silently passing everything.
var ErrEmptySubject = eris.New("gate: empty subject name")

// Stats records the outcome of one gating pass.
type Stats struct {
	Before   int    `json:"before"`
	After    int    `json:"after"`
	Removed  int    `json:"removed"`
	Subject  string `json:"subject"`
	CoreName string `json:"core_name"`
}

// Result partitions a signal collection into passed and filtered.
// Input signals are never mutated; both slices reference the originals.
type Result struct {
	Passed   []model.Signal `json:"passed"`
	Filtered []model.Signal `json:"filtered"`
	Stats    Stats          `json:"stats"`
}

// subjectSplitters are the characters that separate an app's core name from
// its marketing tagline ("Loom: Screen Recorder" -> "Loom").
var subjectSplitters = []string{":", "-", "–", "—"}

// NormalizeSubject reduces a subject name to its lower-cased core: everything
// before the first colon/dash/en-dash/em-dash, Unicode-normalized (NFKC) and
// trimmed.
func NormalizeSubject(subject string) string {
	s := norm.NFKC.String(subject)
	cut := len(s)
	for _, sep := range subjectSplitters {
		if idx := strings.Index(s, sep); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return strings.ToLower(strings.TrimSpace(s[:cut]))
}

// BuildNameRegex compiles a case-insensitive whole-word pattern for the
// normalized core name. Word boundaries are mandatory: substring matching
// would let "bloom" falsely match a subject named "loom".
func BuildNameRegex(coreName string) (*regexp.Regexp, error) {
	if coreName == "" {
		return nil, ErrEmptySubject
	}
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(coreName) + `\b`)
	if err != nil {
		return nil, eris.Wrapf(err, "gate: compile pattern for %q", coreName)
	}
	return re, nil
}

// Apply partitions signals by whether they concern the subject. A signal
// passes if its source is the subject's own store listing (those reviews are
// inherently about the app), or if its title+body mentions the normalized
// core name as a whole word. Deterministic given the same inputs.
func Apply(signals []model.Signal, subject string) (*Result, error) {
	core := NormalizeSubject(subject)
	re, err := BuildNameRegex(core)
	if err != nil {
		return nil, err
	}
	res := apply(signals, re)
	res.Stats.Subject = subject
	res.Stats.CoreName = core
	return res, nil
}

// GroupResult is the per-group outcome of a batch gating pass.
type GroupResult struct {
	Name   string  `json:"name"`
	Result *Result `json:"result"`
}

// ApplyGroups gates multiple named signal groups with a single compiled
// pattern, returning per-group results plus the combined removed count.
func ApplyGroups(groups map[string][]model.Signal, subject string) ([]GroupResult, int, error) {
	core := NormalizeSubject(subject)
	re, err := BuildNameRegex(core)
	if err != nil {
		return nil, 0, err
	}

	results := make([]GroupResult, 0, len(groups))
	totalRemoved := 0
	for name, signals := range groups {
		res := apply(signals, re)
		res.Stats.Subject = subject
		res.Stats.CoreName = core
		totalRemoved += res.Stats.Removed
		results = append(results, GroupResult{Name: name, Result: res})
	}
	return results, totalRemoved, nil
}

func apply(signals []model.Signal, re *regexp.Regexp) *Result {
	res := &Result{}
	for _, sig := range signals {
		// The signal text is normalized the same way as the subject, so a
		// full-width or other compatibility-form spelling still matches.
		if sig.Source.OwnListing() || re.MatchString(norm.NFKC.String(sig.Text())) {
			res.Passed = append(res.Passed, sig)
		} else {
			res.Filtered = append(res.Filtered, sig)
		}
	}
	res.Stats.Before = len(signals)
	res.Stats.After = len(res.Passed)
	res.Stats.Removed = len(res.Filtered)
	return res
}
