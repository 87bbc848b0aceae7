// Package model defines the domain types shared across the validation pipeline.
package model

import "time"

// SignalSource identifies where a signal was collected.
type SignalSource string

const (
	SourceForum      SignalSource = "forum"
	SourceAppStore   SignalSource = "app_store"
	SourcePlayStore  SignalSource = "play_store"
	SourceReviewSite SignalSource = "review_site"
)

// OwnListing reports whether the source is a review drawn directly from the
// subject's own store listing. Such signals are inherently about the subject
// and bypass name matching in the gate.
func (s SignalSource) OwnListing() bool {
	return s == SourceAppStore || s == SourcePlayStore
}

// Signal is a single unit of raw text evidence about a hypothesis or app.
// Signals are immutable once fetched; the pipeline only reads them.
type Signal struct {
	ID        string       `json:"id"`
	Source    SignalSource `json:"source"`
	Community string       `json:"community"` // subreddit, app id, review-site slug
	Title     string       `json:"title,omitempty"`
	Body      string       `json:"body"`
	Weight    float64      `json:"weight"` // popularity/engagement (upvotes, helpful count)
	CreatedAt time.Time    `json:"created_at"`
}

// Text returns the title and body joined for matching and extraction.
func (s Signal) Text() string {
	if s.Title == "" {
		return s.Body
	}
	return s.Title + " " + s.Body
}
