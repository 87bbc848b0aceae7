package model

import "time"

// JobStatus tracks the lifecycle of an analysis job.
type JobStatus string

const (
	JobStatusQueued   JobStatus = "queued"
	JobStatusRunning  JobStatus = "running"
	JobStatusComplete JobStatus = "complete"
	JobStatusPartial  JobStatus = "partial"
	JobStatusFailed   JobStatus = "failed"
)

// Hypothesis describes what is being validated.
type Hypothesis struct {
	Text      string  `json:"text"`
	Subject   string  `json:"subject,omitempty"` // named app, if the analysis is app-scoped
	Geography string  `json:"geography,omitempty"`
	Price     float64 `json:"price,omitempty"` // target monthly price, USD
	MSC       float64 `json:"msc,omitempty"`   // annual revenue goal, USD
}

// TokenUsage accumulates token consumption across pipeline phases.
type TokenUsage struct {
	InputTokens         int `json:"input_tokens"`
	OutputTokens        int `json:"output_tokens"`
	CacheCreationTokens int `json:"cache_creation_tokens"`
	CacheReadTokens     int `json:"cache_read_tokens"`
}

// Add accumulates another usage record into this one.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationTokens += other.CacheCreationTokens
	u.CacheReadTokens += other.CacheReadTokens
}

// AnalysisResult is the persisted outcome of one analysis job. Incomplete
// runs carry whatever was computed before the failure, with Missing naming
// the dimensions that never produced a score.
type AnalysisResult struct {
	Score       float64             `json:"score"` // final 0-10 verdict score
	Message     VerdictMessage      `json:"message"`
	Dimensions  DimensionScores     `json:"dimensions"`
	Missing     []Dimension         `json:"missing,omitempty"`
	Metrics     TieredMetrics       `json:"metrics"`
	Market      *MarketSizingResult `json:"market,omitempty"`
	Themes      *ThemeExtraction    `json:"themes,omitempty"`
	Usage       TokenUsage          `json:"usage"`
	TotalCost   float64             `json:"total_cost_usd"`
	Incomplete  bool                `json:"incomplete,omitempty"`
	FailureNote string              `json:"failure_note,omitempty"`
}

// AnalysisJob is a stored analysis request plus its result once finished.
type AnalysisJob struct {
	ID         string          `json:"id"`
	Hypothesis Hypothesis      `json:"hypothesis"`
	Status     JobStatus       `json:"status"`
	Result     *AnalysisResult `json:"result,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
