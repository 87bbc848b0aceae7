package model

// Tier is the relevance bucket assigned to a signal.
type Tier string

const (
	TierCore     Tier = "core"
	TierStrong   Tier = "strong"
	TierRelated  Tier = "related"
	TierAdjacent Tier = "adjacent"
)

// TierAssignment pairs a signal with its relevance score and tier.
type TierAssignment struct {
	Signal Signal  `json:"signal"`
	Score  float64 `json:"score"` // relevance in [0,1]
	Tier   Tier    `json:"tier"`
}

// TieredMetrics aggregates tier counts for one classification batch.
// Total counts every successfully scored signal; signals scoring below the
// adjacent boundary are discarded without a tier, so
// Core+Strong+Related+Adjacent <= Total, with equality iff nothing scored
// below the boundary. Failed counts signals the scorer could not score;
// they are excluded from Total.
type TieredMetrics struct {
	Core             int   `json:"core"`
	Strong           int   `json:"strong"`
	Related          int   `json:"related"`
	Adjacent         int   `json:"adjacent"`
	Discarded        int   `json:"discarded"`
	Failed           int   `json:"failed"`
	Total            int   `json:"total"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// AnalysisSignals is the count of signals used for theme extraction.
func (m TieredMetrics) AnalysisSignals() int {
	return m.Core + m.Strong
}

// PivotPotential is the count of adjacent signals that may indicate a pivot.
func (m TieredMetrics) PivotPotential() int {
	return m.Adjacent
}
