package entities

import "time"

// SummaryStatus tracks the lifecycle of a background article summary.
type SummaryStatus string

const (
	SummaryStatusPending SummaryStatus = "pending"
	SummaryStatusReady   SummaryStatus = "ready"
	SummaryStatusFailed  SummaryStatus = "failed"
)

// ArticleSummary stores AI-generated literature summaries. Generation runs
// as a detached background task; callers receive the pending placeholder
// and re-fetch later for the final text.
type ArticleSummary struct {
	ID        string        `json:"id" db:"id"`
	ArticleID string        `json:"article_id" db:"article_id"`
	Title     string        `json:"title" db:"title"`
	Abstract  string        `json:"abstract,omitempty" db:"abstract"`
	Status    SummaryStatus `json:"status" db:"status"`
	Summary   string        `json:"summary" db:"summary"`
	Provider  string        `json:"provider,omitempty" db:"provider"`
	Model     string        `json:"model,omitempty" db:"model"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}
