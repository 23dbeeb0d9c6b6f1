package domain

import "time"

// Outcome classifies what the check engine found.
type Outcome string

const (
	OutcomeFlagged Outcome = "flagged" // issue found, no automated remediation
	OutcomeFixed   Outcome = "fixed"   // issue found and remediated in Alma
	OutcomeReport  Outcome = "report"  // scheduled report produced rows
)

func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeFlagged, OutcomeFixed, OutcomeReport:
		return true
	}
	return false
}

// Priority controls notify-queue ordering. High is processed first.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// Status tracks the delivery lifecycle of a notification.
type Status string

const (
	StatusPending    Status = "pending"
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusSkipped    Status = "skipped" // no subscribers; terminal, never retried
)

// Notification records one issue found (and possibly fixed) by a check, or
// one scheduled report run, together with its email delivery bookkeeping.
// It references exactly one Check and one originating item or report job.
type Notification struct {
	ID              string     `json:"id"`
	JobID           string     `json:"job_id"`
	CheckID         int64      `json:"check_id"`
	CheckName       string     `json:"check_name"`
	Barcode         *string    `json:"barcode,omitempty"`
	Title           *string    `json:"title,omitempty"`
	Outcome         Outcome    `json:"outcome"`
	Priority        Priority   `json:"priority"`
	Status          Status     `json:"status"`
	BodyAddendum    *string    `json:"body_addendum,omitempty"`
	ReportContainer *string    `json:"report_container,omitempty"`
	ReportBlob      *string    `json:"report_blob,omitempty"`
	EmailBlob       *string    `json:"email_blob,omitempty"`
	RetryCount      int        `json:"retry_count"`
	MaxRetries      int        `json:"max_retries"`
	NextRetryAt     *time.Time `json:"next_retry_at,omitempty"`
	SentAt          *time.Time `json:"sent_at,omitempty"`
	ErrorMessage    *string    `json:"error_message,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ListFilter holds query parameters for paginated notification listing.
type ListFilter struct {
	Status  *Status
	CheckID *int64
	From    *time.Time
	To      *time.Time
	Page    int
	Limit   int
}
