package domain

import "time"

// Check is a named validation rule definition. Rule code is compiled in;
// the row carries everything an operator may tune: the Alma API key the
// rule uses, the analytics report path for scheduled checks, the email
// subject/body for notifications, and an optional cron schedule.
type Check struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	APIKey       *string   `json:"api_key,omitempty"`
	ReportPath   *string   `json:"report_path,omitempty"`
	EmailSubject string    `json:"email_subject"`
	EmailBody    string    `json:"email_body"`
	Schedule     *string   `json:"schedule,omitempty"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateCheckRequest is the inbound payload for registering a check.
type CreateCheckRequest struct {
	Name         string  `json:"name"`
	APIKey       *string `json:"api_key,omitempty"`
	ReportPath   *string `json:"report_path,omitempty"`
	EmailSubject string  `json:"email_subject"`
	EmailBody    string  `json:"email_body"`
	Schedule     *string `json:"schedule,omitempty"`
	Enabled      *bool   `json:"enabled,omitempty"`
}

func (r *CreateCheckRequest) Validate() error {
	if r.Name == "" {
		return ErrInvalidName
	}
	if r.EmailSubject == "" {
		return ErrInvalidSubject
	}
	return nil
}

// UpdateCheckRequest carries partial updates; nil fields are left unchanged.
type UpdateCheckRequest struct {
	APIKey       *string `json:"api_key,omitempty"`
	ReportPath   *string `json:"report_path,omitempty"`
	EmailSubject *string `json:"email_subject,omitempty"`
	EmailBody    *string `json:"email_body,omitempty"`
	Schedule     *string `json:"schedule,omitempty"`
	Enabled      *bool   `json:"enabled,omitempty"`
}

func (r *UpdateCheckRequest) Validate() error {
	if r.EmailSubject != nil && *r.EmailSubject == "" {
		return ErrInvalidSubject
	}
	return nil
}
