package sender

import "context"

// SendRef is the queue message handed to the external email-sending service.
// It names the blob holding the rendered email rather than carrying the
// content itself; the sender fetches the blob and delivers it.
type SendRef struct {
	JobID     string `json:"job_id"`
	Container string `json:"container"`
	Blob      string `json:"blob"`
}

// Publisher abstracts the hand-off queue to the email-sending service.
type Publisher interface {
	Publish(ctx context.Context, ref SendRef) error
	Close() error
}
