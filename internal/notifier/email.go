package notifier

// Email is the JSON document dropped into the sender bucket. The external
// email sender watches that bucket and delivers whatever lands there; this
// struct is its contract.
type Email struct {
	To        []string `json:"to"`
	CC        []string `json:"cc,omitempty"`
	Subject   string   `json:"subject"`
	HTML      string   `json:"html,omitempty"`
	Plaintext string   `json:"plaintext,omitempty"`
}
