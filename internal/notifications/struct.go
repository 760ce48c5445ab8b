package notifications

import "time"

// Webhook is an HTTP endpoint that receives session outcomes.
type Webhook struct {
	URL      string
	Username string
	Password string
	// Verify enables TLS certificate verification.
	Verify bool
}

// OutcomeNotification is the JSON body posted when a retry session ends.
type OutcomeNotification struct {
	Service    string    `json:"service"`
	SessionID  string    `json:"session_id"`
	Name       string    `json:"session_name"`
	Policy     string    `json:"policy"`
	State      string    `json:"state"`
	Attempts   int       `json:"attempts"`
	Message    string    `json:"message"`
	FinishedAt time.Time `json:"finished_at"`
}
