package domain

import "time"

// Tier classifies lead quality.
type Tier string

const (
	TierHot  Tier = "hot"
	TierWarm Tier = "warm"
	TierCold Tier = "cold"
)

// Lead source constants.
const (
	LeadSourceChat   = "chatbot"
	LeadSourceWizard = "wizard"
)

// Lead is the CRM record created when a session (or quote request) qualifies.
// It is a one-way snapshot: after creation it evolves independently of the
// originating chat session.
type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Service   string    `json:"service,omitempty"`
	Timeline  string    `json:"timeline,omitempty"`
	Message   string    `json:"message,omitempty"`
	Score     int       `json:"score"`
	Tier      Tier      `json:"tier"`
	Source    string    `json:"source"`
	SessionID string    `json:"sessionId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
