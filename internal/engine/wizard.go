package engine

import (
	"errors"
	"strings"
	"time"

	"github.com/asjidimtiaz/leadqual/internal/domain"
	"github.com/google/uuid"
)

// ErrInvalidQuote is returned when a quote request misses required fields.
var ErrInvalidQuote = errors.New("quote request requires name, email and service")

// QuoteRequest is the quote wizard's form payload.
type QuoteRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Service     string `json:"service"`
	Budget      string `json:"budget,omitempty"`
	Timeline    string `json:"timeline,omitempty"`
	Description string `json:"description,omitempty"`
}

// budgetPoints maps the wizard's budget bracket choices to score points.
var budgetPoints = map[string]int{
	"<5k":     5,
	"5k-10k":  15,
	"10k-25k": 25,
	"25k+":    30,
}

// timelinePoints maps the wizard's timeline choices to score points.
var timelinePoints = map[string]int{
	"asap":       20,
	"1-3 months": 10,
	"flexible":   0,
}

// ScoreQuote computes the wizard-path lead score for a quote request: points
// for the chosen budget and timeline brackets, an email bonus, plus a signal
// extraction pass over the free-text description. Tiering for this score
// uses the Wizard policy, not Chat.
func (rs RuleSet) ScoreQuote(q QuoteRequest) int {
	score := budgetPoints[strings.ToLower(q.Budget)]
	score += timelinePoints[strings.ToLower(q.Timeline)]
	if q.Email != "" {
		score += 10
	}
	if q.Description != "" {
		// Empty metadata: the email bonus above already covers contact info.
		meta := domain.Metadata{Contact: domain.ContactInfo{Email: q.Email}}
		score += rs.Extract(meta, q.Description).ScoreDelta
	}
	return score
}

// BuildQuoteLead validates the request and snapshots it into a lead.
func BuildQuoteLead(q QuoteRequest, score int) (domain.Lead, error) {
	if q.Name == "" || q.Email == "" || q.Service == "" {
		return domain.Lead{}, ErrInvalidQuote
	}

	return domain.Lead{
		ID:        uuid.New().String(),
		Name:      q.Name,
		Email:     q.Email,
		Phone:     q.Phone,
		Service:   q.Service,
		Timeline:  q.Timeline,
		Message:   q.Description,
		Score:     score,
		Tier:      Wizard.Tier(score),
		Source:    domain.LeadSourceWizard,
		CreatedAt: time.Now(),
	}, nil
}
