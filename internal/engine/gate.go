package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asjidimtiaz/leadqual/internal/domain"
	"github.com/asjidimtiaz/leadqual/internal/logging"
	"github.com/google/uuid"
)

// FallbackLeadName is used when the visitor never gave a name.
const FallbackLeadName = "Website visitor"

// LeadRecorder accepts a lead snapshot for creation. Idempotency of repeated
// submission is the gate's responsibility, not the recorder's.
type LeadRecorder interface {
	Create(ctx context.Context, lead domain.Lead) error
}

// Gate converts a qualified chat session into a sales lead at most once.
type Gate struct {
	crm LeadRecorder
	log *logging.Logger
}

// NewGate creates a conversion gate writing to the given lead recorder.
func NewGate(crm LeadRecorder, log *logging.Logger) *Gate {
	return &Gate{crm: crm, log: log.Sub("gate")}
}

// Arm marks the session converted precisely when it is in capture mode,
// contact is available (the utterance carries an "@" or the sticky email is
// set), and it has not converted before. Reports whether the session was
// newly armed.
//
// IsConverted is set before any lead is recorded on purpose: retries can
// never produce a duplicate lead, at the cost of losing the lead if a later
// step fails. Callers with a durable store should persist the session
// between Arm and Record so a failed save cannot replay the conversion.
func (g *Gate) Arm(sess *domain.Session, utterance string) bool {
	if sess.Mode != domain.ModeCapture || sess.IsConverted {
		return false
	}
	if !strings.Contains(utterance, "@") && sess.Metadata.Contact.Email == "" {
		return false
	}

	sess.IsConverted = true
	return true
}

// Record writes the lead snapshot for an armed session to the CRM. A write
// failure is logged and swallowed; the chat interaction still succeeds.
func (g *Gate) Record(ctx context.Context, sess *domain.Session) bool {
	lead := LeadFromSession(sess)
	if err := g.crm.Create(ctx, lead); err != nil {
		g.log.Error().Err(err).
			Str("sessionId", sess.ID).
			Str("email", lead.Email).
			Msg("lead creation failed; session stays converted")
		return false
	}

	g.log.Info().
		Str("sessionId", sess.ID).
		Str("leadId", lead.ID).
		Str("tier", string(lead.Tier)).
		Int("score", lead.Score).
		Msg("session converted to lead")
	return true
}

// MaybeConvert arms and records in one step, for callers with no durable
// store between the two. Reports whether a lead was created.
func (g *Gate) MaybeConvert(ctx context.Context, sess *domain.Session, utterance string) bool {
	if !g.Arm(sess, utterance) {
		return false
	}
	return g.Record(ctx, sess)
}

// LeadFromSession snapshots the session into a CRM lead. The lead is a
// one-way projection; it evolves independently afterwards.
func LeadFromSession(sess *domain.Session) domain.Lead {
	name := sess.Metadata.Contact.Name
	if name == "" {
		name = FallbackLeadName
	}

	return domain.Lead{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     sess.Metadata.Contact.Email,
		Phone:     sess.Metadata.Contact.Phone,
		Service:   sess.Metadata.Service,
		Timeline:  deriveTimeline(sess.Metadata),
		Message:   fmt.Sprintf("Chatbot-qualified lead (score %d, last mode %s).", sess.LeadScore, sess.Mode),
		Score:     sess.LeadScore,
		Tier:      Chat.Tier(sess.LeadScore),
		Source:    domain.LeadSourceChat,
		SessionID: sess.ID,
		CreatedAt: time.Now(),
	}
}

func deriveTimeline(meta domain.Metadata) string {
	switch {
	case meta.Urgency == UrgencyHigh:
		return "ASAP"
	case meta.Budget == BudgetSpecified:
		return "1-3 months"
	}
	return "flexible"
}
