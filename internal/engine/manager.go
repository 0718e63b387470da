package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asjidimtiaz/leadqual/internal/domain"
	"github.com/asjidimtiaz/leadqual/internal/hooks"
	"github.com/asjidimtiaz/leadqual/internal/logging"
	"github.com/google/uuid"
)

// ErrEmptyMessage is returned when ProcessMessage is called without text.
var ErrEmptyMessage = errors.New("message is empty")

// ProcessResult is the externally observable outcome of one chat turn.
type ProcessResult struct {
	Reply       string      `json:"reply"`
	Mode        domain.Mode `json:"mode"`
	LeadScore   int         `json:"leadScore"`
	IsConverted bool        `json:"isConverted"`
}

// Manager orchestrates per-message processing for chat sessions. It is the
// only engine component exposed to the message API.
type Manager struct {
	store     SessionStore
	rules     RuleSet
	responder *Responder
	gate      *Gate
	hooks     *hooks.Manager
	log       *logging.Logger
}

// NewManager wires the engine components together.
func NewManager(store SessionStore, rules RuleSet, responder *Responder, gate *Gate, hm *hooks.Manager, log *logging.Logger) *Manager {
	return &Manager{
		store:     store,
		rules:     rules,
		responder: responder,
		gate:      gate,
		hooks:     hm,
		log:       log.Sub("engine"),
	}
}

// StartSession creates a new empty session in intro mode with score zero.
func (m *Manager) StartSession(ctx context.Context) (*domain.Session, error) {
	now := time.Now()
	sess := &domain.Session{
		ID:        uuid.New().String(),
		Mode:      domain.ModeIntro,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	m.log.Info().Str("sessionId", sess.ID).Msg("session started")
	if m.hooks != nil {
		m.hooks.Emit(ctx, hooks.EventSessionStart, map[string]any{"sessionId": sess.ID})
	}
	return sess, nil
}

// ProcessMessage runs one chat turn. The sequence is fixed: append user
// message, extract signals, accumulate score, resolve the next mode,
// generate the reply, append it, arm the conversion gate, persist, record
// the lead. The gate must run after the state machine or same-message
// capture transitions would be missed, and the converted flag must be
// persisted before the CRM write so a failed save cannot replay the
// conversion on retry.
func (m *Manager) ProcessMessage(ctx context.Context, sessionID, text string) (*ProcessResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	m.log.Debug().
		Str("sessionId", sess.ID).
		Str("mode", string(sess.Mode)).
		Int("historyLen", len(sess.Messages)).
		Msg("processing message")

	now := time.Now()
	sess.Append(domain.RoleUser, text, now)

	res := m.rules.Extract(sess.Metadata, text)
	ApplyDelta(sess, res.ScoreDelta)
	ApplyPatch(&sess.Metadata, res.Patch)

	sess.Mode = NextMode(sess.Mode, sess, text, m.rules)

	reply := m.responder.Generate(ctx, sess)
	sess.Append(domain.RoleAssistant, reply, time.Now())

	armed := m.gate.Arm(sess, text)

	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}

	leadCreated := false
	if armed {
		leadCreated = m.gate.Record(ctx, sess)
	}

	m.log.Info().
		Str("sessionId", sess.ID).
		Str("mode", string(sess.Mode)).
		Int("score", sess.LeadScore).
		Int("scoreDelta", res.ScoreDelta).
		Bool("converted", sess.IsConverted).
		Msg("message processed")

	if m.hooks != nil {
		m.hooks.Emit(ctx, hooks.EventMessageProcessed, map[string]any{
			"sessionId": sess.ID,
			"mode":      string(sess.Mode),
			"score":     sess.LeadScore,
		})
		if leadCreated {
			m.hooks.Emit(ctx, hooks.EventLeadCreated, map[string]any{
				"sessionId": sess.ID,
				"score":     sess.LeadScore,
			})
		}
	}

	return &ProcessResult{
		Reply:       reply,
		Mode:        sess.Mode,
		LeadScore:   sess.LeadScore,
		IsConverted: sess.IsConverted,
	}, nil
}
