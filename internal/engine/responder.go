package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/asjidimtiaz/leadqual/internal/domain"
	"github.com/asjidimtiaz/leadqual/internal/llm"
	"github.com/asjidimtiaz/leadqual/internal/logging"
)

// historyWindow bounds how much conversation history is sent to the
// completion service. Older messages stay in storage; they are just not sent.
const historyWindow = 10

// DefaultFallbackReply is returned when the completion service is
// unreachable or returns no content.
const DefaultFallbackReply = "Sorry, I'm having trouble replying right now. " +
	"Please try again in a moment, or email us at hello@softwarelab.dev."

// ResponderConfig holds the completion parameters and prompt inputs.
// Temperature and MaxTokens are fixed configuration, never user-controlled.
type ResponderConfig struct {
	Model       string
	MaxTokens   int
	Temperature *float64
	AgencyName  string
	Catalog     string
	Fallback    string
}

// Responder produces the assistant reply for the session's current mode.
type Responder struct {
	client llm.Client
	cfg    ResponderConfig
	log    *logging.Logger
}

// NewResponder creates a responder backed by the given completion client.
func NewResponder(client llm.Client, cfg ResponderConfig, log *logging.Logger) *Responder {
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}
	if cfg.Fallback == "" {
		cfg.Fallback = DefaultFallbackReply
	}
	return &Responder{client: client, cfg: cfg, log: log.Sub("responder")}
}

// Generate builds the mode-aware instruction context, sends the bounded
// history window to the completion service, and returns the reply text.
// A completion failure degrades to the configured fallback string; it never
// propagates to the caller.
func (r *Responder) Generate(ctx context.Context, sess *domain.Session) string {
	req := llm.CompletionRequest{
		Model:       r.cfg.Model,
		System:      BuildSystemPrompt(r.cfg, sess),
		Messages:    window(sess.Messages, historyWindow),
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
	}

	resp, err := r.client.Complete(ctx, req)
	if err != nil {
		r.log.Warn().Err(err).Str("sessionId", sess.ID).Msg("completion failed, using fallback reply")
		return r.cfg.Fallback
	}
	if strings.TrimSpace(resp.Content) == "" {
		r.log.Warn().Str("sessionId", sess.ID).Msg("empty completion, using fallback reply")
		return r.cfg.Fallback
	}

	r.log.Debug().
		Str("sessionId", sess.ID).
		Str("mode", string(sess.Mode)).
		Int("inputTokens", resp.Usage.InputTokens).
		Int("outputTokens", resp.Usage.OutputTokens).
		Msg("reply generated")

	return resp.Content
}

// modeGuidance is the per-mode steering instruction.
var modeGuidance = map[domain.Mode]string{
	domain.ModeIntro:    "Greet the visitor warmly in one or two sentences and ask what brings them here.",
	domain.ModeDiscover: "Find out what the visitor wants to build. Ask one focused question.",
	domain.ModeQA:       "Answer the visitor's question directly, then gently steer back to their project.",
	domain.ModeQualify:  "Ask about budget range and timeline for the project, one question at a time.",
	domain.ModeConvert:  "Offer a free, no-obligation quote for the project. Keep it short.",
	domain.ModeCapture:  "Ask for the visitor's name and email so the team can send the quote.",
	domain.ModeExit:     "Thank the visitor for their time and say goodbye.",
}

// BuildSystemPrompt constructs the completion system instruction from the
// fixed template plus the session's current funnel state.
func BuildSystemPrompt(cfg ResponderConfig, sess *domain.Session) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are the sales assistant on the %s website.\n", cfg.AgencyName)
	if cfg.Catalog != "" {
		fmt.Fprintf(&b, "Services offered: %s\n", cfg.Catalog)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Conversation stage: %s\n", sess.Mode)
	if sess.Metadata.Service != "" {
		fmt.Fprintf(&b, "Detected service interest: %s\n", sess.Metadata.Service)
	}
	fmt.Fprintf(&b, "Lead score: %d\n", sess.LeadScore)
	if sess.Metadata.Intent != "" {
		fmt.Fprintf(&b, "Detected intent: %s\n", sess.Metadata.Intent)
	}
	b.WriteString("\n")

	if guidance, ok := modeGuidance[sess.Mode]; ok {
		b.WriteString(guidance)
		b.WriteString("\n")
	}
	b.WriteString("Never mention scores, stages, or that you are qualifying the visitor.\n")

	return b.String()
}

// window returns the last n messages as completion messages (role+content).
func window(msgs []domain.Message, n int) []llm.Message {
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}
