package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/asjidimtiaz/leadqual/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingCRM counts lead creations and optionally fails.
type recordingCRM struct {
	mu    sync.Mutex
	leads []domain.Lead
	err   error
}

func (c *recordingCRM) Create(_ context.Context, lead domain.Lead) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.leads = append(c.leads, lead)
	return nil
}

func (c *recordingCRM) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.leads)
}

func captureSession() *domain.Session {
	return &domain.Session{
		ID:        "s1",
		Mode:      domain.ModeCapture,
		LeadScore: 45,
		Metadata: domain.Metadata{
			Service: "Web Development",
			Urgency: UrgencyHigh,
			Contact: domain.ContactInfo{Email: "jane@example.com"},
		},
	}
}

func TestMaybeConvert_Fires(t *testing.T) {
	crm := &recordingCRM{}
	g := NewGate(crm, silentLog())

	sess := captureSession()
	created := g.MaybeConvert(context.Background(), sess, "my email is jane@example.com")

	assert.True(t, created)
	assert.True(t, sess.IsConverted)
	require.Equal(t, 1, crm.count())

	lead := crm.leads[0]
	assert.Equal(t, "jane@example.com", lead.Email)
	assert.Equal(t, FallbackLeadName, lead.Name)
	assert.Equal(t, "Web Development", lead.Service)
	assert.Equal(t, "ASAP", lead.Timeline)
	assert.Equal(t, domain.TierHot, lead.Tier) // chat policy: 45 > 40
	assert.Equal(t, domain.LeadSourceChat, lead.Source)
	assert.Contains(t, lead.Message, "score 45")
	assert.Contains(t, lead.Message, "capture")
}

func TestMaybeConvert_StickyEmailWithoutAtSign(t *testing.T) {
	crm := &recordingCRM{}
	g := NewGate(crm, silentLog())

	sess := captureSession()
	created := g.MaybeConvert(context.Background(), sess, "yes send the quote over")

	assert.True(t, created)
	assert.Equal(t, 1, crm.count())
}

func TestMaybeConvert_NotInCaptureMode(t *testing.T) {
	crm := &recordingCRM{}
	g := NewGate(crm, silentLog())

	sess := captureSession()
	sess.Mode = domain.ModeConvert
	created := g.MaybeConvert(context.Background(), sess, "jane@example.com")

	assert.False(t, created)
	assert.False(t, sess.IsConverted)
	assert.Zero(t, crm.count())
}

func TestMaybeConvert_NoContactSignal(t *testing.T) {
	crm := &recordingCRM{}
	g := NewGate(crm, silentLog())

	sess := captureSession()
	sess.Metadata.Contact.Email = ""
	created := g.MaybeConvert(context.Background(), sess, "I will send it later")

	assert.False(t, created)
	assert.False(t, sess.IsConverted)
}

func TestMaybeConvert_AtMostOnce(t *testing.T) {
	crm := &recordingCRM{}
	g := NewGate(crm, silentLog())

	sess := captureSession()
	for i := 0; i < 5; i++ {
		g.MaybeConvert(context.Background(), sess, "jane@example.com again")
	}

	assert.Equal(t, 1, crm.count())
	assert.True(t, sess.IsConverted)
}

func TestMaybeConvert_OptimisticFlagOnWriteFailure(t *testing.T) {
	// The converted flag is set before the CRM write: a failed write loses
	// the lead but can never duplicate it on retry.
	crm := &recordingCRM{err: errors.New("crm down")}
	g := NewGate(crm, silentLog())

	sess := captureSession()
	created := g.MaybeConvert(context.Background(), sess, "jane@example.com")

	assert.False(t, created)
	assert.True(t, sess.IsConverted)

	crm.err = nil
	created = g.MaybeConvert(context.Background(), sess, "jane@example.com")
	assert.False(t, created)
	assert.Zero(t, crm.count())
}

func TestArm_DoesNotWriteCRM(t *testing.T) {
	crm := &recordingCRM{}
	g := NewGate(crm, silentLog())

	sess := captureSession()
	assert.True(t, g.Arm(sess, "jane@example.com"))
	assert.True(t, sess.IsConverted)
	assert.Zero(t, crm.count())

	assert.True(t, g.Record(context.Background(), sess))
	assert.Equal(t, 1, crm.count())
}

func TestLeadFromSession_NameFallback(t *testing.T) {
	sess := captureSession()
	lead := LeadFromSession(sess)
	assert.Equal(t, FallbackLeadName, lead.Name)

	sess.Metadata.Contact.Name = "Jane"
	lead = LeadFromSession(sess)
	assert.Equal(t, "Jane", lead.Name)
}

func TestDeriveTimeline(t *testing.T) {
	assert.Equal(t, "ASAP", deriveTimeline(domain.Metadata{Urgency: UrgencyHigh}))
	assert.Equal(t, "1-3 months", deriveTimeline(domain.Metadata{Budget: BudgetSpecified}))
	assert.Equal(t, "flexible", deriveTimeline(domain.Metadata{}))
}
