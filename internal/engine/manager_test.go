package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/asjidimtiaz/leadqual/internal/domain"
	"github.com/asjidimtiaz/leadqual/internal/hooks"
	"github.com/asjidimtiaz/leadqual/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(t *testing.T, client llm.Client, crm LeadRecorder) (*Manager, *MemorySessionStore) {
	t.Helper()
	if client == nil {
		client = &llm.MockClient{}
	}
	if crm == nil {
		crm = &recordingCRM{}
	}
	store := NewMemorySessionStore()
	log := silentLog()
	m := NewManager(
		store,
		DefaultRules,
		NewResponder(client, testResponderConfig(), log),
		NewGate(crm, log),
		hooks.NewManager(log),
		log,
	)
	return m, store
}

func TestStartSession(t *testing.T) {
	m, store := testManager(t, nil, nil)

	sess, err := m.StartSession(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, domain.ModeIntro, sess.Mode)
	assert.Zero(t, sess.LeadScore)
	assert.Empty(t, sess.Messages)

	stored, err := store.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeIntro, stored.Mode)
}

func TestProcessMessage_UnknownSession(t *testing.T) {
	m, _ := testManager(t, nil, nil)
	_, err := m.ProcessMessage(context.Background(), "nope", "hello")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestProcessMessage_EmptyMessage(t *testing.T) {
	m, _ := testManager(t, nil, nil)
	sess, err := m.StartSession(context.Background())
	require.NoError(t, err)

	_, err = m.ProcessMessage(context.Background(), sess.ID, "  ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestProcessMessage_AppendsBothTurns(t *testing.T) {
	m, store := testManager(t, nil, nil)
	sess, _ := m.StartSession(context.Background())

	res, err := m.ProcessMessage(context.Background(), sess.ID, "hello there")
	require.NoError(t, err)
	assert.Equal(t, "mock response", res.Reply)

	stored, err := store.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, domain.RoleUser, stored.Messages[0].Role)
	assert.Equal(t, domain.RoleAssistant, stored.Messages[1].Role)
}

func TestFunnel_ServiceDiscoveryScenario(t *testing.T) {
	m, _ := testManager(t, nil, nil)
	ctx := context.Background()
	sess, _ := m.StartSession(ctx)

	res, err := m.ProcessMessage(ctx, sess.ID, "Hi, I need a website")
	require.NoError(t, err)
	assert.Equal(t, domain.ModeDiscover, res.Mode)

	res, err = m.ProcessMessage(ctx, sess.ID, "I need a Next.js website for my business")
	require.NoError(t, err)
	assert.Equal(t, domain.ModeQualify, res.Mode)

	stored, _ := m.store.Get(ctx, sess.ID)
	assert.Equal(t, "Web Development", stored.Metadata.Service)
}

func TestFunnel_BudgetUrgencyCrossesConvertThreshold(t *testing.T) {
	m, _ := testManager(t, nil, nil)
	ctx := context.Background()
	sess, _ := m.StartSession(ctx)

	// Seed some score first (email: +20), landing in discover.
	res, err := m.ProcessMessage(ctx, sess.ID, "hi, I'm jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, 20, res.LeadScore)

	// +5 budget +10 magnitude +10 urgency = 25 → cumulative 45 ≥ 30 → convert.
	res, err = m.ProcessMessage(ctx, sess.ID, "My budget is around $10k and it's urgent")
	require.NoError(t, err)
	assert.Equal(t, 45, res.LeadScore)
	assert.Equal(t, domain.ModeConvert, res.Mode)
}

func TestFunnel_CaptureAndConvertOnce(t *testing.T) {
	crm := &recordingCRM{}
	m, _ := testManager(t, nil, crm)
	ctx := context.Background()
	sess, _ := m.StartSession(ctx)

	_, err := m.ProcessMessage(ctx, sess.ID, "hello")
	require.NoError(t, err)
	_, err = m.ProcessMessage(ctx, sess.ID, "My budget is around $10k and it's urgent, it's for automation")
	require.NoError(t, err)

	// "cost" adds the last 5 points, reaching the convert threshold.
	res, err := m.ProcessMessage(ctx, sess.ID, "the cost matters a lot to us")
	require.NoError(t, err)
	assert.Equal(t, domain.ModeConvert, res.Mode)

	res, err = m.ProcessMessage(ctx, sess.ID, "yes, send me a quote, my email is a@b.com")
	require.NoError(t, err)
	assert.Equal(t, domain.ModeCapture, res.Mode)
	assert.True(t, res.IsConverted)
	assert.Equal(t, 1, crm.count())

	// The same capture message again never creates a second lead.
	res, err = m.ProcessMessage(ctx, sess.ID, "yes, send me a quote, my email is a@b.com")
	require.NoError(t, err)
	assert.True(t, res.IsConverted)
	assert.Equal(t, 1, crm.count())
}

// failingSaveStore fails the next Save calls while failures is positive.
type failingSaveStore struct {
	SessionStore
	failures int
}

func (s *failingSaveStore) Save(ctx context.Context, sess *domain.Session) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("save failed")
	}
	return s.SessionStore.Save(ctx, sess)
}

func TestProcessMessage_SaveFailureNeverDuplicatesLead(t *testing.T) {
	crm := &recordingCRM{}
	store := &failingSaveStore{SessionStore: NewMemorySessionStore()}
	log := silentLog()
	m := NewManager(
		store,
		DefaultRules,
		NewResponder(&llm.MockClient{}, testResponderConfig(), log),
		NewGate(crm, log),
		hooks.NewManager(log),
		log,
	)

	ctx := context.Background()
	sess, err := m.StartSession(ctx)
	require.NoError(t, err)

	_, err = m.ProcessMessage(ctx, sess.ID, "hello")
	require.NoError(t, err)
	_, err = m.ProcessMessage(ctx, sess.ID, "My budget is around $10k and it's urgent, it's for automation")
	require.NoError(t, err)
	_, err = m.ProcessMessage(ctx, sess.ID, "the cost matters a lot to us")
	require.NoError(t, err)

	// The converting turn fails to persist: no lead may be recorded, since
	// the retry would re-fire the gate and duplicate it.
	store.failures = 1
	_, err = m.ProcessMessage(ctx, sess.ID, "yes, send me a quote, my email is a@b.com")
	require.Error(t, err)
	assert.Zero(t, crm.count())

	// The retried turn persists first, then records exactly one lead.
	res, err := m.ProcessMessage(ctx, sess.ID, "yes, send me a quote, my email is a@b.com")
	require.NoError(t, err)
	assert.True(t, res.IsConverted)
	assert.Equal(t, 1, crm.count())
}

func TestScoreMonotonicity(t *testing.T) {
	m, _ := testManager(t, nil, nil)
	ctx := context.Background()
	sess, _ := m.StartSession(ctx)

	utterances := []string{
		"hello",
		"what is your price",
		"just browsing really",
		"we need an app urgently",
		"my budget is 5k",
		"thanks, nothing else",
	}

	last := 0
	for _, u := range utterances {
		res, err := m.ProcessMessage(ctx, sess.ID, u)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.LeadScore, last, "utterance %q", u)
		last = res.LeadScore
	}
}

func TestProcessMessage_FallbackReplyStillPersists(t *testing.T) {
	failing := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return nil, errors.New("completion service unreachable")
		},
	}
	m, store := testManager(t, failing, nil)
	ctx := context.Background()
	sess, _ := m.StartSession(ctx)

	res, err := m.ProcessMessage(ctx, sess.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, DefaultFallbackReply, res.Reply)
	assert.False(t, res.IsConverted)

	stored, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, DefaultFallbackReply, stored.Messages[1].Content)
	assert.Equal(t, domain.ModeDiscover, stored.Mode)
}

func TestProcessMessage_EmitsHooks(t *testing.T) {
	m, _ := testManager(t, nil, nil)
	var events []string
	m.hooks.On(hooks.EventMessageProcessed, "test", func(ctx context.Context, p hooks.Payload) error {
		events = append(events, p.Event)
		return nil
	})

	ctx := context.Background()
	sess, _ := m.StartSession(ctx)
	_, err := m.ProcessMessage(ctx, sess.ID, "hello")
	require.NoError(t, err)

	assert.Equal(t, []string{hooks.EventMessageProcessed}, events)
}
