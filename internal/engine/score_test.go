package engine

import (
	"testing"

	"github.com/asjidimtiaz/leadqual/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestApplyDelta_Accumulates(t *testing.T) {
	sess := &domain.Session{}
	ApplyDelta(sess, 5)
	ApplyDelta(sess, 20)
	assert.Equal(t, 25, sess.LeadScore)
}

func TestApplyDelta_RejectsNegative(t *testing.T) {
	sess := &domain.Session{LeadScore: 30}
	ApplyDelta(sess, -10)
	assert.Equal(t, 30, sess.LeadScore)
}

func TestApplyDelta_NoUpperClamp(t *testing.T) {
	sess := &domain.Session{LeadScore: 95}
	ApplyDelta(sess, 50)
	assert.Equal(t, 145, sess.LeadScore)
}

// The wizard and chat paths deliberately use different cut points. These
// tests pin both policies separately; do not unify them.

func TestWizardPolicy_InclusiveCutPoints(t *testing.T) {
	tests := []struct {
		score int
		want  domain.Tier
	}{
		{0, domain.TierCold},
		{29, domain.TierCold},
		{30, domain.TierWarm},
		{59, domain.TierWarm},
		{60, domain.TierHot},
		{100, domain.TierHot},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Wizard.Tier(tt.score), "score %d", tt.score)
	}
}

func TestChatPolicy_StrictCutPoints(t *testing.T) {
	tests := []struct {
		score int
		want  domain.Tier
	}{
		{0, domain.TierCold},
		{20, domain.TierCold},
		{21, domain.TierWarm},
		{40, domain.TierWarm},
		{41, domain.TierHot},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Chat.Tier(tt.score), "score %d", tt.score)
	}
}

func TestPoliciesDiverge(t *testing.T) {
	// Score 45: hot on the chat path, warm on the wizard path.
	assert.Equal(t, domain.TierHot, Chat.Tier(45))
	assert.Equal(t, domain.TierWarm, Wizard.Tier(45))
}
