package engine

import (
	"testing"

	"github.com/asjidimtiaz/leadqual/internal/domain"
	"github.com/stretchr/testify/assert"
)

func sessionWith(mode domain.Mode, score int, service string) *domain.Session {
	return &domain.Session{
		Mode:      mode,
		LeadScore: score,
		Metadata:  domain.Metadata{Service: service},
	}
}

func TestNextMode_IntroAlwaysAdvances(t *testing.T) {
	sess := sessionWith(domain.ModeIntro, 0, "")
	got := NextMode(domain.ModeIntro, sess, "hello", DefaultRules)
	assert.Equal(t, domain.ModeDiscover, got)
}

func TestNextMode_DiscoverWithServiceQualifies(t *testing.T) {
	sess := sessionWith(domain.ModeDiscover, 0, "Web Development")
	got := NextMode(domain.ModeDiscover, sess, "I need a site", DefaultRules)
	assert.Equal(t, domain.ModeQualify, got)
}

func TestNextMode_DiscoverWithoutServiceStays(t *testing.T) {
	sess := sessionWith(domain.ModeDiscover, 0, "")
	got := NextMode(domain.ModeDiscover, sess, "just browsing", DefaultRules)
	assert.Equal(t, domain.ModeDiscover, got)
}

func TestNextMode_ScoreThresholdConverts(t *testing.T) {
	sess := sessionWith(domain.ModeQualify, 30, "Web Development")
	got := NextMode(domain.ModeQualify, sess, "sounds good to me", DefaultRules)
	assert.Equal(t, domain.ModeConvert, got)
}

func TestNextMode_ServiceRuleBeatsScoreRuleInDiscover(t *testing.T) {
	// Rule order matters: discover+service wins over the score rule.
	sess := sessionWith(domain.ModeDiscover, 50, "Web Development")
	got := NextMode(domain.ModeDiscover, sess, "lots of signals here", DefaultRules)
	assert.Equal(t, domain.ModeQualify, got)
}

func TestNextMode_ConvertPlusAffirmativeCaptures(t *testing.T) {
	sess := sessionWith(domain.ModeConvert, 45, "Web Development")
	got := NextMode(domain.ModeConvert, sess, "yes please", DefaultRules)
	assert.Equal(t, domain.ModeCapture, got)
}

func TestNextMode_CaptureDoesNotRegressToConvert(t *testing.T) {
	sess := sessionWith(domain.ModeCapture, 80, "Web Development")
	got := NextMode(domain.ModeCapture, sess, "my email will follow", DefaultRules)
	assert.Equal(t, domain.ModeCapture, got)
}

func TestNextMode_SelfLoopDefault(t *testing.T) {
	sess := sessionWith(domain.ModeQualify, 10, "Web Development")
	got := NextMode(domain.ModeQualify, sess, "let me think", DefaultRules)
	assert.Equal(t, domain.ModeQualify, got)
}

func TestNextMode_QuestionCueForcesQA(t *testing.T) {
	sess := sessionWith(domain.ModeQualify, 10, "Web Development")
	got := NextMode(domain.ModeQualify, sess, "quick question about pricing", DefaultRules)
	assert.Equal(t, domain.ModeQA, got)
}

func TestNextMode_QAOverrideBeatsCaptureTransition(t *testing.T) {
	// The interrupt pass runs after the primary chain and can downgrade a
	// same-message capture transition. This ordering is intentional.
	sess := sessionWith(domain.ModeConvert, 45, "Web Development")
	got := NextMode(domain.ModeConvert, sess, "yes, but first a question", DefaultRules)
	assert.Equal(t, domain.ModeQA, got)
}

func TestNextMode_QAOverrideBeatsIntroTransition(t *testing.T) {
	sess := sessionWith(domain.ModeIntro, 0, "")
	got := NextMode(domain.ModeIntro, sess, "what is your pricing model", DefaultRules)
	assert.Equal(t, domain.ModeQA, got)
}
