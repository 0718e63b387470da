package engine

import "github.com/asjidimtiaz/leadqual/internal/domain"

// ScorePolicy maps an accumulated lead score to a quality tier. Inclusive
// controls whether the cut points themselves qualify (score >= Hot) or not
// (score > Hot).
//
// The quote wizard and the chat engine deliberately use different cut
// points; the two policies are kept separate and must not be unified
// without product confirmation.
type ScorePolicy struct {
	Name      string
	Hot       int
	Warm      int
	Inclusive bool
}

// Wizard is the scoring policy for the quote-request wizard path.
var Wizard = ScorePolicy{Name: "wizard", Hot: 60, Warm: 30, Inclusive: true}

// Chat is the scoring policy applied by the conversion gate.
var Chat = ScorePolicy{Name: "chat", Hot: 40, Warm: 20, Inclusive: false}

// Tier derives the lead tier for a score under this policy.
func (p ScorePolicy) Tier(score int) domain.Tier {
	if p.Inclusive {
		switch {
		case score >= p.Hot:
			return domain.TierHot
		case score >= p.Warm:
			return domain.TierWarm
		}
		return domain.TierCold
	}
	switch {
	case score > p.Hot:
		return domain.TierHot
	case score > p.Warm:
		return domain.TierWarm
	}
	return domain.TierCold
}

// ApplyDelta adds a non-negative delta to the session's lead score. Negative
// deltas are discarded so the score is monotonically non-decreasing over the
// session's lifetime. There is no upper clamp.
func ApplyDelta(sess *domain.Session, delta int) {
	if delta <= 0 {
		return
	}
	sess.LeadScore += delta
}
