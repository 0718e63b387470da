package engine

import (
	"strings"

	"github.com/asjidimtiaz/leadqual/internal/domain"
)

// convertScoreThreshold is the accumulated score at which the funnel pushes
// toward a quote offer.
const convertScoreThreshold = 30

// NextMode computes the session's next conversation mode. It must run after
// extraction and score accumulation for the current message, since the
// transition rules read the updated score and metadata.
//
// Resolution happens in two explicit passes: the primary priority chain, then
// the question-cue interrupt. The interrupt is checked after the primary
// result: a clarifying question downgrades even a freshly computed
// convert/capture transition back to qa for this message. Keep the two passes
// separate; folding the override into the chain changes behavior.
//
// NextMode never fails; an utterance matching no rule leaves the mode
// unchanged.
func NextMode(current domain.Mode, sess *domain.Session, utterance string, rules RuleSet) domain.Mode {
	text := strings.ToLower(utterance)

	next := primaryTransition(current, sess, text, rules)

	if containsAny(text, rules.QuestionCues) {
		return domain.ModeQA
	}
	return next
}

// primaryTransition is the priority chain; first matching rule wins.
func primaryTransition(current domain.Mode, sess *domain.Session, text string, rules RuleSet) domain.Mode {
	switch {
	case current == domain.ModeIntro:
		return domain.ModeDiscover

	case current == domain.ModeDiscover && sess.Metadata.Service != "":
		return domain.ModeQualify

	case sess.LeadScore >= convertScoreThreshold &&
		current != domain.ModeConvert && current != domain.ModeCapture:
		return domain.ModeConvert

	case current == domain.ModeConvert && containsAny(text, rules.AffirmativeCues):
		return domain.ModeCapture
	}

	return current
}
