// Package engine implements the conversational lead qualification engine:
// signal extraction, lead scoring, the conversation state machine, response
// generation, and the at-most-once session-to-lead conversion gate.
package engine

import (
	"regexp"
	"strings"

	"github.com/asjidimtiaz/leadqual/internal/domain"
)

// Score deltas per detected signal.
const (
	deltaBudgetCue      = 5
	deltaBudgetConcrete = 10
	deltaUrgency        = 10
	deltaEmail          = 20
)

// BudgetSpecified is the Metadata.Budget sentinel recorded when a concrete
// magnitude token is seen alongside a budget cue.
const BudgetSpecified = "specified"

// UrgencyHigh is the Metadata.Urgency value set by urgency cues.
const UrgencyHigh = "high"

// IntentQuote is recorded when the visitor signals they want a quote.
const IntentQuote = "quote"

var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// ServiceRule maps a keyword set to a service catalog label.
type ServiceRule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// RuleSet is a versioned vocabulary of lexical cues. Extraction is a pure
// function of a RuleSet, the current metadata, and one utterance, so rule
// sets can be tested independently of the state machine.
type RuleSet struct {
	Version         string        `yaml:"version"`
	CurrencyMarks   []string      `yaml:"currencyMarks,omitempty"`
	BudgetCues      []string      `yaml:"budgetCues,omitempty"`
	MagnitudeTokens []string      `yaml:"magnitudeTokens,omitempty"`
	UrgencyCues     []string      `yaml:"urgencyCues,omitempty"`
	AffirmativeCues []string      `yaml:"affirmativeCues,omitempty"`
	QuestionCues    []string      `yaml:"questionCues,omitempty"`
	Services        []ServiceRule `yaml:"services,omitempty"`
}

// DefaultRules is the production rule vocabulary.
//
// Service rules are evaluated in declared order and each match overwrites the
// previous one, so when an utterance matches several categories the last
// declared match wins.
var DefaultRules = RuleSet{
	Version:         "v1",
	CurrencyMarks:   []string{"$", "€", "£"},
	BudgetCues:      []string{"budget", "cost", "price"},
	MagnitudeTokens: []string{"5000", "5k", "10000", "10k", "20000", "20k", "50000", "50k"},
	UrgencyCues:     []string{"urgent", "asap", "immediately", "deadline"},
	AffirmativeCues: []string{"yes", "sure", "ok", "quote"},
	QuestionCues:    []string{"question", "how", "what is"},
	Services: []ServiceRule{
		{Label: "Web Development", Keywords: []string{"website", "web", "landing", "next.js", "nextjs", "frontend", "ecommerce"}},
		{Label: "Mobile App Development", Keywords: []string{"mobile", "app", "ios", "android", "react native"}},
		{Label: "Business Automation", Keywords: []string{"automation", "automate", "workflow", "integration", "chatbot"}},
	},
}

// MetadataPatch carries incremental metadata updates from one extraction.
// Empty fields mean "no change".
type MetadataPatch struct {
	Service string
	Budget  string
	Urgency string
	Email   string
	Intent  string
}

// ExtractResult is the outcome of scanning a single utterance.
type ExtractResult struct {
	ScoreDelta int
	Patch      MetadataPatch
}

// Extract scans one user utterance for buying signals and returns the score
// delta plus metadata updates. It never fails: an utterance with no cues
// yields a zero delta and an empty patch. Matching is case-insensitive.
func (rs RuleSet) Extract(meta domain.Metadata, utterance string) ExtractResult {
	text := strings.ToLower(utterance)
	var res ExtractResult

	if containsAny(text, rs.CurrencyMarks) || containsAny(text, rs.BudgetCues) {
		res.ScoreDelta += deltaBudgetCue
		if containsAny(text, rs.MagnitudeTokens) {
			res.ScoreDelta += deltaBudgetConcrete
			res.Patch.Budget = BudgetSpecified
		}
	}

	if containsAny(text, rs.UrgencyCues) {
		res.ScoreDelta += deltaUrgency
		res.Patch.Urgency = UrgencyHigh
	}

	for _, rule := range rs.Services {
		if containsAny(text, rule.Keywords) {
			res.Patch.Service = rule.Label
		}
	}

	if email := emailRe.FindString(utterance); email != "" && meta.Contact.Email == "" {
		res.ScoreDelta += deltaEmail
		res.Patch.Email = email
	}

	if containsAny(text, rs.AffirmativeCues) {
		res.Patch.Intent = IntentQuote
	}

	return res
}

// ApplyPatch merges a patch into session metadata. Later extractions
// overwrite earlier values except the sticky contact email.
func ApplyPatch(meta *domain.Metadata, p MetadataPatch) {
	if p.Service != "" {
		meta.Service = p.Service
	}
	if p.Budget != "" {
		meta.Budget = p.Budget
	}
	if p.Urgency != "" {
		meta.Urgency = p.Urgency
	}
	if p.Email != "" && meta.Contact.Email == "" {
		meta.Contact.Email = p.Email
	}
	if p.Intent != "" {
		meta.Intent = p.Intent
	}
}

func containsAny(text string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}
