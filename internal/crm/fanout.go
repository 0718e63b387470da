// Package crm delivers created leads to one or more sinks: the local
// database, an outbound webhook, and a Google Sheets export.
package crm

import (
	"context"
	"fmt"

	"github.com/asjidimtiaz/leadqual/internal/domain"
	"github.com/asjidimtiaz/leadqual/internal/logging"
)

// Sink receives a created lead. Implementations must be safe for concurrent use.
type Sink interface {
	Name() string
	Create(ctx context.Context, lead domain.Lead) error
}

// Fanout writes each lead to every sink in order. The first sink is the
// durable one: if it fails, Create fails. Later sinks are best effort and
// their failures are only logged, so a webhook outage cannot lose leads
// that already reached the database.
type Fanout struct {
	sinks []Sink
	log   *logging.Logger
}

// NewFanout builds a fanout over the given sinks.
func NewFanout(log *logging.Logger, sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks, log: log.Sub("crm")}
}

// Create delivers the lead to all sinks.
func (f *Fanout) Create(ctx context.Context, lead domain.Lead) error {
	for i, sink := range f.sinks {
		err := sink.Create(ctx, lead)
		if err == nil {
			f.log.Debug().Str("sink", sink.Name()).Str("leadId", lead.ID).Msg("lead delivered")
			continue
		}
		if i == 0 {
			return fmt.Errorf("durable sink %s: %w", sink.Name(), err)
		}
		f.log.Error().Err(err).Str("sink", sink.Name()).Str("leadId", lead.ID).Msg("lead delivery failed")
	}
	return nil
}
