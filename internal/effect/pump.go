package effect

import (
	"context"
	"fmt"
	"sync"

	"github.com/scrapekit-ai/scrapekit/internal/event"
	"github.com/scrapekit-ai/scrapekit/internal/logging"
)

// Pump executes the effect invocations one daemon job publishes on the
// event bus. Each job gets its own pump so deduplication state stays
// per job across runs. Jobs within a suite are told apart by their
// sequence number, which keeps two jobs with the same name from
// receiving each other's invocations.
type Pump struct {
	suite    string
	job      string
	seq      int
	registry *Registry
	opts     Options
	dedup    bool

	mu   sync.Mutex
	seen map[uint64]struct{}

	stop func()
}

// NewPump creates a pump for the given suite, job and job sequence
// number. With dedup set, an invocation whose hash was already handled
// is dropped.
func NewPump(suite, job string, seq int, registry *Registry, opts Options, dedup bool) *Pump {
	return &Pump{
		suite:    suite,
		job:      job,
		seq:      seq,
		registry: registry,
		opts:     opts,
		dedup:    dedup,
		seen:     make(map[uint64]struct{}),
	}
}

// ID identifies the pump in logs.
func (p *Pump) ID() string {
	return fmt.Sprintf("%s.%s-%d", p.suite, p.job, p.seq)
}

// Start subscribes the pump to effect.invoked events for its job.
func (p *Pump) Start(ctx context.Context) {
	p.stop = event.Subscribe(event.EffectInvoked, func(e event.Event) {
		data, ok := e.Data.(event.EffectInvokedData)
		if !ok {
			return
		}
		if data.Suite != p.suite || data.Job != p.job || data.Seq != p.seq {
			return
		}
		p.handle(ctx, Invocation{Name: data.Name, Args: data.Args, Kwargs: data.Kwargs})
	})
}

// Stop unsubscribes the pump from the bus.
func (p *Pump) Stop() {
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
}

func (p *Pump) handle(ctx context.Context, inv Invocation) {
	if p.dedup && !p.first(inv) {
		logging.Debug().Str("pump", p.ID()).Str("effect", inv.Name).Msg("deduplicated")
		return
	}

	fn, ok := p.registry.Get(inv.Name)
	if !ok {
		logging.Error().Str("pump", p.ID()).Str("effect", inv.Name).Msg("unknown effect")
		return
	}

	if err := fn(ctx, inv.Args, inv.Kwargs, p.opts); err != nil {
		logging.Warn().Str("pump", p.ID()).Str("effect", inv.Name).Err(err).Msg("effect failed")
	}
}

// first records the invocation hash, reporting whether it was new.
func (p *Pump) first(inv Invocation) bool {
	h := inv.Hash()
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[h]; ok {
		return false
	}
	p.seen[h] = struct{}{}
	return true
}
