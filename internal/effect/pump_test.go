package effect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scrapekit-ai/scrapekit/internal/event"
)

func publishInvocation(suite, job string, seq int, name string, args []string) {
	event.PublishSync(event.Event{
		Type: event.EffectInvoked,
		Data: event.EffectInvokedData{
			Name:  name,
			Args:  args,
			Suite: suite,
			Job:   job,
			Seq:   seq,
		},
	})
}

func countingRegistry(count *int) *Registry {
	r := NewRegistry()
	r.Register("count", func(context.Context, []string, map[string]string, Options) error {
		*count++
		return nil
	})
	return r
}

func TestPumpExecutesInvocations(t *testing.T) {
	event.Reset()
	t.Cleanup(event.Reset)

	var count int
	pump := NewPump("s", "j", 0, countingRegistry(&count), Options{Silent: true}, false)
	pump.Start(context.Background())
	defer pump.Stop()

	assert.Equal(t, "s.j-0", pump.ID())

	publishInvocation("s", "j", 0, "count", []string{"a"})
	publishInvocation("s", "j", 0, "count", []string{"a"})
	publishInvocation("s", "j", 0, "count", []string{"b"})

	assert.Equal(t, 3, count)
}

func TestPumpDedup(t *testing.T) {
	event.Reset()
	t.Cleanup(event.Reset)

	var count int
	pump := NewPump("s", "j", 0, countingRegistry(&count), Options{Silent: true}, true)
	pump.Start(context.Background())
	defer pump.Stop()

	publishInvocation("s", "j", 0, "count", []string{"a"})
	publishInvocation("s", "j", 0, "count", []string{"a"})
	publishInvocation("s", "j", 0, "count", []string{"b"})

	assert.Equal(t, 2, count)
}

func TestPumpFiltersOtherJobs(t *testing.T) {
	event.Reset()
	t.Cleanup(event.Reset)

	var count int
	pump := NewPump("s", "j", 0, countingRegistry(&count), Options{Silent: true}, false)
	pump.Start(context.Background())
	defer pump.Stop()

	publishInvocation("s", "other", 0, "count", nil)
	publishInvocation("other", "j", 0, "count", nil)
	publishInvocation("s", "j", 1, "count", nil)

	assert.Equal(t, 0, count)
}

func TestPumpUnknownEffect(t *testing.T) {
	event.Reset()
	t.Cleanup(event.Reset)

	var count int
	pump := NewPump("s", "j", 0, countingRegistry(&count), Options{Silent: true}, false)
	pump.Start(context.Background())
	defer pump.Stop()

	// Unknown names are logged and skipped, later invocations still run.
	publishInvocation("s", "j", 0, "ghost", nil)
	publishInvocation("s", "j", 0, "count", nil)

	assert.Equal(t, 1, count)
}

func TestPumpStop(t *testing.T) {
	event.Reset()
	t.Cleanup(event.Reset)

	var count int
	pump := NewPump("s", "j", 0, countingRegistry(&count), Options{Silent: true}, false)
	pump.Start(context.Background())
	pump.Stop()

	publishInvocation("s", "j", 0, "count", nil)
	assert.Equal(t, 0, count)
}
