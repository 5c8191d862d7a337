package daemon_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scrapekit-ai/scrapekit/internal/cron"
	"github.com/scrapekit-ai/scrapekit/internal/daemon"
	"github.com/scrapekit-ai/scrapekit/internal/effect"
	"github.com/scrapekit-ai/scrapekit/internal/event"
	"github.com/scrapekit-ai/scrapekit/internal/lang"
	"github.com/scrapekit-ai/scrapekit/internal/scrape"
	"github.com/scrapekit-ai/scrapekit/internal/storage"
	"github.com/scrapekit-ai/scrapekit/pkg/types"
)

// perfectClock simulates a world where oversleeping never happens, so
// every timestamp is observed exactly once.
type perfectClock struct {
	timestamps []time.Time
	offset     int
}

func (c *perfectClock) Interval() time.Duration { return 0 }

func (c *perfectClock) Now() (time.Time, bool) {
	c.offset++
	return c.at(c.offset - 1)
}

func (c *perfectClock) Peek() (time.Time, bool) { return c.at(c.offset - 1) }

func (c *perfectClock) Sleep(context.Context, time.Duration) {}

func (c *perfectClock) at(i int) (time.Time, bool) {
	if i < 0 || i >= len(c.timestamps) {
		return time.Time{}, false
	}
	return c.timestamps[i], true
}

// oversleepClock returns timestamps[n] after n sleeps, modelling a
// half-interval sleep that overshoots into the next minute.
type oversleepClock struct {
	timestamps []time.Time
	timesSlept int
}

func (c *oversleepClock) Interval() time.Duration { return 0 }

func (c *oversleepClock) Now() (time.Time, bool) { return c.at(c.timesSlept) }

func (c *oversleepClock) Peek() (time.Time, bool) { return c.at(c.timesSlept) }

func (c *oversleepClock) Sleep(context.Context, time.Duration) { c.timesSlept++ }

func (c *oversleepClock) at(i int) (time.Time, bool) {
	if i >= len(c.timestamps) {
		return time.Time{}, false
	}
	return c.timestamps[i], true
}

var _ = Describe("Daemon", func() {
	var count atomic.Int32

	BeforeEach(func() {
		event.Reset()
		count.Store(0)
	})

	AfterEach(func() {
		event.Reset()
	})

	printLoader := lang.LoadFunc(func(name string) (string, error) {
		if name != "print" {
			return "", fmt.Errorf("Script not found: %s", name)
		}
		return "effect print\n", nil
	})

	countRegistry := func() *effect.Registry {
		r := effect.NewRegistry()
		r.Register("print", func(context.Context, []string, map[string]string, effect.Options) error {
			count.Add(1)
			return nil
		})
		return r
	}

	printJob := func(dedup bool) daemon.Job {
		return daemon.Job{
			Suite:    "default",
			Name:     "default",
			Script:   "print",
			Schedule: cron.MustParse("* * * * *"),
			Dedup:    dedup,
		}
	}

	runWithClock := func(job daemon.Job, clock daemon.Clock) {
		d := daemon.New(daemon.Config{
			Jobs:          []daemon.Job{job},
			Loader:        printLoader,
			Driver:        scrape.NullDriver{},
			Registry:      countRegistry(),
			EffectOptions: effect.Options{Silent: true},
			Clock:         clock,
		})
		Expect(d.Run(context.Background())).To(Succeed())
	}

	It("should run a due job at every observed minute", func() {
		t0 := time.Now()
		clock := &perfectClock{timestamps: []time.Time{t0, t0.Add(time.Minute), t0.Add(2 * time.Minute)}}

		runWithClock(printJob(false), clock)

		Expect(count.Load()).To(Equal(int32(3)))
	})

	It("should deduplicate repeated invocations when the job opts in", func() {
		t0 := time.Now()
		clock := &perfectClock{timestamps: []time.Time{t0, t0.Add(time.Minute), t0.Add(2 * time.Minute)}}

		runWithClock(printJob(true), clock)

		Expect(count.Load()).To(Equal(int32(1)))
	})

	It("should skip the second half-sleep after oversleeping into the next minute", func() {
		t0 := time.Now()
		clock := &oversleepClock{timestamps: []time.Time{
			// observed by the first Now
			t0,
			// the first half-sleep overslept: Peek and the second Now
			// both land in the next minute
			t0.Add(time.Minute),
			// the second tick's Peek still sees that minute
			t0.Add(time.Minute),
			// observed by the third Now
			t0.Add(2 * time.Minute),
		}}

		runWithClock(printJob(false), clock)

		Expect(count.Load()).To(Equal(int32(3)))
	})

	Describe("run records", func() {
		var store *storage.RunStore

		BeforeEach(func() {
			store = storage.NewRunStore(GinkgoT().TempDir())
		})

		fetchJob := daemon.Job{
			Suite:    "default",
			Name:     "fetch",
			Script:   "fetch",
			Schedule: cron.MustParse("* * * * *"),
		}

		runOnce := func(source string, driver scrape.Driver) {
			loader := lang.LoadFunc(func(string) (string, error) { return source, nil })
			d := daemon.New(daemon.Config{
				Jobs:          []daemon.Job{fetchJob},
				Loader:        loader,
				Driver:        driver,
				Registry:      effect.NewRegistry(),
				EffectOptions: effect.Options{Silent: true},
				Store:         store,
				Clock:         &perfectClock{timestamps: []time.Time{time.Now()}},
			})
			Expect(d.Run(context.Background())).To(Succeed())
		}

		It("should persist a run record and a results snapshot", func() {
			runOnce("get \"page\"\nextract \".+\"\n", scrape.StaticDriver("alpha\nbeta"))

			records, err := store.RecentRuns(context.Background(), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))

			record := records[0]
			Expect(record.Suite).To(Equal("default"))
			Expect(record.Job).To(Equal("fetch"))
			Expect(record.Script).To(Equal("fetch"))
			Expect(record.Error).To(BeEmpty())
			Expect(record.ResultCount).To(Equal(2))
			Expect(record.FinishedAt).NotTo(BeZero())

			snap, err := store.LatestResults(context.Background(), "default", "fetch")
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Results).To(Equal([]string{"alpha", "beta"}))
			Expect(snap.RunID).To(Equal(record.ID))
		})

		It("should record the error when a run fails", func() {
			runOnce("load missing\n", scrape.NullDriver{})

			records, err := store.RecentRuns(context.Background(), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].Error).To(ContainSubstring("no such variable"))
			Expect(records[0].ResultCount).To(BeZero())

			_, err = store.LatestResults(context.Background(), "default", "fetch")
			Expect(err).To(MatchError(storage.ErrNotFound))
		})

		It("should publish results.changed only when the output moves", func() {
			var mu sync.Mutex
			var changes []event.ResultsChangedData
			unsubscribe := event.Subscribe(event.ResultsChanged, func(e event.Event) {
				if data, ok := e.Data.(event.ResultsChangedData); ok {
					mu.Lock()
					changes = append(changes, data)
					mu.Unlock()
				}
			})
			defer unsubscribe()

			body := "one"
			driver := scrape.DriverFunc(func(context.Context, string, map[string]string) (string, error) {
				return body, nil
			})

			runOnce("get \"page\"\nextract \".+\"\n", driver)
			runOnce("get \"page\"\nextract \".+\"\n", driver)
			body = "two"
			runOnce("get \"page\"\nextract \".+\"\n", driver)

			mu.Lock()
			defer mu.Unlock()
			Expect(changes).To(HaveLen(2))
			Expect(changes[0].Diff).To(ContainSubstring("+one"))
			Expect(changes[1].Diff).To(ContainSubstring("+two"))
			Expect(changes[1].Suite).To(Equal("default"))
			Expect(changes[1].Job).To(Equal("fetch"))
		})
	})

	Describe("JobsFromConfig", func() {
		It("should flatten suites in name order and number jobs per suite", func() {
			cfg := &types.Config{
				ConfigVersion: 1,
				Suites: map[string]types.SuiteConfig{
					"beta": {Jobs: []types.JobConfig{
						{Script: "b", Schedule: "0 0 * * *"},
					}},
					"alpha": {Jobs: []types.JobConfig{
						{Name: "first", Script: "a", Schedule: "* * * * *"},
						{Name: "second", Script: "a", Schedule: "*/5 * * * *", Dedup: true},
					}},
				},
			}

			jobs, err := daemon.JobsFromConfig(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(jobs).To(HaveLen(3))
			Expect(jobs[0].ID()).To(Equal("alpha.first-0"))
			Expect(jobs[1].ID()).To(Equal("alpha.second-1"))
			Expect(jobs[1].Dedup).To(BeTrue())
			Expect(jobs[2].ID()).To(Equal("beta.unnamed-0"))
		})

		It("should reject a bad schedule naming the job", func() {
			cfg := &types.Config{
				ConfigVersion: 1,
				Suites: map[string]types.SuiteConfig{
					"default": {Jobs: []types.JobConfig{
						{Name: "broken", Script: "x", Schedule: "not a schedule"},
					}},
				},
			}

			_, err := daemon.JobsFromConfig(cfg)
			Expect(err).To(MatchError(ContainSubstring(`suite "default" job "broken"`)))
		})
	})
})
