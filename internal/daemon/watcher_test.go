package daemon_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scrapekit-ai/scrapekit/internal/config"
	"github.com/scrapekit-ai/scrapekit/internal/daemon"
	"github.com/scrapekit-ai/scrapekit/internal/effect"
	"github.com/scrapekit-ai/scrapekit/internal/event"
	"github.com/scrapekit-ai/scrapekit/internal/scrape"
)

var _ = Describe("ConfigWatcher", func() {
	var path string

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "scrapekit.json")
		Expect(os.WriteFile(path, []byte(`{"config_version": 1}`), 0o644)).To(Succeed())
	})

	It("should coalesce a burst of writes into one notification", func() {
		watcher, err := daemon.WatchConfig(path)
		Expect(err).NotTo(HaveOccurred())
		defer watcher.Stop()

		for i := 0; i < 3; i++ {
			Expect(os.WriteFile(path, []byte(`{"config_version": 1}`), 0o644)).To(Succeed())
		}

		Eventually(watcher.Changed()).WithTimeout(3 * time.Second).Should(Receive())
		Consistently(watcher.Changed()).WithTimeout(time.Second).ShouldNot(Receive())
	})

	It("should ignore sibling files", func() {
		watcher, err := daemon.WatchConfig(path)
		Expect(err).NotTo(HaveOccurred())
		defer watcher.Stop()

		sibling := filepath.Join(filepath.Dir(path), "notes.txt")
		Expect(os.WriteFile(sibling, []byte("unrelated"), 0o644)).To(Succeed())

		Consistently(watcher.Changed()).WithTimeout(time.Second).ShouldNot(Receive())
	})
})

var _ = Describe("Serve", func() {
	BeforeEach(func() {
		event.Reset()
	})

	AfterEach(func() {
		event.Reset()
	})

	It("should run the configured jobs until the clock stops", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "print.scrape"), []byte("effect print\n"), 0o644)).To(Succeed())

		path := filepath.Join(dir, "scrapekit.json")
		cfg := `{
			"config_version": 1,
			"script_dirs": ["` + dir + `"],
			"script_names": ["${NAME}.scrape"],
			"suites": {"default": {"jobs": [
				{"name": "print", "script": "print", "schedule": "* * * * *"}
			]}}
		}`
		Expect(os.WriteFile(path, []byte(cfg), 0o644)).To(Succeed())

		var count int
		registry := effect.NewRegistry()
		registry.Register("print", func(context.Context, []string, map[string]string, effect.Options) error {
			count++
			return nil
		})

		err := daemon.Serve(context.Background(), path, daemon.Options{
			Driver:        scrape.NullDriver{},
			Registry:      registry,
			EffectOptions: effect.Options{Silent: true},
			Clock:         &perfectClock{timestamps: []time.Time{time.Now()}},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(1))
	})

	It("should return the load error for a bad config", func() {
		path := filepath.Join(GinkgoT().TempDir(), "scrapekit.json")
		Expect(os.WriteFile(path, []byte(`{"config_version": 99}`), 0o644)).To(Succeed())

		err := daemon.Serve(context.Background(), path, daemon.Options{})
		Expect(err).To(MatchError(config.ErrUnsupportedConfigVersion))
	})

	It("should reload when the config file changes", func() {
		path := filepath.Join(GinkgoT().TempDir(), "scrapekit.json")
		Expect(os.WriteFile(path, []byte(`{"config_version": 1}`), 0o644)).To(Succeed())

		reloaded := make(chan event.ConfigReloadedData, 1)
		unsubscribe := event.Subscribe(event.ConfigReloaded, func(e event.Event) {
			if data, ok := e.Data.(event.ConfigReloadedData); ok {
				select {
				case reloaded <- data:
				default:
				}
			}
		})
		defer unsubscribe()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		serveErr := make(chan error, 1)
		go func() {
			serveErr <- daemon.Serve(ctx, path, daemon.Options{
				Driver: scrape.NullDriver{},
				Clock:  daemon.RealClock{},
			})
		}()

		// Give the watcher a moment to attach before changing the file.
		time.Sleep(200 * time.Millisecond)
		Expect(os.WriteFile(path, []byte(`{"config_version": 1, "script_dirs": ["."]}`), 0o644)).To(Succeed())

		Eventually(reloaded).WithTimeout(5 * time.Second).Should(Receive())

		cancel()
		Eventually(serveErr).WithTimeout(5 * time.Second).Should(Receive(BeNil()))
	})
})
