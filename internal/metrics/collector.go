package metrics

import (
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SystemCollector samples runtime stats into the system gauges.
type SystemCollector struct {
	metrics   *Metrics
	logger    *zap.Logger
	startTime time.Time
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
}

func NewSystemCollector(metrics *Metrics, logger *zap.Logger) *SystemCollector {
	return &SystemCollector{
		metrics:   metrics,
		logger:    logger,
		startTime: time.Now(),
		stopCh:    make(chan struct{}),
	}
}

func (sc *SystemCollector) Start(interval time.Duration) {
	sc.ticker = time.NewTicker(interval)

	version, commit, buildDate := buildInfo()
	sc.metrics.SetServiceVersion(version, commit, buildDate)

	go sc.collectLoop()
	sc.logger.Info("System metrics collector started",
		zap.Duration("interval", interval),
		zap.String("version", version),
		zap.String("commit", commit))
}

func (sc *SystemCollector) Stop() {
	sc.stopOnce.Do(func() {
		if sc.ticker != nil {
			sc.ticker.Stop()
		}
		close(sc.stopCh)
		sc.logger.Info("System metrics collector stopped")
	})
}

func (sc *SystemCollector) collectLoop() {
	sc.collect()

	for {
		select {
		case <-sc.ticker.C:
			sc.collect()
		case <-sc.stopCh:
			return
		}
	}
}

func (sc *SystemCollector) collect() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	uptime := time.Since(sc.startTime)
	sc.metrics.UpdateSystemMetrics(uptime, &memStats)

	sc.logger.Debug("System metrics snapshot",
		zap.Duration("uptime", uptime),
		zap.Int("goroutines", runtime.NumGoroutine()),
		zap.Uint64("alloc_mb", memStats.Alloc/1024/1024),
		zap.Uint32("gc_count", memStats.NumGC),
	)
}

// buildInfo reads the module version and VCS stamp embedded by go build.
func buildInfo() (version, commit, buildDate string) {
	version, commit, buildDate = "devel", "unknown", "unknown"

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		version = v
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
		case "vcs.time":
			buildDate = s.Value
		}
	}
	return
}
