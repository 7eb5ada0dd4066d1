package sysstats

import (
	"fmt"
	"runtime"
	rtmetrics "runtime/metrics"
	"time"

	"github.com/go-co-op/gocron"
)

const cpuTotalMetric = "/cpu/classes/total:cpu-seconds"

// Sampler periodically refreshes the container's snapshot. CPU utilisation is
// computed from the delta of cumulative CPU seconds between two samples,
// normalised by wall time and core count.
type Sampler struct {
	container *Container
	scheduler *gocron.Scheduler
	interval  time.Duration

	// written only from the sampling job
	lastCPUSeconds float64
	lastSampleTime time.Time
}

// NewSampler creates a sampler that refreshes the container every interval
func NewSampler(container *Container, interval time.Duration) *Sampler {
	return &Sampler{
		container: container,
		scheduler: gocron.NewScheduler(time.Local),
		interval:  interval,
	}
}

// Start takes an initial sample and schedules periodic refreshes
func (s *Sampler) Start() error {
	s.lastCPUSeconds = readCPUSeconds()
	s.lastSampleTime = time.Now()

	// Initial sample so handlers never see a zero snapshot
	s.Sample()

	_, err := s.scheduler.Every(s.interval).Do(s.Sample)
	if err != nil {
		return fmt.Errorf("failed to schedule stats sampling: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the periodic sampling
func (s *Sampler) Stop() {
	s.scheduler.Stop()
}

// Sample reads current runtime statistics and stores a fresh snapshot
func (s *Sampler) Sample() {
	now := time.Now()
	cpuSeconds := readCPUSeconds()

	var percent float64
	if elapsed := now.Sub(s.lastSampleTime).Seconds(); elapsed > 0 {
		percent = (cpuSeconds - s.lastCPUSeconds) / (elapsed * float64(runtime.NumCPU())) * 100
		if percent < 0 {
			percent = 0
		}
	}

	s.lastCPUSeconds = cpuSeconds
	s.lastSampleTime = now

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	s.container.SetSnapshot(Snapshot{
		CPUPercent:    percent,
		NumCPU:        runtime.NumCPU(),
		GOMAXPROCS:    runtime.GOMAXPROCS(0),
		NumGoroutine:  runtime.NumGoroutine(),
		GCCPUFraction: m.GCCPUFraction,
		SampledAt:     now,
	})
}

// readCPUSeconds reads cumulative CPU seconds used by the process
func readCPUSeconds() float64 {
	samples := []rtmetrics.Sample{{Name: cpuTotalMetric}}
	rtmetrics.Read(samples)

	if samples[0].Value.Kind() == rtmetrics.KindFloat64 {
		return samples[0].Value.Float64()
	}
	return 0
}
