// Package sysstats provides thread-safe storage and periodic sampling of
// process runtime statistics. The Container holds the latest sampled snapshot
// behind an atomic pointer so handlers read without locking while the sampler
// swaps in fresh data.
package sysstats

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/praaatap/monitoring-prometheus-grafana/logging"
)

// Snapshot is one sampled view of process CPU and scheduler state
type Snapshot struct {
	CPUPercent    float64   `json:"cpu_percent"`
	NumCPU        int       `json:"num_cpu"`
	GOMAXPROCS    int       `json:"gomaxprocs"`
	NumGoroutine  int       `json:"num_goroutine"`
	GCCPUFraction float64   `json:"gc_cpu_fraction"`
	SampledAt     time.Time `json:"sampled_at"`
}

// MemoryUsage is a point-in-time summary of runtime.MemStats
type MemoryUsage struct {
	AllocMB      uint64 `json:"alloc_mb"`
	TotalAllocMB uint64 `json:"total_alloc_mb"`
	SysMB        uint64 `json:"sys_mb"`
	HeapObjects  uint64 `json:"heap_objects"`
	NumGC        uint32 `json:"num_gc"`
}

// Container holds the latest stats snapshot with atomic swaps for lock-free reads
type Container struct {
	snapshot  atomic.Value // Snapshot
	startTime time.Time
}

// NewContainer creates a container primed with an empty snapshot
func NewContainer() *Container {
	c := &Container{startTime: time.Now()}
	c.snapshot.Store(Snapshot{})
	return c
}

// GetSnapshot returns the most recent snapshot
func (c *Container) GetSnapshot() Snapshot {
	if v := c.snapshot.Load(); v != nil {
		if snapshot, ok := v.(Snapshot); ok {
			return snapshot
		}
	}

	logging.Warn("Stats snapshot is empty or invalid")
	return Snapshot{}
}

// SetSnapshot atomically replaces the current snapshot
func (c *Container) SetSnapshot(s Snapshot) {
	c.snapshot.Store(s)
}

// Uptime returns time elapsed since the container was created
func (c *Container) Uptime() time.Duration {
	return time.Since(c.startTime)
}

// ReadMemoryUsage reads current memory statistics from the runtime
func ReadMemoryUsage() MemoryUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemoryUsage{
		AllocMB:      m.Alloc / 1024 / 1024,
		TotalAllocMB: m.TotalAlloc / 1024 / 1024,
		SysMB:        m.Sys / 1024 / 1024,
		HeapObjects:  m.HeapObjects,
		NumGC:        m.NumGC,
	}
}
