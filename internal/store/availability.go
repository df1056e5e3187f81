package store

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

// successUnit is the increment of the success half of a packed counter.
const successUnit = 1 << 32

// DomainStats holds the lifetime totals of one domain.
type DomainStats struct {
	Domain       string  `json:"domain"`
	SuccessCount uint64  `json:"success_count"`
	TotalCount   uint64  `json:"total_count"`
	Percent      float64 `json:"availability_percent"`
}

// counter packs success (upper 32 bits) and total (lower 32 bits) into one
// word so a probe is recorded with a single atomic add and read back
// consistently. The total must stay below 2^32 per domain.
type counter struct {
	packed atomic.Uint64
}

func (c *counter) add(success bool) {
	delta := uint64(1)
	if success {
		delta += successUnit
	}
	c.packed.Add(delta)
}

func (c *counter) load() (success, total uint64) {
	v := c.packed.Load()
	return v >> 32, v & (successUnit - 1)
}

// Accumulator aggregates probe outcomes per domain.
//
// Accumulator is safe for concurrent use. Record never takes a lock shared
// between domains: the per-domain counter is created once and then updated
// with atomic adds only.
type Accumulator struct {
	domains sync.Map // string -> *counter
}

// NewAccumulator creates an empty [Accumulator].
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Record counts one probe of domain, and one success if success is true.
func (a *Accumulator) Record(domain string, success bool) {
	c, ok := a.domains.Load(domain)
	if !ok {
		c, _ = a.domains.LoadOrStore(domain, &counter{})
	}
	c.(*counter).add(success)
}

// Stats returns the totals for domain. ok is false if domain has never been
// probed.
func (a *Accumulator) Stats(domain string) (stats DomainStats, ok bool) {
	c, found := a.domains.Load(domain)
	if !found {
		return DomainStats{}, false
	}
	success, total := c.(*counter).load()
	return newDomainStats(domain, success, total), true
}

// Snapshot returns the totals of every probed domain, sorted by domain.
//
// Each entry is internally consistent; entries for different domains may be
// read at slightly different moments.
func (a *Accumulator) Snapshot() []DomainStats {
	out := make([]DomainStats, 0)
	a.domains.Range(func(key, value any) bool {
		success, total := value.(*counter).load()
		if total > 0 {
			out = append(out, newDomainStats(key.(string), success, total))
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out
}

// Percentages returns domain -> availability percent for every probed domain.
func (a *Accumulator) Percentages() map[string]float64 {
	snap := a.Snapshot()
	out := make(map[string]float64, len(snap))
	for _, s := range snap {
		out[s.Domain] = s.Percent
	}
	return out
}

func newDomainStats(domain string, success, total uint64) DomainStats {
	return DomainStats{
		Domain:       domain,
		SuccessCount: success,
		TotalCount:   total,
		Percent:      Percent(success, total),
	}
}

// Percent returns success/total as a percentage rounded to two decimals.
// A zero total yields zero.
func Percent(success, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(success)/float64(total)*100*100) / 100
}
