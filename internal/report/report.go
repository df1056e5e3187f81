// Package report renders per-round availability to a terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/jpalmerr/pulsecheck/internal/store"
)

const ruleWidth = 40

// Thresholds for colouring a domain's percentage.
const (
	healthyPercent  = 99.0
	degradedPercent = 90.0
)

var (
	green  = lipgloss.Color("#10B981")
	red    = lipgloss.Color("#EF4444")
	yellow = lipgloss.Color("#F59E0B")
	dim    = lipgloss.Color("#6B7280")
)

// Console writes one block per round:
//
//	---------------------------
//	a.test has 66.67% availability percentage
//	b.test has 100.00% availability percentage
//	---------------------------
//
// Colours are applied only when the writer is a terminal that supports them.
type Console struct {
	mu sync.Mutex
	w  io.Writer

	rule      lipgloss.Style
	domain    lipgloss.Style
	healthy   lipgloss.Style
	degraded  lipgloss.Style
	unhealthy lipgloss.Style
}

// NewConsole creates a [Console] writing to w.
func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:         w,
		rule:      r.NewStyle().Foreground(dim),
		domain:    r.NewStyle().Bold(true),
		healthy:   r.NewStyle().Foreground(green).Bold(true),
		degraded:  r.NewStyle().Foreground(yellow),
		unhealthy: r.NewStyle().Foreground(red).Bold(true),
	}
}

// Print writes the availability block for stats in the given order.
func (c *Console) Print(stats []store.DomainStats) error {
	rule := c.rule.Render(strings.Repeat("-", ruleWidth))

	var b strings.Builder
	b.WriteString(rule)
	b.WriteByte('\n')
	for _, s := range stats {
		pct := c.percentStyle(s.Percent).Render(fmt.Sprintf("%.2f%%", s.Percent))
		fmt.Fprintf(&b, "%s has %s availability percentage\n", c.domain.Render(s.Domain), pct)
	}
	b.WriteString(rule)
	b.WriteByte('\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.w, b.String())
	return err
}

func (c *Console) percentStyle(pct float64) lipgloss.Style {
	switch {
	case pct >= healthyPercent:
		return c.healthy
	case pct >= degradedPercent:
		return c.degraded
	default:
		return c.unhealthy
	}
}
