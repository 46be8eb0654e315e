// Package report accumulates the outcome of a route loading run and renders
// it as a fixed-format text summary.
package report

import (
	"fmt"
	"strings"
)

const (
	header  = "-------- RouteX Report --------"
	divider = "--------------------------------"
)

// Counters are the per-run statistics of a loading run. One run owns one
// value; FilesRead always equals FilesSucceeded + Misses.
type Counters struct {
	FilesRead      int `json:"filesRead"`
	FilesSucceeded int `json:"filesSucceeded"`
	FilesIgnored   int `json:"filesIgnored"`
	RoutesMounted  int `json:"routesMounted"`
	Misses         int `json:"misses"`
	Unsupported    int `json:"unsupported"`
}

// Succeeded records a file that was loaded and mounted.
func (c *Counters) Succeeded() {
	c.FilesRead++
	c.FilesSucceeded++
	c.RoutesMounted++
}

// Missed records a file whose load, subscribers or mount failed.
func (c *Counters) Missed() {
	c.FilesRead++
	c.Misses++
}

// Ignored records a file under an ignored path.
func (c *Counters) Ignored() {
	c.FilesIgnored++
}

// Skipped records a file with no load strategy for its extension.
func (c *Counters) Skipped() {
	c.Unsupported++
}

// Balanced reports whether the read/succeeded/missed invariant holds.
func (c Counters) Balanced() bool {
	return c.FilesRead == c.FilesSucceeded+c.Misses
}

// Add returns the field-wise sum of c and o.
func (c Counters) Add(o Counters) Counters {
	return Counters{
		FilesRead:      c.FilesRead + o.FilesRead,
		FilesSucceeded: c.FilesSucceeded + o.FilesSucceeded,
		FilesIgnored:   c.FilesIgnored + o.FilesIgnored,
		RoutesMounted:  c.RoutesMounted + o.RoutesMounted,
		Misses:         c.Misses + o.Misses,
		Unsupported:    c.Unsupported + o.Unsupported,
	}
}

// SuccessRate returns (FilesRead - Misses) / FilesRead as a percentage
// with two decimals, or "0.00" when nothing was read.
func SuccessRate(c Counters) string {
	if c.FilesRead == 0 {
		return "0.00"
	}
	rate := float64(c.FilesRead-c.Misses) / float64(c.FilesRead) * 100
	return fmt.Sprintf("%.2f", rate)
}

// Format renders c as the run report.
func Format(c Counters) string {
	var b strings.Builder
	b.WriteString(header + "\n")
	fmt.Fprintf(&b, "Total files processed: %d\n", c.FilesRead)
	fmt.Fprintf(&b, "- Successfully read: %d\n", c.FilesSucceeded)
	fmt.Fprintf(&b, "- Ignored: %d\n", c.FilesIgnored)
	fmt.Fprintf(&b, "- Unsupported: %d\n", c.Unsupported)
	fmt.Fprintf(&b, "- Errors encountered: %d\n", c.Misses)
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "Routes loaded: %d\n", c.RoutesMounted)
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "Success rate: %s%%\n", SuccessRate(c))
	return b.String()
}
