package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	barWidth      = 24
)

// StatusTracker renders archive progress as a single updating terminal line
type StatusTracker struct {
	Label     string
	Total     int
	Processed int
	Outcomes  map[string]int
	StartTime time.Time

	out io.Writer
}

// NewStatusTracker creates a tracker writing to the terminal output
func NewStatusTracker() *StatusTracker {
	return NewStatusTrackerTo(output)
}

// NewStatusTrackerTo creates a tracker writing to w
func NewStatusTrackerTo(w io.Writer) *StatusTracker {
	return &StatusTracker{
		Outcomes:  make(map[string]int),
		StartTime: time.Now(),
		out:       w,
	}
}

// Start begins tracking a new stage of total items
func (st *StatusTracker) Start(label string, total int) {
	st.Label = label
	st.Total = total
	st.Processed = 0
	st.Outcomes = make(map[string]int)
	st.StartTime = time.Now()
	st.print()
}

// Step records one processed item and its outcome
func (st *StatusTracker) Step(id string, outcome string) {
	st.Processed++
	st.Outcomes[outcome]++
	st.print()
}

// Finish ends the current stage
func (st *StatusTracker) Finish() {
	if IsQuietMode() {
		return
	}
	fmt.Fprintf(st.out, "\n%s %s in %s\n", Green("[DONE]"), st.Label, st.GetElapsedTime().Round(time.Millisecond))
}

// GetProgressBar returns a formatted progress bar for the current stage
func (st *StatusTracker) GetProgressBar() string {
	filled := 0
	if st.Total > 0 {
		filled = st.Processed * barWidth / st.Total
	}
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, barWidth-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, st.Processed, st.Total)
}

// GetOutcomeSummary lists outcome counts in name order, e.g. "fetched 2, no_media 1"
func (st *StatusTracker) GetOutcomeSummary() string {
	names := make([]string, 0, len(st.Outcomes))
	for name := range st.Outcomes {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %d", name, st.Outcomes[name]))
	}
	return strings.Join(parts, ", ")
}

// GetElapsedTime returns the elapsed time since the stage started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// GetRate returns the average number of items processed per minute
func (st *StatusTracker) GetRate() float64 {
	elapsed := st.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.Processed) / elapsed
}

func (st *StatusTracker) print() {
	if IsQuietMode() {
		return
	}
	fmt.Fprintf(st.out, "\r%s %s %s",
		Magenta("[ARCHIVING "+strings.ToUpper(st.Label)+"]"),
		st.GetProgressBar(),
		Dim(st.GetOutcomeSummary()))
}
