package cmd

import (
	"sort"
	"time"
)

// PerformanceTimer records named durations within one command run
type PerformanceTimer struct {
	start  time.Time
	starts map[string]time.Time
	events map[string]time.Duration
	order  []string
}

// NewPerformanceTimer creates a timer whose total starts now
func NewPerformanceTimer() *PerformanceTimer {
	return &PerformanceTimer{
		start:  time.Now(),
		starts: make(map[string]time.Time),
		events: make(map[string]time.Duration),
	}
}

// StartEvent begins timing event, restarting it if already running
func (t *PerformanceTimer) StartEvent(event string) {
	if _, seen := t.starts[event]; !seen {
		t.order = append(t.order, event)
	}
	t.starts[event] = time.Now()
}

// EndEvent stops timing event. Ending an event that was never started is a no-op.
func (t *PerformanceTimer) EndEvent(event string) {
	started, ok := t.starts[event]
	if !ok {
		return
	}
	t.events[event] = time.Since(started)
}

// GetDuration returns the recorded duration of event, or zero
func (t *PerformanceTimer) GetDuration(event string) time.Duration {
	return t.events[event]
}

// GetTotalDuration returns the time since the timer was created
func (t *PerformanceTimer) GetTotalDuration() time.Duration {
	return time.Since(t.start)
}

// Events returns the ended events in the order they were started
func (t *PerformanceTimer) Events() []string {
	events := make([]string, 0, len(t.events))
	for _, event := range t.order {
		if _, ok := t.events[event]; ok {
			events = append(events, event)
		}
	}
	return events
}

// Slowest returns the ended event that took longest
func (t *PerformanceTimer) Slowest() (string, time.Duration) {
	events := t.Events()
	if len(events) == 0 {
		return "", 0
	}
	sort.SliceStable(events, func(i, j int) bool {
		return t.events[events[i]] > t.events[events[j]]
	})
	return events[0], t.events[events[0]]
}
