package progress

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestNewTracker(t *testing.T) {
	tests := []struct {
		name  string
		label string
		total int
	}{
		{name: "standard tracker", label: "Parsing files", total: 100},
		{name: "zero total", label: "Empty task", total: 0},
		{name: "single item", label: "One file", total: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tracker := NewTrackerTo(&buf, tt.label, tt.total)
			if tracker == nil {
				t.Fatal("NewTrackerTo() returned nil")
			}
			if tracker.bar == nil {
				t.Error("tracker.bar should not be nil")
			}
			if tracker.label != tt.label {
				t.Errorf("tracker.label = %q, want %q", tracker.label, tt.label)
			}
		})
	}
}

func TestTickConcurrent(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewTrackerTo(&buf, "Parsing", 100)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Tick()
		}()
	}
	wg.Wait()

	if got := tracker.bar.State().CurrentNum; got != 100 {
		t.Errorf("CurrentNum = %d, want 100", got)
	}
	tracker.FinishSuccess()
}

func TestFinishMessages(t *testing.T) {
	var buf bytes.Buffer
	NewTrackerTo(&buf, "Parsing", 1).FinishSkipped("no files")
	if !strings.Contains(buf.String(), "Parsing skipped (no files)") {
		t.Errorf("output %q should contain the skip reason", buf.String())
	}

	buf.Reset()
	NewSpinnerTo(&buf, "Scanning").FinishError(errors.New("boom"))
	if !strings.Contains(buf.String(), "Scanning error: boom") {
		t.Errorf("output %q should contain the error", buf.String())
	}
}

func TestNilTracker(t *testing.T) {
	var tracker *Tracker
	tracker.Tick()
	tracker.FinishSuccess()
	tracker.FinishSkipped("x")
	tracker.FinishError(errors.New("x"))
	if tracker.Func() != nil {
		t.Error("Func() of a nil tracker should be nil")
	}
}
