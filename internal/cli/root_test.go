package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/vocealarm/internal/storage"
)

func setupTestContext(t *testing.T) *Context {
	t.Helper()

	storePath := filepath.Join(t.TempDir(), "vocealarm.json")
	store := storage.NewJSONStore(storePath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	return &Context{Store: store}
}

func TestDefaultAlarmDate(t *testing.T) {
	now := time.Date(2026, 9, 1, 7, 0, 0, 0, time.Local)

	if got := defaultAlarmDate("07:30", now); got != "2026-09-01" {
		t.Errorf("time still ahead should pick today, got %s", got)
	}
	if got := defaultAlarmDate("06:30", now); got != "2026-09-02" {
		t.Errorf("time already passed should pick tomorrow, got %s", got)
	}
	if got := defaultAlarmDate("07:00", now); got != "2026-09-02" {
		t.Errorf("exact current minute should pick tomorrow, got %s", got)
	}
}

func TestParseWeekdays(t *testing.T) {
	tests := []struct {
		input   string
		want    []time.Weekday
		wantErr bool
	}{
		{"mon,fri", []time.Weekday{time.Monday, time.Friday}, false},
		{"Monday, Friday", []time.Weekday{time.Monday, time.Friday}, false},
		{"0,6", []time.Weekday{time.Sunday, time.Saturday}, false},
		{"", nil, false},
		{"blursday", nil, true},
		{"7", nil, true},
	}

	for _, tt := range tests {
		got, err := parseWeekdays(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseWeekdays(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseWeekdays(%q): %v", tt.input, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("parseWeekdays(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseWeekdays(%q) = %v, want %v", tt.input, got, tt.want)
				break
			}
		}
	}
}

func TestFormatRepeatDays(t *testing.T) {
	if got := formatRepeatDays(nil); got != "once" {
		t.Errorf("empty set should be 'once', got %q", got)
	}
	if got := formatRepeatDays([]time.Weekday{time.Monday, time.Friday}); got != "Mon,Fri" {
		t.Errorf("got %q, want Mon,Fri", got)
	}
}

func TestParseSeverityCLI(t *testing.T) {
	if _, err := parseSeverity("HIGH"); err != nil {
		t.Errorf("severity parsing should be case-insensitive: %v", err)
	}
	if _, err := parseSeverity("urgent"); err == nil {
		t.Error("expected error for unknown severity")
	}
}
