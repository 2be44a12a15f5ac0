package runtime

import (
	"testing"
	"time"
)

func TestParseSchedule_Duration(t *testing.T) {
	sched, err := ParseSchedule("15m")
	if err != nil {
		t.Fatalf("ParseSchedule: %v", err)
	}
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if got := sched.Next(base); got.Sub(base) != 15*time.Minute {
		t.Errorf("Expected next fire in 15m, got %v", got.Sub(base))
	}
}

func TestParseSchedule_Cron(t *testing.T) {
	sched, err := ParseSchedule("0 * * * *")
	if err != nil {
		t.Fatalf("ParseSchedule: %v", err)
	}
	base := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	got := sched.Next(base)
	if got.Minute() != 0 || got.Hour() != 13 {
		t.Errorf("Expected top of next hour, got %v", got)
	}
}

func TestParseSchedule_SixFieldCron(t *testing.T) {
	if _, err := ParseSchedule("0 */15 * * * *"); err != nil {
		t.Errorf("Six-field cron should parse: %v", err)
	}
}

func TestParseSchedule_Invalid(t *testing.T) {
	if _, err := ParseSchedule(""); err == nil {
		t.Error("Empty schedule should fail")
	}
	if _, err := ParseSchedule("not a schedule"); err == nil {
		t.Error("Garbage schedule should fail")
	}
}
