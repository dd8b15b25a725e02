package utils

import (
	"testing"
	"time"
)

func TestParseDurationString(t *testing.T) {
	t.Run("valid duration", func(t *testing.T) {
		d, err := ParseDurationString("90m")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if d != 90*time.Minute {
			t.Errorf("unexpected duration: %v", d)
		}
	})

	t.Run("invalid duration", func(t *testing.T) {
		_, err := ParseDurationString("not-a-duration")
		if err == nil {
			t.Error("expected error")
		}
	})
}
