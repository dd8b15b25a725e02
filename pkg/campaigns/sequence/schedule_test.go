package sequence

import (
	"testing"
	"time"

	campaignTypes "github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/types"
)

func TestNextSendAt(t *testing.T) {
	now := time.Date(2026, 3, 10, 16, 30, 0, 0, time.UTC)

	t.Run("with a day and hour delay", func(t *testing.T) {
		seq := campaignTypes.Sequence{DelayDays: 2, DelayHours: 3}
		got := NextSendAt(now, seq)
		want := time.Date(2026, 3, 12, 19, 30, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("with no delay at all", func(t *testing.T) {
		if got := NextSendAt(now, campaignTypes.Sequence{}); !got.Equal(now) {
			t.Errorf("expected due immediately, got %v", got)
		}
	})

	t.Run("with a sendTime later the same day", func(t *testing.T) {
		seq := campaignTypes.Sequence{DelayDays: 1, SendTime: "18:00"}
		got := NextSendAt(now, seq)
		want := time.Date(2026, 3, 11, 18, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("with a sendTime that already passed on the due day", func(t *testing.T) {
		seq := campaignTypes.Sequence{DelayDays: 1, SendTime: "09:00"}
		got := NextSendAt(now, seq)
		want := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("expected the pinned time rolled to the next day, got %v", got)
		}
	})

	t.Run("with a malformed sendTime", func(t *testing.T) {
		seq := campaignTypes.Sequence{DelayHours: 4, SendTime: "25:99"}
		got := NextSendAt(now, seq)
		want := now.Add(4 * time.Hour)
		if !got.Equal(want) {
			t.Errorf("malformed sendTime must be ignored, got %v", got)
		}
	})
}
