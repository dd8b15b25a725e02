package sequence

import (
	"time"

	campaignTypes "github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/types"
)

const sendTimeLayout = "15:04"

// NextSendAt computes when the given step becomes due, starting from now:
// the step's delay is applied first, then an optional sendTime pins the time
// of day, rolling to the next day when that time already passed.
func NextSendAt(now time.Time, seq campaignTypes.Sequence) time.Time {
	due := now.Add(time.Duration(seq.DelayDays)*24*time.Hour + time.Duration(seq.DelayHours)*time.Hour)

	if seq.SendTime == "" {
		return due
	}
	tod, err := time.Parse(sendTimeLayout, seq.SendTime)
	if err != nil {
		// malformed sendTime is ignored, delay alone decides
		return due
	}

	pinned := time.Date(due.Year(), due.Month(), due.Day(), tod.Hour(), tod.Minute(), 0, 0, due.Location())
	if pinned.Before(due) {
		pinned = pinned.Add(24 * time.Hour)
	}
	return pinned
}
