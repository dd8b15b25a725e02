package delivery

import (
	"context"
	"fmt"

	campaignTypes "github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/types"
)

// SendRequest carries one fully rendered message and its sender identity.
type SendRequest struct {
	To         string
	Subject    string
	HTML       string
	Text       string
	FromName   string
	FromEmail  string
	ReplyTo    string
	TrackingID string
}

// Adapter sends one message now. A nil return means the transport accepted
// the message; a non-nil error is an ordinary delivery failure the scheduler
// records on the message without advancing the enrollment.
type Adapter interface {
	Send(ctx context.Context, req SendRequest) error
}

// Adapters holds the configured channel implementations.
type Adapters struct {
	Email Adapter
	SMS   Adapter
}

// ForChannel returns the adapter for a campaign channel.
func (a Adapters) ForChannel(channel string) (Adapter, error) {
	switch channel {
	case campaignTypes.CAMPAIGN_CHANNEL_EMAIL:
		if a.Email == nil {
			return nil, fmt.Errorf("email adapter not configured")
		}
		return a.Email, nil
	case campaignTypes.CAMPAIGN_CHANNEL_SMS:
		if a.SMS == nil {
			return nil, fmt.Errorf("sms adapter not configured")
		}
		return a.SMS, nil
	default:
		return nil, fmt.Errorf("unknown channel '%s'", channel)
	}
}
