package delivery

import (
	"context"
	"errors"
	"fmt"

	httpclient "github.com/soshogle/nexrel-crm-sub019/pkg/http-client"
)

// SMSAdapter posts to the SMS gateway service. The gateway reports delivery
// problems through an error field in its JSON response.
type SMSAdapter struct {
	Client httpclient.ClientConfig
}

func NewSMSAdapter(client httpclient.ClientConfig) *SMSAdapter {
	return &SMSAdapter{Client: client}
}

type smsSendReq struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Content string `json:"content"`
	Ref     string `json:"ref,omitempty"`
}

func (a *SMSAdapter) Send(ctx context.Context, req SendRequest) error {
	if a.Client.RootURL == "" {
		return errors.New("connection to sms gateway not initialized")
	}

	payload := smsSendReq{
		To:      req.To,
		From:    req.FromName,
		Content: req.Text,
		Ref:     req.TrackingID,
	}
	resp, err := a.Client.RunHTTPcall(ctx, "/send-sms", payload)
	if err == nil && resp != nil {
		// the error value is not guaranteed to be a string
		errMsg, hasError := resp["error"]
		if hasError {
			err = fmt.Errorf("%v", errMsg)
		}
	}
	return err
}
