package delivery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpclient "github.com/soshogle/nexrel-crm-sub019/pkg/http-client"
)

func newSMSGateway(t *testing.T, response string) *SMSAdapter {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return NewSMSAdapter(httpclient.ClientConfig{
		RootURL: server.URL,
		Timeout: 5 * time.Second,
	})
}

func TestSMSAdapterSend(t *testing.T) {
	req := SendRequest{To: "+15550001111", FromName: "Reminders", Text: "hello"}

	t.Run("with an accepting gateway", func(t *testing.T) {
		adapter := newSMSGateway(t, `{"status":"queued"}`)
		if err := adapter.Send(context.Background(), req); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("with an error message from the gateway", func(t *testing.T) {
		adapter := newSMSGateway(t, `{"error":"invalid number"}`)
		err := adapter.Send(context.Background(), req)
		if err == nil || err.Error() != "invalid number" {
			t.Errorf("expected the gateway error, got %v", err)
		}
	})

	t.Run("with a non-string error value from the gateway", func(t *testing.T) {
		adapter := newSMSGateway(t, `{"error":42}`)
		err := adapter.Send(context.Background(), req)
		if err == nil || !strings.Contains(err.Error(), "42") {
			t.Errorf("expected an error carrying the gateway value, got %v", err)
		}
	})

	t.Run("without an initialized gateway", func(t *testing.T) {
		adapter := NewSMSAdapter(httpclient.ClientConfig{})
		if err := adapter.Send(context.Background(), req); err == nil {
			t.Errorf("expected an error for a missing gateway config")
		}
	})
}
