package tracking

import (
	"strings"
	"testing"
)

var builder = URLBuilder{BaseURL: "https://crm.example.com", InstanceID: "acme"}

func TestURLBuilder(t *testing.T) {
	t.Run("open url", func(t *testing.T) {
		got := builder.OpenURL("tid-1")
		if got != "https://crm.example.com/t/acme/open/tid-1" {
			t.Errorf("unexpected open url: %s", got)
		}
	})

	t.Run("click url escapes the target", func(t *testing.T) {
		got := builder.ClickURL("tid-1", "https://example.com/a?b=c&d=e")
		if got != "https://crm.example.com/t/acme/click/tid-1?url=https%3A%2F%2Fexample.com%2Fa%3Fb%3Dc%26d%3De" {
			t.Errorf("unexpected click url: %s", got)
		}
	})

	t.Run("with a trailing slash on the base url", func(t *testing.T) {
		b := URLBuilder{BaseURL: "https://crm.example.com/", InstanceID: "acme"}
		if got := b.OpenURL("tid-1"); strings.Contains(got, "com//") {
			t.Errorf("double slash in url: %s", got)
		}
	})
}

func TestNewTrackingID(t *testing.T) {
	a := NewTrackingID()
	b := NewTrackingID()
	if a == "" || a == b {
		t.Errorf("tracking ids must be unique and non-empty: %s, %s", a, b)
	}
}

func TestInjectTracking(t *testing.T) {
	t.Run("with links and a body tag", func(t *testing.T) {
		html := `<html><body><p>Hi</p><a href="https://example.com/offer">Offer</a></body></html>`
		got := builder.InjectTracking(html, "tid-1")

		if !strings.Contains(got, `href="https://crm.example.com/t/acme/click/tid-1?url=https%3A%2F%2Fexample.com%2Foffer"`) {
			t.Errorf("link not routed through click endpoint: %s", got)
		}
		beacon := `<img src="https://crm.example.com/t/acme/open/tid-1"`
		idx := strings.Index(got, beacon)
		if idx < 0 {
			t.Fatalf("beacon missing: %s", got)
		}
		if !strings.Contains(got[idx:], "</body>") {
			t.Errorf("beacon must sit before the closing body tag: %s", got)
		}
	})

	t.Run("without a closing body tag", func(t *testing.T) {
		got := builder.InjectTracking("<p>plain fragment</p>", "tid-1")
		if !strings.HasSuffix(got, `alt=""/>`) {
			t.Errorf("beacon must be appended to fragments: %s", got)
		}
	})

	t.Run("with anchors carrying extra attributes", func(t *testing.T) {
		html := `<a class="btn" href="https://example.com" target="_blank">Go</a>`
		got := builder.InjectTracking(html, "tid-1")
		if !strings.Contains(got, `class="btn"`) || !strings.Contains(got, `target="_blank"`) {
			t.Errorf("other anchor attributes must survive: %s", got)
		}
		if !strings.Contains(got, "/t/acme/click/tid-1") {
			t.Errorf("href not rewritten: %s", got)
		}
	})

	t.Run("with single-quoted hrefs", func(t *testing.T) {
		html := `<a href='https://example.com/offer'>Offer</a>`
		got := builder.InjectTracking(html, "tid-1")
		if !strings.Contains(got, `href='https://crm.example.com/t/acme/click/tid-1?url=https%3A%2F%2Fexample.com%2Foffer'`) {
			t.Errorf("single-quoted href not rewritten or quote style changed: %s", got)
		}
	})

	t.Run("with untrackable links", func(t *testing.T) {
		html := `<a href="mailto:x@example.com">m</a><a href="tel:+1555">t</a><a href="#section">s</a><a href="">e</a>`
		got := builder.InjectTracking(html, "tid-1")
		if strings.Contains(got, "/click/") {
			t.Errorf("mailto, tel, anchor and empty hrefs must stay untouched: %s", got)
		}
	})

	t.Run("with an unsubscribe link of our own", func(t *testing.T) {
		html := `<body><a href="https://crm.example.com/t/acme/unsubscribe/token123">Unsubscribe</a></body>`
		got := builder.InjectTracking(html, "tid-1")
		if strings.Contains(got, "/click/") {
			t.Errorf("own endpoints must not be wrapped: %s", got)
		}
	})

	t.Run("with content that already carries tracking", func(t *testing.T) {
		html := `<body><a href="https://example.com">x</a></body>`
		once := builder.InjectTracking(html, "tid-1")
		twice := builder.InjectTracking(once, "tid-1")
		if once != twice {
			t.Errorf("injection must be idempotent:\nonce:  %s\ntwice: %s", once, twice)
		}
	})

	t.Run("with an uppercase body tag", func(t *testing.T) {
		got := builder.InjectTracking("<BODY>x</BODY>", "tid-1")
		idx := strings.Index(got, "/t/acme/open/")
		if idx < 0 || !strings.Contains(got[idx:], "</BODY>") {
			t.Errorf("beacon must be placed before the uppercase closing tag: %s", got)
		}
	})
}
