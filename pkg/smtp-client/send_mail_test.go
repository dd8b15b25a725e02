package smtp_client

import "testing"

func TestBuildEmail(t *testing.T) {
	defaults := SmtpServerList{
		From:    "noreply@example.com",
		Sender:  "bounce@example.com",
		ReplyTo: []string{"support@example.com"},
	}

	t.Run("without overrides", func(t *testing.T) {
		e := buildEmail(defaults, []string{"ada@example.com"}, "Hello", "<p>Hi</p>", "", nil)
		if e.From != "noreply@example.com" {
			t.Errorf("unexpected from: %s", e.From)
		}
		if e.Sender != "bounce@example.com" {
			t.Errorf("unexpected sender: %s", e.Sender)
		}
		if len(e.ReplyTo) != 1 || e.ReplyTo[0] != "support@example.com" {
			t.Errorf("unexpected replyTo: %v", e.ReplyTo)
		}
		if string(e.HTML) != "<p>Hi</p>" {
			t.Errorf("unexpected html part: %s", e.HTML)
		}
		if e.Text != nil {
			t.Errorf("expected no text part, got '%s'", e.Text)
		}
	})

	t.Run("with overrides", func(t *testing.T) {
		e := buildEmail(defaults, []string{"ada@example.com"}, "Hello", "<p>Hi</p>", "Hi", &HeaderOverrides{
			From:    "Sales <sales@example.com>",
			ReplyTo: []string{"replies@example.com"},
		})
		if e.From != "Sales <sales@example.com>" {
			t.Errorf("from override not applied: %s", e.From)
		}
		if len(e.ReplyTo) != 1 || e.ReplyTo[0] != "replies@example.com" {
			t.Errorf("replyTo override not applied: %v", e.ReplyTo)
		}
		if string(e.Text) != "Hi" {
			t.Errorf("unexpected text part: %s", e.Text)
		}
	})

	t.Run("with noReplyTo set", func(t *testing.T) {
		e := buildEmail(defaults, []string{"ada@example.com"}, "Hello", "<p>Hi</p>", "", &HeaderOverrides{NoReplyTo: true})
		if len(e.ReplyTo) != 0 {
			t.Errorf("expected replyTo cleared, got %v", e.ReplyTo)
		}
	})
}

func TestInitConnectionPool(t *testing.T) {
	servers := SmtpServerList{
		Servers: []SmtpServer{
			{Host: "smtp1.example.com", Port: "not-a-port", Connections: 1, SendTimeout: 5},
			{Host: "smtp2.example.com", Port: "2525", Connections: 1, SendTimeout: 5},
		},
	}

	connections := initConnectionPool(servers)
	if len(connections) != 1 {
		t.Fatalf("expected the broken server to drop out, got %d connections", len(connections))
	}
	if connections[0].server.Host != "smtp2.example.com" {
		t.Errorf("connection must carry its own server definition, got '%s'", connections[0].server.Host)
	}
}
