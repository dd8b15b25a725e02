package personalization

import (
	"testing"

	campaignTypes "github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/types"
)

func TestResolve(t *testing.T) {
	lead := campaignTypes.Lead{
		BusinessName:  "Acme Bakery",
		ContactPerson: "Ada Lovelace",
		FirstName:     "Ada",
		Email:         "ada@acme.example",
		Phone:         "+15550001111",
		City:          "Springfield",
		State:         "IL",
	}

	t.Run("with every merge tag present", func(t *testing.T) {
		template := "{{business_name}}|{{contact_person}}|{{first_name}}|{{email}}|{{phone}}|{{city}}|{{state}}|{{campaign_name}}"
		got := Resolve(template, lead, "Spring Outreach")
		want := "Acme Bakery|Ada Lovelace|Ada|ada@acme.example|+15550001111|Springfield|IL|Spring Outreach"
		if got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	})

	t.Run("with missing lead fields", func(t *testing.T) {
		got := Resolve("Hi {{first_name}} from {{city}}!", campaignTypes.Lead{}, "X")
		if got != "Hi  from !" {
			t.Errorf("missing fields must resolve to empty strings, got %q", got)
		}
	})

	t.Run("with unknown tags", func(t *testing.T) {
		got := Resolve("{{last_name}} and {{First_Name}}", lead, "X")
		if got != "{{last_name}} and {{First_Name}}" {
			t.Errorf("unknown or differently cased tags must stay untouched, got %q", got)
		}
	})

	t.Run("with a repeated tag", func(t *testing.T) {
		got := Resolve("{{first_name}} {{first_name}}", lead, "X")
		if got != "Ada Ada" {
			t.Errorf("expected both occurrences replaced, got %q", got)
		}
	})
}

func TestResolveContent(t *testing.T) {
	lead := campaignTypes.Lead{FirstName: "Ada"}
	seq := campaignTypes.Sequence{
		Subject: "Hello {{first_name}}",
		Body:    "<p>{{first_name}}, welcome to {{campaign_name}}.</p>",
	}

	subject, body := ResolveContent(seq, lead, "Spring Outreach")
	if subject != "Hello Ada" {
		t.Errorf("unexpected subject: %s", subject)
	}
	if body != "<p>Ada, welcome to Spring Outreach.</p>" {
		t.Errorf("unexpected body: %s", body)
	}
}
