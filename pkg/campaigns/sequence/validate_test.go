package sequence

import (
	"strings"
	"testing"

	campaignTypes "github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/types"
)

func TestValidateForActivation(t *testing.T) {
	emailCampaign := campaignTypes.Campaign{
		Channel:   campaignTypes.CAMPAIGN_CHANNEL_EMAIL,
		FromName:  "Nex Rel",
		FromEmail: "hello@example.com",
	}

	t.Run("with a valid plain campaign", func(t *testing.T) {
		sequences := []campaignTypes.Sequence{
			{SequenceOrder: 1, Subject: "One"},
			{SequenceOrder: 2, Subject: "Two", SendTime: "09:30"},
		}
		if err := ValidateForActivation(emailCampaign, sequences); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("with no sequence steps", func(t *testing.T) {
		err := ValidateForActivation(emailCampaign, nil)
		if err == nil || !strings.Contains(err.Error(), "no sequence steps") {
			t.Errorf("expected rejection, got %v", err)
		}
	})

	t.Run("with a missing email sender", func(t *testing.T) {
		campaign := emailCampaign
		campaign.FromEmail = ""
		err := ValidateForActivation(campaign, []campaignTypes.Sequence{{SequenceOrder: 1}})
		if err == nil || !strings.Contains(err.Error(), "fromEmail") {
			t.Errorf("expected rejection, got %v", err)
		}
	})

	t.Run("with a missing sms sender identity", func(t *testing.T) {
		campaign := campaignTypes.Campaign{Channel: campaignTypes.CAMPAIGN_CHANNEL_SMS}
		err := ValidateForActivation(campaign, []campaignTypes.Sequence{{SequenceOrder: 1}})
		if err == nil || !strings.Contains(err.Error(), "fromName") {
			t.Errorf("expected rejection, got %v", err)
		}
	})

	t.Run("with a zero-based sequence order", func(t *testing.T) {
		err := ValidateForActivation(emailCampaign, []campaignTypes.Sequence{{SequenceOrder: 0}})
		if err == nil || !strings.Contains(err.Error(), "1-based") {
			t.Errorf("expected rejection, got %v", err)
		}
	})

	t.Run("with an unparseable sendTime", func(t *testing.T) {
		err := ValidateForActivation(emailCampaign, []campaignTypes.Sequence{{SequenceOrder: 1, SendTime: "9am"}})
		if err == nil || !strings.Contains(err.Error(), "sendTime") {
			t.Errorf("expected rejection, got %v", err)
		}
	})

	t.Run("with variants while A/B testing is disabled", func(t *testing.T) {
		sequences := []campaignTypes.Sequence{
			{SequenceOrder: 1},
			{SequenceOrder: 1, IsABTestVariant: true, ABTestGroup: "A"},
		}
		err := ValidateForActivation(emailCampaign, sequences)
		if err == nil || !strings.Contains(err.Error(), "A/B testing is disabled") {
			t.Errorf("expected rejection, got %v", err)
		}
	})

	t.Run("with a complete A/B configuration", func(t *testing.T) {
		campaign := emailCampaign
		campaign.ABTestingEnabled = true
		sequences := []campaignTypes.Sequence{
			{SequenceOrder: 1},
			{SequenceOrder: 1, IsABTestVariant: true, ABTestGroup: "A"},
			{SequenceOrder: 1, IsABTestVariant: true, ABTestGroup: "B"},
			{SequenceOrder: 2},
		}
		if err := ValidateForActivation(campaign, sequences); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("with a group coverage gap across variant orders", func(t *testing.T) {
		campaign := emailCampaign
		campaign.ABTestingEnabled = true
		sequences := []campaignTypes.Sequence{
			{SequenceOrder: 1},
			{SequenceOrder: 1, IsABTestVariant: true, ABTestGroup: "A"},
			{SequenceOrder: 1, IsABTestVariant: true, ABTestGroup: "B"},
			{SequenceOrder: 2},
			{SequenceOrder: 2, IsABTestVariant: true, ABTestGroup: "A"},
		}
		err := ValidateForActivation(campaign, sequences)
		if err == nil || !strings.Contains(err.Error(), "group 'B' has no variant at order 2") {
			t.Errorf("expected coverage gap rejection, got %v", err)
		}
	})

	t.Run("with a variant missing its group", func(t *testing.T) {
		campaign := emailCampaign
		campaign.ABTestingEnabled = true
		sequences := []campaignTypes.Sequence{
			{SequenceOrder: 1},
			{SequenceOrder: 1, IsABTestVariant: true},
		}
		err := ValidateForActivation(campaign, sequences)
		if err == nil || !strings.Contains(err.Error(), "no abTestGroup") {
			t.Errorf("expected rejection, got %v", err)
		}
	})

	t.Run("with duplicate variant groups at one order", func(t *testing.T) {
		campaign := emailCampaign
		campaign.ABTestingEnabled = true
		sequences := []campaignTypes.Sequence{
			{SequenceOrder: 1},
			{SequenceOrder: 1, IsABTestVariant: true, ABTestGroup: "A"},
			{SequenceOrder: 1, IsABTestVariant: true, ABTestGroup: "A"},
		}
		err := ValidateForActivation(campaign, sequences)
		if err == nil || !strings.Contains(err.Error(), "duplicate variant group") {
			t.Errorf("expected rejection, got %v", err)
		}
	})

	t.Run("with two non-variant steps at one order", func(t *testing.T) {
		sequences := []campaignTypes.Sequence{
			{SequenceOrder: 1},
			{SequenceOrder: 1},
		}
		err := ValidateForActivation(emailCampaign, sequences)
		if err == nil || !strings.Contains(err.Error(), "more than one non-variant") {
			t.Errorf("expected rejection, got %v", err)
		}
	})
}
