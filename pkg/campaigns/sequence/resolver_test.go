package sequence

import (
	"testing"

	campaignTypes "github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func step(order int, subject string) campaignTypes.Sequence {
	return campaignTypes.Sequence{
		ID:            primitive.NewObjectID(),
		SequenceOrder: order,
		Subject:       subject,
	}
}

func variant(order int, group string, subject string) campaignTypes.Sequence {
	seq := step(order, subject)
	seq.IsABTestVariant = true
	seq.ABTestGroup = group
	return seq
}

func TestResolveNext(t *testing.T) {
	t.Run("with a plain step at the current order", func(t *testing.T) {
		sequences := []campaignTypes.Sequence{step(1, "one"), step(2, "two")}
		enrollment := campaignTypes.Enrollment{CurrentStep: 2}

		res := ResolveNext(campaignTypes.Campaign{}, sequences, enrollment, false)
		if res.Sequence == nil || res.Sequence.Subject != "two" {
			t.Errorf("unexpected resolution: %+v", res)
		}
		if res.Step != 2 || len(res.SkippedSteps) != 0 {
			t.Errorf("unexpected step or skips: %+v", res)
		}
	})

	t.Run("with no step at the current order", func(t *testing.T) {
		sequences := []campaignTypes.Sequence{step(1, "one")}
		enrollment := campaignTypes.Enrollment{CurrentStep: 2}

		res := ResolveNext(campaignTypes.Campaign{}, sequences, enrollment, false)
		if res.Sequence != nil {
			t.Errorf("expected completion, got %+v", res.Sequence)
		}
	})

	t.Run("with a skip step and an engaged recipient", func(t *testing.T) {
		sequences := []campaignTypes.Sequence{step(1, "one"), step(2, "nudge"), step(3, "close")}
		sequences[1].SkipIfEngaged = true
		enrollment := campaignTypes.Enrollment{CurrentStep: 2}

		res := ResolveNext(campaignTypes.Campaign{}, sequences, enrollment, true)
		if res.Sequence == nil || res.Sequence.Subject != "close" {
			t.Errorf("expected resolution at the step after the skip, got %+v", res)
		}
		if len(res.SkippedSteps) != 1 || res.SkippedSteps[0] != 2 {
			t.Errorf("unexpected skipped steps: %v", res.SkippedSteps)
		}
	})

	t.Run("with a skip step and no engagement", func(t *testing.T) {
		sequences := []campaignTypes.Sequence{step(1, "nudge")}
		sequences[0].SkipIfEngaged = true
		enrollment := campaignTypes.Enrollment{CurrentStep: 1}

		res := ResolveNext(campaignTypes.Campaign{}, sequences, enrollment, false)
		if res.Sequence == nil || res.Sequence.Subject != "nudge" {
			t.Errorf("skip step must still send without engagement, got %+v", res)
		}
	})

	t.Run("with consecutive skip steps", func(t *testing.T) {
		sequences := []campaignTypes.Sequence{step(1, "one"), step(2, "a"), step(3, "b"), step(4, "close")}
		sequences[1].SkipIfEngaged = true
		sequences[2].SkipIfEngaged = true
		enrollment := campaignTypes.Enrollment{CurrentStep: 2}

		res := ResolveNext(campaignTypes.Campaign{}, sequences, enrollment, true)
		if res.Sequence == nil || res.Sequence.Subject != "close" {
			t.Errorf("expected the skip chain collapsed in one pass, got %+v", res)
		}
		if len(res.SkippedSteps) != 2 {
			t.Errorf("unexpected skipped steps: %v", res.SkippedSteps)
		}
	})

	t.Run("with skip steps running off the end", func(t *testing.T) {
		sequences := []campaignTypes.Sequence{step(1, "one"), step(2, "nudge")}
		sequences[1].SkipIfEngaged = true
		enrollment := campaignTypes.Enrollment{CurrentStep: 2}

		res := ResolveNext(campaignTypes.Campaign{}, sequences, enrollment, true)
		if res.Sequence != nil {
			t.Errorf("expected completion after the last skipped step, got %+v", res.Sequence)
		}
		if len(res.SkippedSteps) != 1 {
			t.Errorf("unexpected skipped steps: %v", res.SkippedSteps)
		}
	})
}

func TestFindVisibleAt(t *testing.T) {
	abCampaign := campaignTypes.Campaign{ABTestingEnabled: true}

	t.Run("with the enrollment's variant group present", func(t *testing.T) {
		sequences := []campaignTypes.Sequence{
			step(1, "control"),
			variant(1, "A", "subject a"),
			variant(1, "B", "subject b"),
		}
		enrollment := campaignTypes.Enrollment{ABTestGroup: "B"}

		seq := FindVisibleAt(abCampaign, sequences, enrollment, 1)
		if seq == nil || seq.Subject != "subject b" {
			t.Errorf("expected the group's variant, got %+v", seq)
		}
	})

	t.Run("with a coverage gap for the enrollment's group", func(t *testing.T) {
		sequences := []campaignTypes.Sequence{
			step(1, "control"),
			variant(1, "A", "subject a"),
		}
		enrollment := campaignTypes.Enrollment{ABTestGroup: "B"}

		if seq := FindVisibleAt(abCampaign, sequences, enrollment, 1); seq != nil {
			t.Errorf("a variant order must not fall back to the control for assigned groups, got %+v", seq)
		}
	})

	t.Run("with an order carrying no variants", func(t *testing.T) {
		sequences := []campaignTypes.Sequence{step(2, "plain")}
		enrollment := campaignTypes.Enrollment{ABTestGroup: "B"}

		seq := FindVisibleAt(abCampaign, sequences, enrollment, 2)
		if seq == nil || seq.Subject != "plain" {
			t.Errorf("orders without variants serve the plain step to everyone, got %+v", seq)
		}
	})

	t.Run("with A/B testing disabled on the campaign", func(t *testing.T) {
		sequences := []campaignTypes.Sequence{
			step(1, "control"),
			variant(1, "A", "subject a"),
		}
		enrollment := campaignTypes.Enrollment{ABTestGroup: "A"}

		seq := FindVisibleAt(campaignTypes.Campaign{}, sequences, enrollment, 1)
		if seq == nil || seq.Subject != "control" {
			t.Errorf("expected the non-variant step, got %+v", seq)
		}
	})

	t.Run("with an enrollment that has no group", func(t *testing.T) {
		sequences := []campaignTypes.Sequence{
			step(1, "control"),
			variant(1, "A", "subject a"),
		}

		seq := FindVisibleAt(abCampaign, sequences, campaignTypes.Enrollment{}, 1)
		if seq == nil || seq.Subject != "control" {
			t.Errorf("unassigned enrollments fall back to the non-variant step, got %+v", seq)
		}
	})
}

func TestABTestGroups(t *testing.T) {
	sequences := []campaignTypes.Sequence{
		step(1, "control"),
		variant(1, "B", "b1"),
		variant(1, "A", "a1"),
		variant(2, "A", "a2"),
		variant(2, "B", "b2"),
	}

	groups := ABTestGroups(sequences)
	if len(groups) != 2 || groups[0] != "B" || groups[1] != "A" {
		t.Errorf("expected distinct groups in first-seen order, got %v", groups)
	}

	if got := ABTestGroups([]campaignTypes.Sequence{step(1, "one")}); len(got) != 0 {
		t.Errorf("expected no groups, got %v", got)
	}
}
