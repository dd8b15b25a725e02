package sequence

import (
	campaignTypes "github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/types"
)

// Resolution is the outcome of selecting the next step for an enrollment.
// Sequence is nil when the campaign has no further step for this enrollment,
// which the caller must treat as completion.
type Resolution struct {
	Sequence     *campaignTypes.Sequence
	Step         int
	SkippedSteps []int
}

// ResolveNext selects the sequence to send for the enrollment's current step.
// Steps flagged skipIfEngaged are bypassed without producing a message when
// the recipient already engaged; resolution then continues at the following
// order. The engaged flag is derived from the enrollment's latest message
// (open or click recorded) by the caller.
func ResolveNext(campaign campaignTypes.Campaign, sequences []campaignTypes.Sequence, enrollment campaignTypes.Enrollment, engaged bool) Resolution {
	res := Resolution{Step: enrollment.CurrentStep}
	for {
		seq := FindVisibleAt(campaign, sequences, enrollment, res.Step)
		if seq == nil {
			res.Sequence = nil
			return res
		}
		if seq.SkipIfEngaged && engaged {
			res.SkippedSteps = append(res.SkippedSteps, res.Step)
			res.Step += 1
			continue
		}
		res.Sequence = seq
		return res
	}
}

// FindVisibleAt returns the sequence visible to the enrollment at the given
// order, or nil when there is none.
//
// For A/B testing campaigns an order that carries variants must be answered
// by the variant of the enrollment's assigned group; the non-variant step is
// no silent fallback there, so a coverage gap resolves as "no sequence
// found". Orders without variants resolve to their non-variant step for
// everyone.
func FindVisibleAt(campaign campaignTypes.Campaign, sequences []campaignTypes.Sequence, enrollment campaignTypes.Enrollment, order int) *campaignTypes.Sequence {
	var nonVariant *campaignTypes.Sequence
	var variants []campaignTypes.Sequence
	for i := range sequences {
		seq := sequences[i]
		if seq.SequenceOrder != order {
			continue
		}
		if seq.IsABTestVariant {
			variants = append(variants, seq)
		} else if nonVariant == nil {
			nonVariant = &sequences[i]
		}
	}

	if campaign.ABTestingEnabled && len(variants) > 0 && enrollment.ABTestGroup != "" {
		for i := range variants {
			if variants[i].ABTestGroup == enrollment.ABTestGroup {
				return &variants[i]
			}
		}
		return nil
	}

	return nonVariant
}

// ABTestGroups returns the distinct variant groups defined across the
// campaign's sequences, in first-seen order. Used to assign a group to a new
// enrollment.
func ABTestGroups(sequences []campaignTypes.Sequence) []string {
	seen := map[string]bool{}
	groups := []string{}
	for _, seq := range sequences {
		if !seq.IsABTestVariant || seq.ABTestGroup == "" {
			continue
		}
		if !seen[seq.ABTestGroup] {
			seen[seq.ABTestGroup] = true
			groups = append(groups, seq.ABTestGroup)
		}
	}
	return groups
}
