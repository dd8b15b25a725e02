package sequence

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	campaignTypes "github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/types"
)

// ValidateForActivation checks a campaign configuration before it is switched
// to active. Misconfigurations that would otherwise surface per send (missing
// sender identity, broken A/B coverage) are rejected here instead.
func ValidateForActivation(campaign campaignTypes.Campaign, sequences []campaignTypes.Sequence) error {
	problems := []string{}

	switch campaign.Channel {
	case campaignTypes.CAMPAIGN_CHANNEL_EMAIL:
		if campaign.FromEmail == "" {
			problems = append(problems, "fromEmail is required for email campaigns")
		}
	case campaignTypes.CAMPAIGN_CHANNEL_SMS:
		if campaign.FromName == "" {
			problems = append(problems, "fromName is required as sms sender identity")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown channel '%s'", campaign.Channel))
	}

	if len(sequences) < 1 {
		problems = append(problems, "campaign has no sequence steps")
		return errors.New(strings.Join(problems, "; "))
	}

	nonVariantsPerOrder := map[int]int{}
	variantGroupsPerOrder := map[int]map[string]bool{}
	allGroups := map[string]bool{}

	for _, seq := range sequences {
		if seq.SequenceOrder < 1 {
			problems = append(problems, fmt.Sprintf("sequenceOrder must be 1-based, got %d", seq.SequenceOrder))
			continue
		}
		if seq.SendTime != "" {
			if _, err := time.Parse(sendTimeLayout, seq.SendTime); err != nil {
				problems = append(problems, fmt.Sprintf("invalid sendTime '%s' at order %d", seq.SendTime, seq.SequenceOrder))
			}
		}
		if seq.IsABTestVariant {
			if !campaign.ABTestingEnabled {
				problems = append(problems, fmt.Sprintf("variant at order %d but A/B testing is disabled", seq.SequenceOrder))
				continue
			}
			if seq.ABTestGroup == "" {
				problems = append(problems, fmt.Sprintf("variant at order %d has no abTestGroup", seq.SequenceOrder))
				continue
			}
			if variantGroupsPerOrder[seq.SequenceOrder] == nil {
				variantGroupsPerOrder[seq.SequenceOrder] = map[string]bool{}
			}
			if variantGroupsPerOrder[seq.SequenceOrder][seq.ABTestGroup] {
				problems = append(problems, fmt.Sprintf("duplicate variant group '%s' at order %d", seq.ABTestGroup, seq.SequenceOrder))
			}
			variantGroupsPerOrder[seq.SequenceOrder][seq.ABTestGroup] = true
			allGroups[seq.ABTestGroup] = true
		} else {
			nonVariantsPerOrder[seq.SequenceOrder] += 1
		}
	}

	for order, count := range nonVariantsPerOrder {
		if count > 1 {
			problems = append(problems, fmt.Sprintf("more than one non-variant sequence at order %d", order))
		}
	}
	for order := range variantGroupsPerOrder {
		if nonVariantsPerOrder[order] < 1 {
			problems = append(problems, fmt.Sprintf("no non-variant sequence at order %d", order))
		}
	}

	// every group must cover every order that carries variants, otherwise
	// enrollments of the uncovered group would complete early at that step
	if campaign.ABTestingEnabled {
		for order, groups := range variantGroupsPerOrder {
			for group := range allGroups {
				if !groups[group] {
					problems = append(problems, fmt.Sprintf("group '%s' has no variant at order %d", group, order))
				}
			}
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
