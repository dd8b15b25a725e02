package personalization

import (
	"strings"

	campaignTypes "github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/types"
)

// Merge tag tokens recognized in subject and body templates. Tags are
// case-sensitive and replaced by whole-token substitution; anything else that
// looks like a tag is left untouched.
const (
	TAG_BUSINESS_NAME  = "{{business_name}}"
	TAG_CONTACT_PERSON = "{{contact_person}}"
	TAG_FIRST_NAME     = "{{first_name}}"
	TAG_EMAIL          = "{{email}}"
	TAG_PHONE          = "{{phone}}"
	TAG_CITY           = "{{city}}"
	TAG_STATE          = "{{state}}"
	TAG_CAMPAIGN_NAME  = "{{campaign_name}}"
)

// Resolve substitutes the merge tags from the lead record into a template.
// Missing lead fields resolve to an empty string so that incomplete
// personalization data never blocks a send.
func Resolve(template string, lead campaignTypes.Lead, campaignName string) string {
	replacer := strings.NewReplacer(
		TAG_BUSINESS_NAME, lead.BusinessName,
		TAG_CONTACT_PERSON, lead.ContactPerson,
		TAG_FIRST_NAME, lead.FirstName,
		TAG_EMAIL, lead.Email,
		TAG_PHONE, lead.Phone,
		TAG_CITY, lead.City,
		TAG_STATE, lead.State,
		TAG_CAMPAIGN_NAME, campaignName,
	)
	return replacer.Replace(template)
}

// ResolveContent renders subject and body of a sequence step for a lead.
func ResolveContent(seq campaignTypes.Sequence, lead campaignTypes.Lead, campaignName string) (subject string, body string) {
	subject = Resolve(seq.Subject, lead, campaignName)
	body = Resolve(seq.Body, lead, campaignName)
	return subject, body
}
