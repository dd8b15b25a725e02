package types

import "go.mongodb.org/mongo-driver/bson/primitive"

// Sequence is one step template of a campaign. Variants of a step share the
// same sequenceOrder and differ only in abTestGroup.
type Sequence struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CampaignID      primitive.ObjectID `bson:"campaignID" json:"campaignID"`
	SequenceOrder   int                `bson:"sequenceOrder" json:"sequenceOrder"`
	Subject         string             `bson:"subject" json:"subject"`
	Body            string             `bson:"body" json:"body"`
	DelayDays       int                `bson:"delayDays" json:"delayDays"`
	DelayHours      int                `bson:"delayHours" json:"delayHours"`
	SendTime        string             `bson:"sendTime,omitempty" json:"sendTime,omitempty"` // "15:04", local time of day
	SkipIfEngaged   bool               `bson:"skipIfEngaged" json:"skipIfEngaged"`
	IsABTestVariant bool               `bson:"isAbTestVariant" json:"isAbTestVariant"`
	ABTestGroup     string             `bson:"abTestGroup,omitempty" json:"abTestGroup,omitempty"`
}
