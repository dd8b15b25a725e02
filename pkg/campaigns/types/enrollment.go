package types

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	ENROLLMENT_STATUS_ACTIVE    = "active"
	ENROLLMENT_STATUS_COMPLETED = "completed"
	ENROLLMENT_STATUS_CANCELLED = "cancelled"
)

// Enrollment tracks one lead's progress through a campaign. CurrentStep only
// ever increases; completed and cancelled are terminal.
type Enrollment struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CampaignID        primitive.ObjectID `bson:"campaignID" json:"campaignID"`
	LeadID            primitive.ObjectID `bson:"leadID" json:"leadID"`
	Status            string             `bson:"status" json:"status"`
	CurrentStep       int                `bson:"currentStep" json:"currentStep"`
	CurrentSequenceID primitive.ObjectID `bson:"currentSequenceID,omitempty" json:"currentSequenceID,omitempty"`
	NextSendAt        int64              `bson:"nextSendAt,omitempty" json:"nextSendAt,omitempty"`
	ABTestGroup       string             `bson:"abTestGroup,omitempty" json:"abTestGroup,omitempty"`
	LastEngagedAt     int64              `bson:"lastEngagedAt,omitempty" json:"lastEngagedAt,omitempty"`
	SendAttempts      int                `bson:"sendAttempts" json:"sendAttempts"`
	LastSendAttempt   int64              `bson:"lastSendAttempt" json:"lastSendAttempt"`
	EnrolledAt        int64              `bson:"enrolledAt" json:"enrolledAt"`
	CompletedAt       int64              `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}
