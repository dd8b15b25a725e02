package types

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	CAMPAIGN_STATUS_DRAFT     = "draft"
	CAMPAIGN_STATUS_ACTIVE    = "active"
	CAMPAIGN_STATUS_PAUSED    = "paused"
	CAMPAIGN_STATUS_COMPLETED = "completed"
)

const (
	CAMPAIGN_CHANNEL_EMAIL = "email"
	CAMPAIGN_CHANNEL_SMS   = "sms"
)

type Campaign struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Status           string             `bson:"status" json:"status"`
	Channel          string             `bson:"channel" json:"channel"`
	FromName         string             `bson:"fromName" json:"fromName"`
	FromEmail        string             `bson:"fromEmail" json:"fromEmail"`
	ReplyTo          string             `bson:"replyTo,omitempty" json:"replyTo,omitempty"`
	ABTestingEnabled bool               `bson:"abTestingEnabled" json:"abTestingEnabled"`
	TotalSent        int64              `bson:"totalSent" json:"totalSent"`
	TotalCompleted   int64              `bson:"totalCompleted" json:"totalCompleted"`
	CreatedAt        int64              `bson:"createdAt" json:"createdAt"`
	ActivatedAt      int64              `bson:"activatedAt,omitempty" json:"activatedAt,omitempty"`
}
