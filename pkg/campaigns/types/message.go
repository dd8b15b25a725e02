package types

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	MESSAGE_STATUS_PENDING = "pending"
	MESSAGE_STATUS_SENT    = "sent"
	MESSAGE_STATUS_FAILED  = "failed"
)

// Message is the append-only record of one send attempt. Status is updated at
// most once (pending -> sent or pending -> failed); open and click timestamps
// attach to it through the tracking ID.
type Message struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EnrollmentID primitive.ObjectID `bson:"enrollmentID" json:"enrollmentID"`
	CampaignID   primitive.ObjectID `bson:"campaignID" json:"campaignID"`
	SequenceID   primitive.ObjectID `bson:"sequenceID" json:"sequenceID"`
	LeadID       primitive.ObjectID `bson:"leadID" json:"leadID"`
	TrackingID   string             `bson:"trackingID" json:"trackingID"`
	Subject      string             `bson:"subject" json:"subject"`
	Content      string             `bson:"content" json:"content"`
	Status       string             `bson:"status" json:"status"`
	ErrorMsg     string             `bson:"errorMsg,omitempty" json:"errorMsg,omitempty"`
	CreatedAt    int64              `bson:"createdAt" json:"createdAt"`
	SentAt       int64              `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	OpenedAt     int64              `bson:"openedAt,omitempty" json:"openedAt,omitempty"`
	ClickedAt    int64              `bson:"clickedAt,omitempty" json:"clickedAt,omitempty"`
}

// Engaged reports whether the recipient opened or clicked this message.
func (m Message) Engaged() bool {
	return m.OpenedAt > 0 || m.ClickedAt > 0
}
