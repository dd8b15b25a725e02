package types

import "go.mongodb.org/mongo-driver/bson/primitive"

// Lead supplies the merge tag fields for personalization. The enrollment
// engine treats leads as read-only, except for the unsubscribed flag which is
// set through the unsubscribe endpoint.
type Lead struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BusinessName  string             `bson:"businessName,omitempty" json:"businessName,omitempty"`
	ContactPerson string             `bson:"contactPerson,omitempty" json:"contactPerson,omitempty"`
	FirstName     string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`
	City          string             `bson:"city,omitempty" json:"city,omitempty"`
	State         string             `bson:"state,omitempty" json:"state,omitempty"`
	Unsubscribed  bool               `bson:"unsubscribed" json:"unsubscribed"`
	CreatedAt     int64              `bson:"createdAt" json:"createdAt"`
}
