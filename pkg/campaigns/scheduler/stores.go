package scheduler

import (
	"time"

	campaignTypes "github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store interfaces the scheduler depends on. The MongoDB campaign DB service
// satisfies all of them; tests substitute in-memory fakes.

type CampaignStore interface {
	GetCampaignsByStatus(instanceID string, status string) ([]campaignTypes.Campaign, error)
	GetSequencesForCampaign(instanceID string, campaignID primitive.ObjectID) ([]campaignTypes.Sequence, error)
	IncrementCampaignTotalSent(instanceID string, campaignID primitive.ObjectID) error
	IncrementCampaignTotalCompleted(instanceID string, campaignID primitive.ObjectID) error
}

type EnrollmentStore interface {
	ClaimDueEnrollment(instanceID string, campaignID primitive.ObjectID, claimLockDuration time.Duration) (campaignTypes.Enrollment, error)
	GetEnrollmentByID(instanceID string, enrollmentID string) (campaignTypes.Enrollment, error)
	ReleaseEnrollmentClaim(instanceID string, enrollmentID primitive.ObjectID) error
	AdvanceEnrollment(instanceID string, enrollmentID primitive.ObjectID, fromStep int, toStep int, nextSequenceID primitive.ObjectID, nextSendAt int64) (campaignTypes.Enrollment, error)
	CompleteEnrollment(instanceID string, enrollmentID primitive.ObjectID, fromStep int) error
	IncrementEnrollmentSendAttempts(instanceID string, enrollmentID primitive.ObjectID) error
}

type MessageStore interface {
	AddMessage(instanceID string, message campaignTypes.Message) (campaignTypes.Message, error)
	MarkMessageSent(instanceID string, messageID primitive.ObjectID) error
	MarkMessageFailed(instanceID string, messageID primitive.ObjectID, errorMsg string) error
	GetLatestMessageForEnrollment(instanceID string, enrollmentID primitive.ObjectID) (campaignTypes.Message, error)
}

type LeadStore interface {
	GetLeadByID(instanceID string, leadID string) (campaignTypes.Lead, error)
}
