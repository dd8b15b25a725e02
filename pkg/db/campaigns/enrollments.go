package campaigns

import (
	"errors"
	"time"

	campaignTypes "github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (dbService *CampaignDBService) AddEnrollment(instanceID string, enrollment campaignTypes.Enrollment) (campaignTypes.Enrollment, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	if enrollment.EnrolledAt <= 0 {
		enrollment.EnrolledAt = time.Now().Unix()
	}
	if enrollment.Status == "" {
		enrollment.Status = campaignTypes.ENROLLMENT_STATUS_ACTIVE
	}
	if enrollment.CurrentStep < 1 {
		enrollment.CurrentStep = 1
	}

	res, err := dbService.collectionEnrollments(instanceID).InsertOne(ctx, enrollment)
	if err != nil {
		return enrollment, err
	}
	enrollment.ID = res.InsertedID.(primitive.ObjectID)
	return enrollment, nil
}

func (dbService *CampaignDBService) GetEnrollmentByID(instanceID string, enrollmentID string) (campaignTypes.Enrollment, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	var enrollment campaignTypes.Enrollment
	_id, err := primitive.ObjectIDFromHex(enrollmentID)
	if err != nil {
		return enrollment, err
	}
	err = dbService.collectionEnrollments(instanceID).FindOne(ctx, bson.M{"_id": _id}).Decode(&enrollment)
	return enrollment, err
}

// ClaimDueEnrollment atomically picks one due enrollment of the campaign and
// stamps its lastSendAttempt, so an overlapping cycle cannot pick the same
// one until the claim lock expires. Returns mongo.ErrNoDocuments when no due
// enrollment is left.
func (dbService *CampaignDBService) ClaimDueEnrollment(instanceID string, campaignID primitive.ObjectID, claimLockDuration time.Duration) (campaignTypes.Enrollment, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	now := time.Now()
	filter := bson.M{
		"campaignID": campaignID,
		"status":     campaignTypes.ENROLLMENT_STATUS_ACTIVE,
		"nextSendAt": bson.M{"$lte": now.Unix()},
		"lastSendAttempt": bson.M{
			"$lt": now.Add(-claimLockDuration).Unix(),
		},
	}
	update := bson.M{"$set": bson.M{"lastSendAttempt": now.Unix()}}

	var enrollment campaignTypes.Enrollment
	err := dbService.collectionEnrollments(instanceID).FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After).SetSort(bson.D{{Key: "nextSendAt", Value: 1}}),
	).Decode(&enrollment)
	return enrollment, err
}

// ReleaseEnrollmentClaim clears the claim lock so the enrollment is retried
// on the next cycle instead of waiting out the lock duration.
func (dbService *CampaignDBService) ReleaseEnrollmentClaim(instanceID string, enrollmentID primitive.ObjectID) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionEnrollments(instanceID).UpdateOne(
		ctx,
		bson.M{"_id": enrollmentID},
		bson.M{"$set": bson.M{"lastSendAttempt": 0}},
	)
	return err
}

// AdvanceEnrollment moves an active enrollment from fromStep to toStep. The
// filter includes the expected current step, so a concurrent cycle that
// already advanced the enrollment makes this a no-op error instead of a
// double advance. The claim stamp is left untouched: the enrollment is not
// picked up again within the same lock window, even when the landed step is
// already due.
func (dbService *CampaignDBService) AdvanceEnrollment(
	instanceID string,
	enrollmentID primitive.ObjectID,
	fromStep int,
	toStep int,
	nextSequenceID primitive.ObjectID,
	nextSendAt int64,
) (campaignTypes.Enrollment, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"_id":         enrollmentID,
		"status":      campaignTypes.ENROLLMENT_STATUS_ACTIVE,
		"currentStep": fromStep,
	}
	update := bson.M{"$set": bson.M{
		"currentStep":       toStep,
		"currentSequenceID": nextSequenceID,
		"nextSendAt":        nextSendAt,
		"sendAttempts":      0,
	}}

	var updated campaignTypes.Enrollment
	err := dbService.collectionEnrollments(instanceID).FindOneAndUpdate(
		ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return updated, errors.New("enrollment not found or has been advanced since last fetch")
		}
		return updated, err
	}
	return updated, nil
}

// CompleteEnrollment is the terminal transition after the last step. Guarded
// by the expected current step like AdvanceEnrollment.
func (dbService *CampaignDBService) CompleteEnrollment(instanceID string, enrollmentID primitive.ObjectID, fromStep int) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"_id":         enrollmentID,
		"status":      campaignTypes.ENROLLMENT_STATUS_ACTIVE,
		"currentStep": fromStep,
	}
	update := bson.M{
		"$set": bson.M{
			"status":          campaignTypes.ENROLLMENT_STATUS_COMPLETED,
			"completedAt":     time.Now().Unix(),
			"lastSendAttempt": 0,
		},
		"$unset": bson.M{"nextSendAt": ""},
	}

	res := dbService.collectionEnrollments(instanceID).FindOneAndUpdate(ctx, filter, update)
	if res.Err() != nil {
		if errors.Is(res.Err(), mongo.ErrNoDocuments) {
			return errors.New("enrollment not found or has been advanced since last fetch")
		}
		return res.Err()
	}
	return nil
}

// CancelEnrollment is the external administrative stop. Only active
// enrollments can be cancelled; terminal states stay as they are.
func (dbService *CampaignDBService) CancelEnrollment(instanceID string, enrollmentID primitive.ObjectID) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"_id":    enrollmentID,
		"status": campaignTypes.ENROLLMENT_STATUS_ACTIVE,
	}
	update := bson.M{
		"$set":   bson.M{"status": campaignTypes.ENROLLMENT_STATUS_CANCELLED},
		"$unset": bson.M{"nextSendAt": ""},
	}

	res := dbService.collectionEnrollments(instanceID).FindOneAndUpdate(ctx, filter, update)
	if res.Err() != nil {
		if errors.Is(res.Err(), mongo.ErrNoDocuments) {
			return errors.New("enrollment not found or not active")
		}
		return res.Err()
	}
	return nil
}

func (dbService *CampaignDBService) IncrementEnrollmentSendAttempts(instanceID string, enrollmentID primitive.ObjectID) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionEnrollments(instanceID).UpdateOne(
		ctx,
		bson.M{"_id": enrollmentID},
		bson.M{"$inc": bson.M{"sendAttempts": 1}},
	)
	return err
}

func (dbService *CampaignDBService) MarkEnrollmentEngaged(instanceID string, enrollmentID primitive.ObjectID, engagedAt int64) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionEnrollments(instanceID).UpdateOne(
		ctx,
		bson.M{"_id": enrollmentID},
		bson.M{"$set": bson.M{"lastEngagedAt": engagedAt}},
	)
	return err
}

func (dbService *CampaignDBService) GetEnrollmentsForCampaign(instanceID string, campaignID primitive.ObjectID) ([]campaignTypes.Enrollment, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	cursor, err := dbService.collectionEnrollments(instanceID).Find(ctx, bson.M{"campaignID": campaignID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var enrollments []campaignTypes.Enrollment
	if err = cursor.All(ctx, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}
