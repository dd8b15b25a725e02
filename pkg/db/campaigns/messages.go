package campaigns

import (
	"time"

	campaignTypes "github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (dbService *CampaignDBService) AddMessage(instanceID string, message campaignTypes.Message) (campaignTypes.Message, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	if message.CreatedAt <= 0 {
		message.CreatedAt = time.Now().Unix()
	}
	if message.Status == "" {
		message.Status = campaignTypes.MESSAGE_STATUS_PENDING
	}

	res, err := dbService.collectionMessages(instanceID).InsertOne(ctx, message)
	if err != nil {
		return message, err
	}
	message.ID = res.InsertedID.(primitive.ObjectID)
	return message, nil
}

func (dbService *CampaignDBService) MarkMessageSent(instanceID string, messageID primitive.ObjectID) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionMessages(instanceID).UpdateOne(
		ctx,
		bson.M{"_id": messageID, "status": campaignTypes.MESSAGE_STATUS_PENDING},
		bson.M{"$set": bson.M{
			"status": campaignTypes.MESSAGE_STATUS_SENT,
			"sentAt": time.Now().Unix(),
		}},
	)
	return err
}

func (dbService *CampaignDBService) MarkMessageFailed(instanceID string, messageID primitive.ObjectID, errorMsg string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionMessages(instanceID).UpdateOne(
		ctx,
		bson.M{"_id": messageID, "status": campaignTypes.MESSAGE_STATUS_PENDING},
		bson.M{"$set": bson.M{
			"status":   campaignTypes.MESSAGE_STATUS_FAILED,
			"errorMsg": errorMsg,
		}},
	)
	return err
}

// GetLatestMessageForEnrollment returns the most recent message of the
// enrollment, used for the skip-if-engaged check. mongo.ErrNoDocuments means
// nothing was sent yet.
func (dbService *CampaignDBService) GetLatestMessageForEnrollment(instanceID string, enrollmentID primitive.ObjectID) (campaignTypes.Message, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	var message campaignTypes.Message
	err := dbService.collectionMessages(instanceID).FindOne(
		ctx,
		bson.M{"enrollmentID": enrollmentID},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	).Decode(&message)
	return message, err
}

func (dbService *CampaignDBService) GetMessageByTrackingID(instanceID string, trackingID string) (campaignTypes.Message, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	var message campaignTypes.Message
	err := dbService.collectionMessages(instanceID).FindOne(ctx, bson.M{"trackingID": trackingID}).Decode(&message)
	return message, err
}

// MarkMessageOpened records the first open for the tracking ID; later opens
// keep the original timestamp.
func (dbService *CampaignDBService) MarkMessageOpened(instanceID string, trackingID string, openedAt int64) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"trackingID": trackingID,
		"openedAt":   bson.M{"$exists": false},
	}
	_, err := dbService.collectionMessages(instanceID).UpdateOne(
		ctx,
		filter,
		bson.M{"$set": bson.M{"openedAt": openedAt}},
	)
	return err
}

// MarkMessageClicked records the first click for the tracking ID.
func (dbService *CampaignDBService) MarkMessageClicked(instanceID string, trackingID string, clickedAt int64) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"trackingID": trackingID,
		"clickedAt":  bson.M{"$exists": false},
	}
	_, err := dbService.collectionMessages(instanceID).UpdateOne(
		ctx,
		filter,
		bson.M{"$set": bson.M{"clickedAt": clickedAt}},
	)
	return err
}

func (dbService *CampaignDBService) GetMessagesForEnrollment(instanceID string, enrollmentID primitive.ObjectID) ([]campaignTypes.Message, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	cursor, err := dbService.collectionMessages(instanceID).Find(
		ctx,
		bson.M{"enrollmentID": enrollmentID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []campaignTypes.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// GetCampaignMessageStats counts the campaign's messages by delivery status.
func (dbService *CampaignDBService) GetCampaignMessageStats(instanceID string, campaignID primitive.ObjectID) (map[string]int64, error) {
	stats := map[string]int64{
		campaignTypes.MESSAGE_STATUS_PENDING: 0,
		campaignTypes.MESSAGE_STATUS_SENT:    0,
		campaignTypes.MESSAGE_STATUS_FAILED:  0,
	}

	for status := range stats {
		ctx, cancel := dbService.getContext()
		count, err := dbService.collectionMessages(instanceID).CountDocuments(ctx, bson.M{
			"campaignID": campaignID,
			"status":     status,
		})
		cancel()
		if err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, nil
}
