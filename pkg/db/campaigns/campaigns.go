package campaigns

import (
	"time"

	campaignTypes "github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (dbService *CampaignDBService) AddCampaign(instanceID string, campaign campaignTypes.Campaign) (campaignTypes.Campaign, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	if campaign.CreatedAt <= 0 {
		campaign.CreatedAt = time.Now().Unix()
	}
	if campaign.Status == "" {
		campaign.Status = campaignTypes.CAMPAIGN_STATUS_DRAFT
	}

	res, err := dbService.collectionCampaigns(instanceID).InsertOne(ctx, campaign)
	if err != nil {
		return campaign, err
	}
	campaign.ID = res.InsertedID.(primitive.ObjectID)
	return campaign, nil
}

func (dbService *CampaignDBService) GetCampaignByID(instanceID string, campaignID string) (campaignTypes.Campaign, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	var campaign campaignTypes.Campaign
	_id, err := primitive.ObjectIDFromHex(campaignID)
	if err != nil {
		return campaign, err
	}
	filter := bson.M{"_id": _id}
	err = dbService.collectionCampaigns(instanceID).FindOne(ctx, filter).Decode(&campaign)
	return campaign, err
}

func (dbService *CampaignDBService) GetCampaigns(instanceID string) ([]campaignTypes.Campaign, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	cursor, err := dbService.collectionCampaigns(instanceID).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var campaigns []campaignTypes.Campaign
	if err = cursor.All(ctx, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (dbService *CampaignDBService) GetCampaignsByStatus(instanceID string, status string) ([]campaignTypes.Campaign, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"status": status}
	cursor, err := dbService.collectionCampaigns(instanceID).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var campaigns []campaignTypes.Campaign
	if err = cursor.All(ctx, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (dbService *CampaignDBService) UpdateCampaignStatus(instanceID string, campaignID string, status string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(campaignID)
	if err != nil {
		return err
	}

	update := bson.M{"status": status}
	if status == campaignTypes.CAMPAIGN_STATUS_ACTIVE {
		update["activatedAt"] = time.Now().Unix()
	}

	_, err = dbService.collectionCampaigns(instanceID).UpdateOne(
		ctx,
		bson.M{"_id": _id},
		bson.M{"$set": update},
	)
	return err
}

// Counter increments are relaxed: a small race window on the aggregate
// numbers is acceptable, the enrollment state transition is what must not
// race.
func (dbService *CampaignDBService) IncrementCampaignTotalSent(instanceID string, campaignID primitive.ObjectID) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionCampaigns(instanceID).UpdateOne(
		ctx,
		bson.M{"_id": campaignID},
		bson.M{"$inc": bson.M{"totalSent": 1}},
	)
	return err
}

func (dbService *CampaignDBService) IncrementCampaignTotalCompleted(instanceID string, campaignID primitive.ObjectID) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionCampaigns(instanceID).UpdateOne(
		ctx,
		bson.M{"_id": campaignID},
		bson.M{"$inc": bson.M{"totalCompleted": 1}},
	)
	return err
}
