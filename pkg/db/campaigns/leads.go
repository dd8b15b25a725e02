package campaigns

import (
	"time"

	campaignTypes "github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (dbService *CampaignDBService) AddLead(instanceID string, lead campaignTypes.Lead) (campaignTypes.Lead, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	if lead.CreatedAt <= 0 {
		lead.CreatedAt = time.Now().Unix()
	}

	res, err := dbService.collectionLeads(instanceID).InsertOne(ctx, lead)
	if err != nil {
		return lead, err
	}
	lead.ID = res.InsertedID.(primitive.ObjectID)
	return lead, nil
}

func (dbService *CampaignDBService) GetLeadByID(instanceID string, leadID string) (campaignTypes.Lead, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	var lead campaignTypes.Lead
	_id, err := primitive.ObjectIDFromHex(leadID)
	if err != nil {
		return lead, err
	}
	err = dbService.collectionLeads(instanceID).FindOne(ctx, bson.M{"_id": _id}).Decode(&lead)
	return lead, err
}

func (dbService *CampaignDBService) GetLeads(instanceID string) ([]campaignTypes.Lead, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	cursor, err := dbService.collectionLeads(instanceID).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var leads []campaignTypes.Lead
	if err = cursor.All(ctx, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func (dbService *CampaignDBService) MarkLeadUnsubscribed(instanceID string, leadID primitive.ObjectID) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionLeads(instanceID).UpdateOne(
		ctx,
		bson.M{"_id": leadID},
		bson.M{"$set": bson.M{"unsubscribed": true}},
	)
	return err
}
