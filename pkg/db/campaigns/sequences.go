package campaigns

import (
	campaignTypes "github.com/soshogle/nexrel-crm-sub019/pkg/campaigns/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (dbService *CampaignDBService) SaveSequence(instanceID string, sequence campaignTypes.Sequence) (campaignTypes.Sequence, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	if !sequence.ID.IsZero() {
		filter := bson.M{"_id": sequence.ID}

		upsert := false
		rd := options.After
		options := options.FindOneAndReplaceOptions{
			Upsert:         &upsert,
			ReturnDocument: &rd,
		}
		elem := campaignTypes.Sequence{}
		err := dbService.collectionSequences(instanceID).FindOneAndReplace(
			ctx, filter, sequence, &options,
		).Decode(&elem)
		return elem, err
	}

	res, err := dbService.collectionSequences(instanceID).InsertOne(ctx, sequence)
	if err != nil {
		return sequence, err
	}
	sequence.ID = res.InsertedID.(primitive.ObjectID)
	return sequence, nil
}

func (dbService *CampaignDBService) GetSequencesForCampaign(instanceID string, campaignID primitive.ObjectID) ([]campaignTypes.Sequence, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"campaignID": campaignID}
	opts := options.Find().SetSort(bson.D{{Key: "sequenceOrder", Value: 1}})

	cursor, err := dbService.collectionSequences(instanceID).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sequences []campaignTypes.Sequence
	if err = cursor.All(ctx, &sequences); err != nil {
		return nil, err
	}
	return sequences, nil
}

func (dbService *CampaignDBService) DeleteSequence(instanceID string, sequenceID string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(sequenceID)
	if err != nil {
		return err
	}
	_, err = dbService.collectionSequences(instanceID).DeleteOne(ctx, bson.M{"_id": _id})
	return err
}
