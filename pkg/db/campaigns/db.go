package campaigns

import (
	"context"
	"log/slog"
	"time"

	"github.com/soshogle/nexrel-crm-sub019/pkg/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collection names
const (
	COLLECTION_NAME_CAMPAIGNS   = "campaigns"
	COLLECTION_NAME_SEQUENCES   = "sequences"
	COLLECTION_NAME_ENROLLMENTS = "enrollments"
	COLLECTION_NAME_MESSAGES    = "messages"
	COLLECTION_NAME_LEADS       = "leads"
)

type CampaignDBService struct {
	DBClient        *mongo.Client
	timeout         int
	noCursorTimeout bool
	DBNamePrefix    string
	InstanceIDs     []string
}

func NewCampaignDBService(configs db.DBConfig) (*CampaignDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)
	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()
	if err != nil {
		return nil, err
	}

	campaignDBSc := &CampaignDBService{
		DBClient:        dbClient,
		timeout:         configs.Timeout,
		noCursorTimeout: configs.NoCursorTimeout,
		DBNamePrefix:    configs.DBNamePrefix,
		InstanceIDs:     configs.InstanceIDs,
	}

	if configs.RunIndexCreation {
		if err := campaignDBSc.ensureIndexes(); err != nil {
			slog.Error("Error ensuring indexes for campaign DB: ", slog.String("error", err.Error()))
		}
	}

	return campaignDBSc, nil
}

func (dbService *CampaignDBService) getDBName(instanceID string) string {
	return dbService.DBNamePrefix + instanceID + "_campaignDB"
}

func (dbService *CampaignDBService) collectionCampaigns(instanceID string) *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName(instanceID)).Collection(COLLECTION_NAME_CAMPAIGNS)
}

func (dbService *CampaignDBService) collectionSequences(instanceID string) *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName(instanceID)).Collection(COLLECTION_NAME_SEQUENCES)
}

func (dbService *CampaignDBService) collectionEnrollments(instanceID string) *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName(instanceID)).Collection(COLLECTION_NAME_ENROLLMENTS)
}

func (dbService *CampaignDBService) collectionMessages(instanceID string) *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName(instanceID)).Collection(COLLECTION_NAME_MESSAGES)
}

func (dbService *CampaignDBService) collectionLeads(instanceID string) *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName(instanceID)).Collection(COLLECTION_NAME_LEADS)
}

func (dbService *CampaignDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
}

func (dbService *CampaignDBService) ensureIndexes() error {
	slog.Debug("Ensuring indexes for campaign DB")
	for _, instanceID := range dbService.InstanceIDs {
		ctx, cancel := dbService.getContext()
		defer cancel()

		// Sequences: one lookup per campaign, ordered
		_, err := dbService.collectionSequences(instanceID).Indexes().CreateOne(
			ctx,
			mongo.IndexModel{
				Keys: bson.D{
					{Key: "campaignID", Value: 1},
					{Key: "sequenceOrder", Value: 1},
				},
			},
		)
		if err != nil {
			slog.Error("Error creating index for sequences: ", slog.String("instanceID", instanceID), slog.String("error", err.Error()))
		}

		// Enrollments: due query per campaign
		_, err = dbService.collectionEnrollments(instanceID).Indexes().CreateOne(
			ctx,
			mongo.IndexModel{
				Keys: bson.D{
					{Key: "campaignID", Value: 1},
					{Key: "status", Value: 1},
					{Key: "nextSendAt", Value: 1},
				},
			},
		)
		if err != nil {
			slog.Error("Error creating index for enrollments: ", slog.String("instanceID", instanceID), slog.String("error", err.Error()))
		}

		// One enrollment per campaign and lead
		_, err = dbService.collectionEnrollments(instanceID).Indexes().CreateOne(
			ctx,
			mongo.IndexModel{
				Keys: bson.D{
					{Key: "campaignID", Value: 1},
					{Key: "leadID", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
		)
		if err != nil {
			slog.Error("Error creating unique index for enrollments: ", slog.String("instanceID", instanceID), slog.String("error", err.Error()))
		}

		// Messages: tracking lookups and latest-per-enrollment
		_, err = dbService.collectionMessages(instanceID).Indexes().CreateMany(
			ctx,
			[]mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "trackingID", Value: 1}},
					Options: options.Index().SetUnique(true),
				},
				{
					Keys: bson.D{
						{Key: "enrollmentID", Value: 1},
						{Key: "createdAt", Value: -1},
					},
				},
			},
		)
		if err != nil {
			slog.Error("Error creating indexes for messages: ", slog.String("instanceID", instanceID), slog.String("error", err.Error()))
		}
	}

	return nil
}
