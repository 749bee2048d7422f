package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sunjava/telcodesk/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LineServiceRepository struct {
	collection *mongo.Collection
	logger     *logrus.Logger
}

func NewLineServiceRepository(db *mongo.Database, logger *logrus.Logger) *LineServiceRepository {
	return &LineServiceRepository{
		collection: db.Collection("line_services"),
		logger:     logger,
	}
}

func (r *LineServiceRepository) Create(ctx context.Context, ls *models.LineService) error {
	ls.CreatedAt = time.Now()
	if ls.TotalAmount == 0 {
		ls.TotalAmount = ls.AmountPaid + ls.TaxAmount
	}

	result, err := r.collection.InsertOne(ctx, ls)
	if err != nil {
		return fmt.Errorf("failed to insert line service: %w", err)
	}

	ls.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *LineServiceRepository) FindByLine(ctx context.Context, lineID primitive.ObjectID) ([]*models.LineService, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"line_id": lineID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find line services: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeLineServices(ctx, cursor)
}

// FindByLines returns subscriptions across the given lines, newest first,
// optionally restricted to a set of statuses.
func (r *LineServiceRepository) FindByLines(ctx context.Context, lineIDs []primitive.ObjectID, statuses ...models.LineServiceStatus) ([]*models.LineService, error) {
	if len(lineIDs) == 0 {
		return nil, nil
	}

	filter := bson.M{"line_id": bson.M{"$in": lineIDs}}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find line services: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeLineServices(ctx, cursor)
}

// HasOpenSubscription reports whether the line already holds a PENDING or
// ACTIVE subscription for the service.
func (r *LineServiceRepository) HasOpenSubscription(ctx context.Context, lineID, serviceID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"line_id":    lineID,
		"service_id": serviceID,
		"status": bson.M{"$in": []models.LineServiceStatus{
			models.LineServiceStatusPending,
			models.LineServiceStatusActive,
		}},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to count line services: %w", err)
	}

	return count > 0, nil
}

func (r *LineServiceRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": since}})
	if err != nil {
		return 0, fmt.Errorf("failed to count line services: %w", err)
	}

	return count, nil
}

func (r *LineServiceRepository) CreateIndex(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "line_id", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func decodeLineServices(ctx context.Context, cursor *mongo.Cursor) ([]*models.LineService, error) {
	var items []*models.LineService
	for cursor.Next(ctx) {
		var ls models.LineService
		if err := cursor.Decode(&ls); err != nil {
			return nil, fmt.Errorf("failed to decode line service: %w", err)
		}
		items = append(items, &ls)
	}

	return items, nil
}
