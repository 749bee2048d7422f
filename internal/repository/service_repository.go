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

type ServiceRepository struct {
	collection *mongo.Collection
	logger     *logrus.Logger
}

func NewServiceRepository(db *mongo.Database, logger *logrus.Logger) *ServiceRepository {
	return &ServiceRepository{
		collection: db.Collection("services"),
		logger:     logger,
	}
}

func (r *ServiceRepository) Create(ctx context.Context, service *models.Service) error {
	service.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, service)
	if err != nil {
		return fmt.Errorf("failed to insert service: %w", err)
	}

	service.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ServiceRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Service, error) {
	var service models.Service
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&service)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}

	return &service, nil
}

func (r *ServiceRepository) FindByName(ctx context.Context, name string) (*models.Service, error) {
	var service models.Service
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&service)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}

	return &service, nil
}

// FindActive returns the sellable catalog ordered by price ascending, so the
// first match for any lookup is the cheapest one.
func (r *ServiceRepository) FindActive(ctx context.Context) ([]*models.Service, error) {
	opts := options.Find().SetSort(bson.D{{Key: "price", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []*models.Service
	for cursor.Next(ctx) {
		var service models.Service
		if err := cursor.Decode(&service); err != nil {
			return nil, fmt.Errorf("failed to decode service: %w", err)
		}
		services = append(services, &service)
	}

	return services, nil
}

func (r *ServiceRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count services: %w", err)
	}

	return count, nil
}

func (r *ServiceRepository) CreateIndex(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "price", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
