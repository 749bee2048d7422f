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

type LineRepository struct {
	collection *mongo.Collection
	logger     *logrus.Logger
}

func NewLineRepository(db *mongo.Database, logger *logrus.Logger) *LineRepository {
	return &LineRepository{
		collection: db.Collection("lines"),
		logger:     logger,
	}
}

func (r *LineRepository) Create(ctx context.Context, line *models.Line) error {
	line.AddedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, line)
	if err != nil {
		return fmt.Errorf("failed to insert line: %w", err)
	}

	line.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *LineRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Line, error) {
	var line models.Line
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&line)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find line: %w", err)
	}

	return &line, nil
}

// FindByAccount returns the account's lines ordered by name. An empty status
// means no status filter.
func (r *LineRepository) FindByAccount(ctx context.Context, accountID primitive.ObjectID, status models.LineStatus) ([]*models.Line, error) {
	filter := bson.M{"account_id": accountID}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "line_name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find lines: %w", err)
	}
	defer cursor.Close(ctx)

	var lines []*models.Line
	for cursor.Next(ctx) {
		var line models.Line
		if err := cursor.Decode(&line); err != nil {
			return nil, fmt.Errorf("failed to decode line: %w", err)
		}
		lines = append(lines, &line)
	}

	return lines, nil
}

func (r *LineRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.LineStatus) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{"status": status}}

	_, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update line status: %w", err)
	}

	return nil
}

// MarkCancelled cancels the line and records when it happened.
func (r *LineRepository) MarkCancelled(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"status":       models.LineStatusCancelled,
			"cancelled_at": at,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to cancel line: %w", err)
	}

	return nil
}

// Reactivate moves a cancelled line back to ACTIVE and clears the
// cancellation timestamp.
func (r *LineRepository) Reactivate(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set":   bson.M{"status": models.LineStatusActive},
		"$unset": bson.M{"cancelled_at": ""},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reactivate line: %w", err)
	}

	return nil
}

// CancelByAccount cancels every line on the account regardless of its
// current status. Returns the number of lines modified.
func (r *LineRepository) CancelByAccount(ctx context.Context, accountID primitive.ObjectID, at time.Time) (int64, error) {
	filter := bson.M{"account_id": accountID}
	update := bson.M{
		"$set": bson.M{
			"status":       models.LineStatusCancelled,
			"cancelled_at": at,
		},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel account lines: %w", err)
	}

	return result.ModifiedCount, nil
}

func (r *LineRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	if len(fields) == 0 {
		return nil
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update line: %w", err)
	}

	return nil
}

func (r *LineRepository) CountByAccount(ctx context.Context, accountID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"account_id": accountID})
	if err != nil {
		return 0, fmt.Errorf("failed to count lines: %w", err)
	}

	return count, nil
}

func (r *LineRepository) CountByAccountAndStatus(ctx context.Context, accountID primitive.ObjectID, status models.LineStatus) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"account_id": accountID, "status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count lines: %w", err)
	}

	return count, nil
}

func (r *LineRepository) CountByStatus(ctx context.Context, status models.LineStatus) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count lines: %w", err)
	}

	return count, nil
}

func (r *LineRepository) CreateIndex(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "msdn", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "status", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
