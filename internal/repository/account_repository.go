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

type AccountRepository struct {
	collection *mongo.Collection
	logger     *logrus.Logger
}

func NewAccountRepository(db *mongo.Database, logger *logrus.Logger) *AccountRepository {
	return &AccountRepository{
		collection: db.Collection("accounts"),
		logger:     logger,
	}
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	account.CreatedAt = time.Now()
	account.LastModifiedAt = account.CreatedAt

	result, err := r.collection.InsertOne(ctx, account)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	account.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	var account models.Account
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	return &account, nil
}

func (r *AccountRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	var account models.Account
	err := r.collection.FindOne(ctx, bson.M{"account_number": accountNumber}).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	return &account, nil
}

func (r *AccountRepository) FindAll(ctx context.Context) ([]*models.Account, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var accounts []*models.Account
	for cursor.Next(ctx) {
		var account models.Account
		if err := cursor.Decode(&account); err != nil {
			return nil, fmt.Errorf("failed to decode account: %w", err)
		}
		accounts = append(accounts, &account)
	}

	return accounts, nil
}

func (r *AccountRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.AccountStatus) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"status":           status,
			"last_modified_at": time.Now(),
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}

	return nil
}

func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	return count, nil
}

func (r *AccountRepository) CreateIndex(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "account_number", Value: 1}},
			Options: options.Index().SetUnique(true),
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
