package service

import (
	"context"
	"time"

	"github.com/sunjava/telcodesk/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store interfaces mirror the mongo repositories so the services can be
// exercised against in-memory fakes.

type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	FindAll(ctx context.Context) ([]*models.Account, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.AccountStatus) error
	Count(ctx context.Context) (int64, error)
}

type LineStore interface {
	Create(ctx context.Context, line *models.Line) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Line, error)
	FindByAccount(ctx context.Context, accountID primitive.ObjectID, status models.LineStatus) ([]*models.Line, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.LineStatus) error
	MarkCancelled(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Reactivate(ctx context.Context, id primitive.ObjectID) error
	CancelByAccount(ctx context.Context, accountID primitive.ObjectID, at time.Time) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	CountByAccount(ctx context.Context, accountID primitive.ObjectID) (int64, error)
	CountByAccountAndStatus(ctx context.Context, accountID primitive.ObjectID, status models.LineStatus) (int64, error)
	CountByStatus(ctx context.Context, status models.LineStatus) (int64, error)
}

type ServiceStore interface {
	Create(ctx context.Context, service *models.Service) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Service, error)
	FindByName(ctx context.Context, name string) (*models.Service, error)
	FindActive(ctx context.Context) ([]*models.Service, error)
	Count(ctx context.Context) (int64, error)
}

type LineServiceStore interface {
	Create(ctx context.Context, ls *models.LineService) error
	FindByLine(ctx context.Context, lineID primitive.ObjectID) ([]*models.LineService, error)
	FindByLines(ctx context.Context, lineIDs []primitive.ObjectID, statuses ...models.LineServiceStatus) ([]*models.LineService, error)
	HasOpenSubscription(ctx context.Context, lineID, serviceID primitive.ObjectID) (bool, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// Cache is the subset of the redis cache used by the read-side services.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
