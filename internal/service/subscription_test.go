package service

import (
	"context"
	"testing"
	"time"

	"github.com/sunjava/telcodesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type subscriptionFixture struct {
	svc          *SubscriptionService
	lineStore    *fakeLineStore
	lsStore      *fakeLineServiceStore
	serviceStore *fakeServiceStore
	accountID    primitive.ObjectID
}

func newSubscriptionFixture(lines ...*models.Line) *subscriptionFixture {
	accountID := primitive.NewObjectID()
	lineStore := &fakeLineStore{}
	for _, l := range lines {
		if l.ID.IsZero() {
			l.ID = primitive.NewObjectID()
		}
		l.AccountID = accountID
		lineStore.lines = append(lineStore.lines, l)
	}

	serviceStore := &fakeServiceStore{services: testCatalogServices()}
	lsStore := &fakeLineServiceStore{}
	catalog := NewCatalogService(serviceStore, nil, testLogger())

	return &subscriptionFixture{
		svc:          NewSubscriptionService(lineStore, lsStore, catalog, nil, testLogger()),
		lineStore:    lineStore,
		lsStore:      lsStore,
		serviceStore: serviceStore,
		accountID:    accountID,
	}
}

func TestAddServiceToLines(t *testing.T) {
	f := newSubscriptionFixture(
		&models.Line{LineName: "Line 1", EmployeeName: "John Smith", Status: models.LineStatusActive},
		&models.Line{LineName: "Line 2", EmployeeName: "Jane Doe", Status: models.LineStatusActive},
	)

	result, err := f.svc.AddServiceToLines(context.Background(), f.accountID, "10_day", nil, "")
	require.NoError(t, err)

	assert.Equal(t, "10-Day International Pass", result.Service.Name)
	assert.Len(t, result.AddedLines, 2)
	assert.Empty(t, result.SkippedLines)
	assert.InDelta(t, 2*35.00*1.08, result.TotalCost, 0.001)

	require.Len(t, f.lsStore.items, 2)
	sub := f.lsStore.items[0]
	assert.Equal(t, models.LineServiceStatusActive, sub.Status)
	assert.InDelta(t, 35.00, sub.AmountPaid, 0.001)
	assert.InDelta(t, 2.80, sub.TaxAmount, 0.001)
	assert.InDelta(t, 37.80, sub.TotalAmount, 0.001)
	assert.Len(t, sub.TransactionID, 8)

	require.NotNil(t, sub.ActivatedAt)
	require.NotNil(t, sub.ExpiresAt)
	assert.WithinDuration(t, sub.ActivatedAt.AddDate(0, 0, 10), *sub.ExpiresAt, time.Second)

	// No payment method given, so the card on file is charged.
	assert.Equal(t, "CREDIT_CARD", sub.PaymentMethod)
}

func TestAddServiceCustomPaymentMethod(t *testing.T) {
	f := newSubscriptionFixture(
		&models.Line{LineName: "Line 1", Status: models.LineStatusActive},
	)

	_, err := f.svc.AddServiceToLines(context.Background(), f.accountID, "1_day", nil, "INVOICE")
	require.NoError(t, err)

	require.Len(t, f.lsStore.items, 1)
	assert.Equal(t, "INVOICE", f.lsStore.items[0].PaymentMethod)
}

func TestAddServiceSkipsExistingSubscription(t *testing.T) {
	f := newSubscriptionFixture(
		&models.Line{LineName: "Line 1", Status: models.LineStatusActive},
		&models.Line{LineName: "Line 2", Status: models.LineStatusActive},
	)

	first, err := f.svc.AddServiceToLines(context.Background(), f.accountID, "1_day", []string{"Line 1"}, "")
	require.NoError(t, err)
	require.Len(t, first.AddedLines, 1)

	second, err := f.svc.AddServiceToLines(context.Background(), f.accountID, "1_day", nil, "")
	require.NoError(t, err)

	// Line 1 already holds the pass; only Line 2 is charged.
	assert.Len(t, second.AddedLines, 1)
	assert.Len(t, second.SkippedLines, 1)
	assert.Equal(t, "Line 2", second.AddedLines[0].LineName)
	assert.InDelta(t, 1.08, second.TotalCost, 0.001)
}

func TestAddServiceUnknownService(t *testing.T) {
	f := newSubscriptionFixture(
		&models.Line{LineName: "Line 1", Status: models.LineStatusActive},
	)

	_, err := f.svc.AddServiceToLines(context.Background(), f.accountID, "unlimited music", nil, "")
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestAddServiceNoMatchingLines(t *testing.T) {
	f := newSubscriptionFixture(
		&models.Line{LineName: "Line 1", Status: models.LineStatusActive},
	)

	result, err := f.svc.AddServiceToLines(context.Background(), f.accountID, "1_day", []string{"nobody"}, "")
	require.NoError(t, err)
	assert.Empty(t, result.AddedLines)
	assert.Empty(t, result.SkippedLines)
	assert.Zero(t, result.TotalCost)
}

func TestListForLineAppliesExpiry(t *testing.T) {
	f := newSubscriptionFixture(
		&models.Line{LineName: "Line 1", Status: models.LineStatusActive},
	)
	line := f.lineStore.lines[0]
	svc := f.serviceStore.services[0]

	past := time.Now().AddDate(0, 0, -2)
	expired := past.AddDate(0, 0, 1)
	f.lsStore.items = append(f.lsStore.items, &models.LineService{
		ID:          primitive.NewObjectID(),
		LineID:      line.ID,
		ServiceID:   svc.ID,
		Status:      models.LineServiceStatusActive,
		ActivatedAt: &past,
		ExpiresAt:   &expired,
	})

	subs, err := f.svc.ListForLine(context.Background(), line.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)

	// Stored status is untouched; only the view reports EXPIRED.
	assert.Equal(t, models.LineServiceStatusExpired, subs[0].Status)
	assert.Equal(t, models.LineServiceStatusActive, subs[0].Subscription.Status)
	require.NotNil(t, subs[0].Service)
	assert.Equal(t, svc.Name, subs[0].Service.Name)
}
