package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sunjava/telcodesk/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	serviceTaxRate       = 0.08
	defaultPaymentMethod = "CREDIT_CARD"
)

var ErrServiceNotFound = fmt.Errorf("service not found")

// SubscriptionService attaches catalog services to lines and reads back the
// per-line subscription history.
type SubscriptionService struct {
	lines        LineStore
	lineServices LineServiceStore
	catalog      *CatalogService
	metrics      *MetricsCollector
	logger       *logrus.Logger
}

func NewSubscriptionService(lines LineStore, lineServices LineServiceStore, catalog *CatalogService, metrics *MetricsCollector, logger *logrus.Logger) *SubscriptionService {
	return &SubscriptionService{
		lines:        lines,
		lineServices: lineServices,
		catalog:      catalog,
		metrics:      metrics,
		logger:       logger,
	}
}

// AddServiceResult reports one add-service call. TotalCost covers only the
// lines that actually got a new subscription.
type AddServiceResult struct {
	Service      *models.Service `json:"service"`
	AddedLines   []*models.Line  `json:"added_lines"`
	SkippedLines []*models.Line  `json:"skipped_lines"`
	TotalCost    float64         `json:"total_cost"`
}

// AddServiceToLines subscribes the lines matching the identifiers to the
// service named by serviceQuery. Lines that already hold a pending or active
// subscription for that service are skipped, not treated as an error. An
// empty paymentMethod charges the account's card on file.
func (s *SubscriptionService) AddServiceToLines(ctx context.Context, accountID primitive.ObjectID, serviceQuery string, identifiers []string, paymentMethod string) (*AddServiceResult, error) {
	if paymentMethod == "" {
		paymentMethod = defaultPaymentMethod
	}

	svc, err := s.catalog.Match(ctx, serviceQuery)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}

	accountLines, err := s.lines.FindByAccount(ctx, accountID, "")
	if err != nil {
		return nil, err
	}

	resolved := ResolveLines(accountLines, identifiers)
	result := &AddServiceResult{Service: svc}

	now := time.Now()
	for _, line := range resolved {
		exists, err := s.lineServices.HasOpenSubscription(ctx, line.ID, svc.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			result.SkippedLines = append(result.SkippedLines, line)
			continue
		}

		tax := svc.Price * serviceTaxRate
		expires := now.AddDate(0, 0, svc.DurationDays)
		ls := &models.LineService{
			LineID:        line.ID,
			ServiceID:     svc.ID,
			Status:        models.LineServiceStatusActive,
			ActivatedAt:   &now,
			ExpiresAt:     &expires,
			AmountPaid:    svc.Price,
			TaxAmount:     tax,
			TotalAmount:   svc.Price + tax,
			PaymentMethod: paymentMethod,
			TransactionID: newTransactionID(),
		}
		if err := s.lineServices.Create(ctx, ls); err != nil {
			return nil, err
		}

		result.AddedLines = append(result.AddedLines, line)
		result.TotalCost += ls.TotalAmount
		if s.metrics != nil {
			s.metrics.RecordServiceAddition(string(svc.ServiceType))
		}
	}

	s.logger.WithFields(logrus.Fields{
		"service": svc.Name,
		"added":   len(result.AddedLines),
		"skipped": len(result.SkippedLines),
	}).Info("Added service to lines")

	return result, nil
}

// LineSubscription pairs a subscription row with its resolved catalog entry.
type LineSubscription struct {
	Subscription *models.LineService      `json:"subscription"`
	Service      *models.Service          `json:"service,omitempty"`
	Status       models.LineServiceStatus `json:"status"`
}

// ListForLine returns the line's subscriptions newest first, with expiry
// applied at read time.
func (s *SubscriptionService) ListForLine(ctx context.Context, lineID primitive.ObjectID) ([]*LineSubscription, error) {
	items, err := s.lineServices.FindByLine(ctx, lineID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	subs := make([]*LineSubscription, 0, len(items))
	for _, item := range items {
		svc, err := s.catalog.services.FindByID(ctx, item.ServiceID)
		if err != nil {
			return nil, err
		}
		subs = append(subs, &LineSubscription{
			Subscription: item,
			Service:      svc,
			Status:       item.EffectiveStatus(now),
		})
	}

	return subs, nil
}

func newTransactionID() string {
	return strings.ToUpper(uuid.New().String()[:8])
}
