package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sunjava/telcodesk/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	dashboardCacheKey = "dashboard:stats"
	dashboardCacheTTL = time.Minute
)

var (
	ErrAccountNotFound = fmt.Errorf("account not found")
	ErrInvalidStatus   = fmt.Errorf("invalid status")
)

type AccountService struct {
	accounts     AccountStore
	lines        LineStore
	services     ServiceStore
	lineServices LineServiceStore
	cache        Cache
	metrics      *MetricsCollector
	logger       *logrus.Logger
}

func NewAccountService(accounts AccountStore, lines LineStore, services ServiceStore, lineServices LineServiceStore, cache Cache, metrics *MetricsCollector, logger *logrus.Logger) *AccountService {
	return &AccountService{
		accounts:     accounts,
		lines:        lines,
		services:     services,
		lineServices: lineServices,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
	}
}

// AccountWithCounts is one row of the account listing.
type AccountWithCounts struct {
	Account *models.Account         `json:"account"`
	Lines   models.LineStatusCounts `json:"lines"`
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]*AccountWithCounts, error) {
	accounts, err := s.accounts.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]*AccountWithCounts, 0, len(accounts))
	for _, account := range accounts {
		counts, err := s.lineCounts(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, &AccountWithCounts{Account: account, Lines: counts})
	}

	return rows, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// GetAccountByNumber looks an account up by its business account number, for
// callers that hold "ACC-10001" instead of the object ID.
func (s *AccountService) GetAccountByNumber(ctx context.Context, number string) (*models.Account, error) {
	account, err := s.accounts.FindByAccountNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// AccountSummary is the aggregate view used by the detail page and the
// assistant's summary tool.
type AccountSummary struct {
	Account            *models.Account         `json:"account"`
	Lines              models.LineStatusCounts `json:"lines"`
	ActiveServices     int                     `json:"active_services"`
	MonthlyServiceCost float64                 `json:"monthly_service_cost"`
}

func (s *AccountService) GetSummary(ctx context.Context, id primitive.ObjectID) (*AccountSummary, error) {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	counts, err := s.lineCounts(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	summary := &AccountSummary{Account: account, Lines: counts}

	lines, err := s.lines.FindByAccount(ctx, account.ID, "")
	if err != nil {
		return nil, err
	}
	lineIDs := make([]primitive.ObjectID, 0, len(lines))
	for _, line := range lines {
		lineIDs = append(lineIDs, line.ID)
	}

	subs, err := s.lineServices.FindByLines(ctx, lineIDs, models.LineServiceStatusActive)
	if err != nil {
		return nil, err
	}
	summary.ActiveServices = len(subs)
	for _, sub := range subs {
		summary.MonthlyServiceCost += sub.TotalAmount
	}

	return summary, nil
}

// StatusChangeResult reports an account status change and its cascade.
type StatusChangeResult struct {
	Account        *models.Account         `json:"account"`
	CancelledLines int64                   `json:"cancelled_lines"`
	Lines          models.LineStatusCounts `json:"lines"`
}

// SetAccountStatus moves the account to ACTIVE or INACTIVE. Deactivation
// cancels every line on the account, whatever state each line is in.
// Reactivating the account does not bring lines back.
func (s *AccountService) SetAccountStatus(ctx context.Context, id primitive.ObjectID, status models.AccountStatus) (*StatusChangeResult, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	account.Status = status
	account.LastModifiedAt = time.Now()

	result := &StatusChangeResult{Account: account}
	if status == models.AccountStatusInactive {
		cancelled, err := s.lines.CancelByAccount(ctx, id, time.Now())
		if err != nil {
			return nil, err
		}
		result.CancelledLines = cancelled
	}

	counts, err := s.lineCounts(ctx, id)
	if err != nil {
		return nil, err
	}
	result.Lines = counts

	s.invalidateDashboard(ctx)
	s.logger.WithFields(logrus.Fields{
		"account_id":      id.Hex(),
		"status":          status,
		"cancelled_lines": result.CancelledLines,
	}).Info("Account status changed")

	return result, nil
}

// DashboardStats is the cached landing-page aggregate.
type DashboardStats struct {
	TotalAccounts      int64 `json:"total_accounts"`
	TotalLines         int64 `json:"total_lines"`
	ActiveLines        int64 `json:"active_lines"`
	SuspendedLines     int64 `json:"suspended_lines"`
	CancelledLines     int64 `json:"cancelled_lines"`
	CatalogServices    int64 `json:"catalog_services"`
	RecentSubscription int64 `json:"subscriptions_last_30_days"`
}

func (s *AccountService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	if s.cache != nil {
		var cached DashboardStats
		if err := s.cache.GetJSON(ctx, dashboardCacheKey, &cached); err == nil && cached.TotalAccounts > 0 {
			return &cached, nil
		}
	}

	stats := &DashboardStats{}
	var err error

	if stats.TotalAccounts, err = s.accounts.Count(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveLines, err = s.lines.CountByStatus(ctx, models.LineStatusActive); err != nil {
		return nil, err
	}
	if stats.SuspendedLines, err = s.lines.CountByStatus(ctx, models.LineStatusSuspended); err != nil {
		return nil, err
	}
	if stats.CancelledLines, err = s.lines.CountByStatus(ctx, models.LineStatusCancelled); err != nil {
		return nil, err
	}
	stats.TotalLines = stats.ActiveLines + stats.SuspendedLines + stats.CancelledLines
	if stats.CatalogServices, err = s.services.Count(ctx); err != nil {
		return nil, err
	}
	if stats.RecentSubscription, err = s.lineServices.CountCreatedSince(ctx, time.Now().AddDate(0, 0, -30)); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, stats, dashboardCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache dashboard stats")
		}
	}

	return stats, nil
}

func (s *AccountService) lineCounts(ctx context.Context, accountID primitive.ObjectID) (models.LineStatusCounts, error) {
	var counts models.LineStatusCounts
	var err error

	if counts.Active, err = s.lines.CountByAccountAndStatus(ctx, accountID, models.LineStatusActive); err != nil {
		return counts, err
	}
	if counts.Suspended, err = s.lines.CountByAccountAndStatus(ctx, accountID, models.LineStatusSuspended); err != nil {
		return counts, err
	}
	if counts.Cancelled, err = s.lines.CountByAccountAndStatus(ctx, accountID, models.LineStatusCancelled); err != nil {
		return counts, err
	}
	counts.Total = counts.Active + counts.Suspended + counts.Cancelled

	return counts, nil
}

func (s *AccountService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, dashboardCacheKey); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate dashboard cache")
	}
}
