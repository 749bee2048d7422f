package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sunjava/telcodesk/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrLineNotFound = fmt.Errorf("line not found")

// LineOpsService applies status transitions to lines and manages line
// creation and edits.
type LineOpsService struct {
	lines   LineStore
	metrics *MetricsCollector
	logger  *logrus.Logger
}

func NewLineOpsService(lines LineStore, metrics *MetricsCollector, logger *logrus.Logger) *LineOpsService {
	return &LineOpsService{
		lines:   lines,
		metrics: metrics,
		logger:  logger,
	}
}

// LineOpResult is the outcome for a single line in a bulk operation.
type LineOpResult struct {
	Line    *models.Line `json:"line"`
	Applied bool         `json:"applied"`
	Note    string       `json:"note"`
}

// BulkResult collects per-line outcomes. Lines are processed one at a time;
// a bulk call is not atomic and earlier transitions stand if a later one
// fails.
type BulkResult struct {
	Operation models.LineOperation `json:"operation"`
	Results   []LineOpResult       `json:"results"`
	Updated   int                  `json:"updated"`
	Skipped   int                  `json:"skipped"`
}

// LinesForOperation fetches the account lines an operation could apply to.
// Suspend only considers active lines, restore suspended ones, reactivate
// cancelled ones. Cancel considers everything.
func (s *LineOpsService) LinesForOperation(ctx context.Context, accountID primitive.ObjectID, op models.LineOperation) ([]*models.Line, error) {
	filter := models.LineStatus("")
	if eligible, ok := op.EligibleStatus(); ok {
		filter = eligible
	}
	return s.lines.FindByAccount(ctx, accountID, filter)
}

// LinesWithStatus lists account lines, optionally restricted to one status.
func (s *LineOpsService) LinesWithStatus(ctx context.Context, accountID primitive.ObjectID, status models.LineStatus) ([]*models.Line, error) {
	return s.lines.FindByAccount(ctx, accountID, status)
}

// Apply runs the operation over the given lines, skipping lines the
// transition is not legal for.
func (s *LineOpsService) Apply(ctx context.Context, lines []*models.Line, op models.LineOperation) (*BulkResult, error) {
	result := &BulkResult{Operation: op}

	for _, line := range lines {
		applied, note, err := s.applyOne(ctx, line, op)
		if err != nil {
			// One bad line must not sink the rest of the batch.
			s.logger.WithError(err).WithField("line_id", line.ID.Hex()).Error("Line update failed")
			result.Results = append(result.Results, LineOpResult{
				Line: line,
				Note: fmt.Sprintf("%s: update failed: %v", line.LineName, err),
			})
			result.Skipped++
			s.recordTransition(op, "error")
			continue
		}

		result.Results = append(result.Results, LineOpResult{Line: line, Applied: applied, Note: note})
		if applied {
			result.Updated++
			s.recordTransition(op, "applied")
		} else {
			result.Skipped++
			s.recordTransition(op, "skipped")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"operation": op,
		"updated":   result.Updated,
		"skipped":   result.Skipped,
	}).Info("Applied line operation")

	return result, nil
}

// BulkApply resolves identifiers against the operation's candidate lines and
// applies the transition to every match.
func (s *LineOpsService) BulkApply(ctx context.Context, accountID primitive.ObjectID, op models.LineOperation, identifiers []string) (*BulkResult, error) {
	candidates, err := s.LinesForOperation(ctx, accountID, op)
	if err != nil {
		return nil, err
	}

	return s.Apply(ctx, ResolveLines(candidates, identifiers), op)
}

func (s *LineOpsService) applyOne(ctx context.Context, line *models.Line, op models.LineOperation) (bool, string, error) {
	if eligible, ok := op.EligibleStatus(); ok && line.Status != eligible {
		return false, fmt.Sprintf("%s is %s, not %s", line.LineName, line.Status, eligible), nil
	}
	if op == models.LineOpCancel && line.Status == models.LineStatusCancelled {
		return false, fmt.Sprintf("%s is already cancelled", line.LineName), nil
	}

	var err error
	switch op {
	case models.LineOpCancel:
		now := time.Now()
		err = s.lines.MarkCancelled(ctx, line.ID, now)
		if err == nil {
			line.CancelledAt = &now
		}
	case models.LineOpReactivate:
		err = s.lines.Reactivate(ctx, line.ID)
		if err == nil {
			line.CancelledAt = nil
		}
	default:
		err = s.lines.UpdateStatus(ctx, line.ID, op.TargetStatus())
	}
	if err != nil {
		return false, "", err
	}

	line.Status = op.TargetStatus()
	return true, "", nil
}

// CreateLineInput carries the optional fields for a new line. Anything left
// empty is generated or defaulted.
type CreateLineInput struct {
	LineName        string
	EmployeeName    string
	AreaCode        string
	DeviceModel     string
	DeviceColor     string
	DeviceStorage   string
	DevicePrice     float64
	PlanName        string
	PlanPrice       float64
	PlanDataLimit   string
	ProtectionName  string
	ProtectionPrice float64
	TradeInValue    float64
	TotalMonthly    float64
}

// CreateLine adds a new active line to the account with a generated phone
// number and employee number, due on the last day of the current month.
func (s *LineOpsService) CreateLine(ctx context.Context, accountID primitive.ObjectID, input CreateLineInput) (*models.Line, error) {
	name := input.LineName
	if name == "" {
		count, err := s.lines.CountByAccount(ctx, accountID)
		if err != nil {
			return nil, err
		}
		name = fmt.Sprintf("Line %d", count+1)
	}

	area := input.AreaCode
	if area == "" {
		area = "555"
	}

	due := lastDayOfMonth(time.Now())
	line := &models.Line{
		AccountID:       accountID,
		LineName:        name,
		MSDN:            randomMSDN(area),
		EmployeeName:    input.EmployeeName,
		EmployeeNumber:  randomEmployeeNumber(),
		Status:          models.LineStatusActive,
		PaymentDueDate:  &due,
		DeviceModel:     input.DeviceModel,
		DeviceColor:     input.DeviceColor,
		DeviceStorage:   input.DeviceStorage,
		DevicePrice:     input.DevicePrice,
		PlanName:        input.PlanName,
		PlanPrice:       input.PlanPrice,
		PlanDataLimit:   input.PlanDataLimit,
		ProtectionName:  input.ProtectionName,
		ProtectionPrice: input.ProtectionPrice,
		TradeInValue:    input.TradeInValue,
		TotalMonthly:    input.TotalMonthly,
	}

	if err := s.lines.Create(ctx, line); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"account_id": accountID.Hex(),
		"line_name":  line.LineName,
		"msdn":       line.MSDN,
	}).Info("Created line")

	return line, nil
}

// MirrorLine creates a new line for newEmployeeName copying the source
// line's device, plan and protection setup, with a fresh phone number and
// employee number.
func (s *LineOpsService) MirrorLine(ctx context.Context, sourceID primitive.ObjectID, newEmployeeName, customName string) (*models.Line, error) {
	source, err := s.lines.FindByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, ErrLineNotFound
	}

	return s.CreateLine(ctx, source.AccountID, CreateLineInput{
		LineName:        customName,
		EmployeeName:    newEmployeeName,
		DeviceModel:     source.DeviceModel,
		DeviceColor:     source.DeviceColor,
		DeviceStorage:   source.DeviceStorage,
		DevicePrice:     source.DevicePrice,
		PlanName:        source.PlanName,
		PlanPrice:       source.PlanPrice,
		PlanDataLimit:   source.PlanDataLimit,
		ProtectionName:  source.ProtectionName,
		ProtectionPrice: source.ProtectionPrice,
		TradeInValue:    source.TradeInValue,
		TotalMonthly:    source.TotalMonthly,
	})
}

func (s *LineOpsService) GetLine(ctx context.Context, id primitive.ObjectID) (*models.Line, error) {
	line, err := s.lines.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, ErrLineNotFound
	}
	return line, nil
}

// UpdateLineInput carries partial edits; nil fields are left untouched.
type UpdateLineInput struct {
	LineName        *string
	EmployeeName    *string
	DeviceModel     *string
	DeviceColor     *string
	DeviceStorage   *string
	DevicePrice     *float64
	PlanName        *string
	PlanPrice       *float64
	PlanDataLimit   *string
	ProtectionName  *string
	ProtectionPrice *float64
	TradeInValue    *float64
	TotalMonthly    *float64
}

func (s *LineOpsService) UpdateLineDetails(ctx context.Context, id primitive.ObjectID, input UpdateLineInput) (*models.Line, error) {
	if _, err := s.GetLine(ctx, id); err != nil {
		return nil, err
	}

	fields := bson.M{}
	setString := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	setFloat := func(key string, v *float64) {
		if v != nil {
			fields[key] = *v
		}
	}

	setString("line_name", input.LineName)
	setString("employee_name", input.EmployeeName)
	setString("device_model", input.DeviceModel)
	setString("device_color", input.DeviceColor)
	setString("device_storage", input.DeviceStorage)
	setFloat("device_price", input.DevicePrice)
	setString("plan_name", input.PlanName)
	setFloat("plan_price", input.PlanPrice)
	setString("plan_data_limit", input.PlanDataLimit)
	setString("protection_name", input.ProtectionName)
	setFloat("protection_price", input.ProtectionPrice)
	setFloat("trade_in_value", input.TradeInValue)
	setFloat("total_monthly", input.TotalMonthly)

	if err := s.lines.Update(ctx, id, fields); err != nil {
		return nil, err
	}

	return s.GetLine(ctx, id)
}

func (s *LineOpsService) UpdatePaymentDate(ctx context.Context, id primitive.ObjectID, due time.Time) (*models.Line, error) {
	if _, err := s.GetLine(ctx, id); err != nil {
		return nil, err
	}

	if err := s.lines.Update(ctx, id, bson.M{"payment_due_date": due}); err != nil {
		return nil, err
	}

	return s.GetLine(ctx, id)
}

func (s *LineOpsService) recordTransition(op models.LineOperation, result string) {
	if s.metrics != nil {
		s.metrics.RecordLineTransition(string(op), result)
	}
}

func randomMSDN(area string) string {
	return fmt.Sprintf("+1-%s-%03d-%04d", area, rand.Intn(1000), rand.Intn(10000))
}

func randomEmployeeNumber() string {
	return fmt.Sprintf("EMP%d", 1000+rand.Intn(9000))
}

func lastDayOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location())
}
