package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Line struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AccountID      primitive.ObjectID `bson:"account_id" json:"account_id"`
	LineName       string             `bson:"line_name" json:"line_name"`
	MSDN           string             `bson:"msdn" json:"msdn"`
	EmployeeName   string             `bson:"employee_name" json:"employee_name"`
	EmployeeNumber string             `bson:"employee_number" json:"employee_number"`
	Status         LineStatus         `bson:"status" json:"status"`
	AddedAt        time.Time          `bson:"added_at" json:"added_at"`
	CancelledAt    *time.Time         `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	PaymentDueDate *time.Time         `bson:"payment_due_date,omitempty" json:"payment_due_date,omitempty"`

	DeviceModel     string  `bson:"device_model" json:"device_model"`
	DeviceColor     string  `bson:"device_color" json:"device_color"`
	DeviceStorage   string  `bson:"device_storage" json:"device_storage"`
	DevicePrice     float64 `bson:"device_price" json:"device_price"`
	PlanName        string  `bson:"plan_name" json:"plan_name"`
	PlanPrice       float64 `bson:"plan_price" json:"plan_price"`
	PlanDataLimit   string  `bson:"plan_data_limit" json:"plan_data_limit"`
	ProtectionName  string  `bson:"protection_name" json:"protection_name"`
	ProtectionPrice float64 `bson:"protection_price" json:"protection_price"`
	TradeInValue    float64 `bson:"trade_in_value" json:"trade_in_value"`
	TotalMonthly    float64 `bson:"total_monthly" json:"total_monthly"`
}

type LineStatus string

const (
	LineStatusActive    LineStatus = "ACTIVE"
	LineStatusSuspended LineStatus = "SUSPENDED"
	LineStatusCancelled LineStatus = "CANCELLED"
)

// LineOperation is a requested status transition on a line.
type LineOperation string

const (
	LineOpSuspend    LineOperation = "SUSPEND"
	LineOpRestore    LineOperation = "RESTORE"
	LineOpReactivate LineOperation = "REACTIVATE"
	LineOpCancel     LineOperation = "CANCEL"
)

// EligibleStatus returns the only status a line may be in for the operation
// to apply. CANCEL is legal from any status and returns ok=false.
func (op LineOperation) EligibleStatus() (LineStatus, bool) {
	switch op {
	case LineOpSuspend:
		return LineStatusActive, true
	case LineOpRestore:
		return LineStatusSuspended, true
	case LineOpReactivate:
		return LineStatusCancelled, true
	default:
		return "", false
	}
}

// TargetStatus returns the status the operation transitions a line into.
func (op LineOperation) TargetStatus() LineStatus {
	switch op {
	case LineOpSuspend:
		return LineStatusSuspended
	case LineOpCancel:
		return LineStatusCancelled
	default:
		return LineStatusActive
	}
}
