package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LineService struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LineID        primitive.ObjectID `bson:"line_id" json:"line_id"`
	ServiceID     primitive.ObjectID `bson:"service_id" json:"service_id"`
	Status        LineServiceStatus  `bson:"status" json:"status"`
	ActivatedAt   *time.Time         `bson:"activated_at,omitempty" json:"activated_at,omitempty"`
	ExpiresAt     *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	AmountPaid    float64            `bson:"amount_paid" json:"amount_paid"`
	TaxAmount     float64            `bson:"tax_amount" json:"tax_amount"`
	TotalAmount   float64            `bson:"total_amount" json:"total_amount"`
	PaymentMethod string             `bson:"payment_method" json:"payment_method"`
	TransactionID string             `bson:"transaction_id" json:"transaction_id"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

type LineServiceStatus string

const (
	LineServiceStatusPending   LineServiceStatus = "PENDING"
	LineServiceStatusActive    LineServiceStatus = "ACTIVE"
	LineServiceStatusExpired   LineServiceStatus = "EXPIRED"
	LineServiceStatusCancelled LineServiceStatus = "CANCELLED"
)

// EffectiveStatus reports the status with expiry applied at read time.
// Expiry is never written back by a background job.
func (ls *LineService) EffectiveStatus(now time.Time) LineServiceStatus {
	if ls.Status == LineServiceStatusActive && ls.ExpiresAt != nil && ls.ExpiresAt.Before(now) {
		return LineServiceStatusExpired
	}
	return ls.Status
}
