package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Account struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AccountNumber   string             `bson:"account_number" json:"account_number"`
	OwnerName       string             `bson:"owner_name" json:"owner_name"`
	OwnerEmail      string             `bson:"owner_email" json:"owner_email"`
	Status          AccountStatus      `bson:"status" json:"status"`
	AccountType     AccountType        `bson:"account_type" json:"account_type"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	LastModifiedAt  time.Time          `bson:"last_modified_at" json:"last_modified_at"`
	LastPaymentDate *time.Time         `bson:"last_payment_date,omitempty" json:"last_payment_date,omitempty"`
	PaymentDueDate  *time.Time         `bson:"payment_due_date,omitempty" json:"payment_due_date,omitempty"`
}

type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusInactive AccountStatus = "INACTIVE"
)

func (s AccountStatus) Valid() bool {
	return s == AccountStatusActive || s == AccountStatusInactive
}

type AccountType string

const (
	AccountTypeStandard AccountType = "STANDARD"
	AccountTypePremium  AccountType = "PREMIUM"
	AccountTypeBusiness AccountType = "BUSINESS"
)

// LineStatusCounts is the per-account breakdown returned by account listings
// and status-change responses.
type LineStatusCounts struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Suspended int64 `json:"suspended"`
	Cancelled int64 `json:"cancelled"`
}
