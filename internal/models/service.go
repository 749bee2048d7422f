package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Service struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	ServiceType     ServiceType        `bson:"service_type" json:"service_type"`
	Description     string             `bson:"description" json:"description"`
	Price           float64            `bson:"price" json:"price"`
	DurationDays    int                `bson:"duration_days" json:"duration_days"`
	DataAllowanceMB *int               `bson:"data_allowance_mb,omitempty" json:"data_allowance_mb,omitempty"`
	Features        []string           `bson:"features" json:"features"`
	IsActive        bool               `bson:"is_active" json:"is_active"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

type ServiceType string

const (
	ServiceTypeInternationalPass ServiceType = "INTERNATIONAL_PASS"
	ServiceTypeDataAddon         ServiceType = "DATA_ADDON"
	ServiceTypeCallingAddon      ServiceType = "CALLING_ADDON"
)
