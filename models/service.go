package models

import "time"

// Service is an offering in a braider's catalogue. A nil HomeServiceFee falls
// back to the configured default.
type Service struct {
	ID              ServiceID `gorm:"type:varchar(64);primaryKey" bson:"id" json:"id"`
	BraiderID       BraiderID `gorm:"type:varchar(64);not null;index" bson:"braider_id" json:"braiderId"`
	Name            string    `gorm:"type:varchar(200);not null" bson:"name" json:"name"`
	Price           float64   `gorm:"not null" bson:"price" json:"price"`
	HomeServiceFee  *float64  `bson:"home_service_fee,omitempty" json:"homeServiceFee,omitempty"`
	DurationMinutes int       `bson:"duration_minutes" json:"durationMinutes"`
	CreatedAt       time.Time `gorm:"not null" bson:"created_at" json:"createdAt"`
}

func (Service) TableName() string { return "services" }

// CreateServiceRequest is the payload used to add a service to a catalogue.
type CreateServiceRequest struct {
	Name            string   `json:"name" binding:"required,max=200"`
	Price           float64  `json:"price" binding:"gte=0"`
	HomeServiceFee  *float64 `json:"homeServiceFee" binding:"omitempty,gte=0"`
	DurationMinutes int      `json:"durationMinutes" binding:"gte=0"`
}
