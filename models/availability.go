package models

import "time"

// AvailabilitySlot is a window a braider has opened for booking.
// Date is YYYY-MM-DD, StartTime and EndTime are HH:MM.
// IsBooked only ever goes false -> true, and only through the reservation path.
type AvailabilitySlot struct {
	ID        AvailabilityID `gorm:"type:varchar(64);primaryKey" bson:"id" json:"id"`
	BraiderID BraiderID      `gorm:"type:varchar(64);not null;index:idx_availability_braider_date" bson:"braider_id" json:"braiderId"`
	Date      string         `gorm:"type:varchar(10);not null;index:idx_availability_braider_date" bson:"date" json:"date"`
	StartTime string         `gorm:"type:varchar(5);not null" bson:"start_time" json:"startTime"`
	EndTime   string         `gorm:"type:varchar(5);not null" bson:"end_time" json:"endTime"`
	IsBooked  bool           `gorm:"not null;default:false" bson:"is_booked" json:"is_booked"`
	CreatedAt time.Time      `gorm:"not null" bson:"created_at" json:"createdAt"`
}

func (AvailabilitySlot) TableName() string { return "braider_availability" }

// OpenSlotsRequest is the payload a braider sends to publish new slots.
type OpenSlotsRequest struct {
	Slots []OpenSlotInput `json:"slots" binding:"required,min=1,dive"`
}

type OpenSlotInput struct {
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" binding:"required,datetime=15:04"`
	EndTime   string `json:"endTime" binding:"required,datetime=15:04"`
}
