package models

import "time"

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// ActiveBookingStatuses are the statuses that hold a (braider, date, time) tuple.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusInProgress,
	BookingStatusCompleted,
}

// BookingType says where the appointment happens.
type BookingType string

const (
	BookingTypeDomicilio BookingType = "domicilio" // at the client's home
	BookingTypeTrancista BookingType = "trancista" // at the braider's location
)

// Booking is an appointment. Rows are never deleted, only status-transitioned.
// Date is YYYY-MM-DD and Time is HH:MM.
type Booking struct {
	ID             BookingID       `gorm:"type:varchar(64);primaryKey" bson:"id" json:"id"`
	Reference      string          `gorm:"type:varchar(16);not null" bson:"reference" json:"reference"`
	BraiderID      BraiderID       `gorm:"type:varchar(64);not null;index" bson:"braider_id" json:"braiderId"`
	ServiceID      ServiceID       `gorm:"type:varchar(64);not null" bson:"service_id" json:"serviceId"`
	Date           string          `gorm:"column:booking_date;type:varchar(10);not null" bson:"date" json:"date"`
	Time           string          `gorm:"column:booking_time;type:varchar(5);not null" bson:"time" json:"time"`
	ClientName     string          `gorm:"type:varchar(200);not null" bson:"client_name" json:"clientName"`
	ClientEmail    string          `gorm:"type:varchar(320);not null" bson:"client_email" json:"clientEmail"`
	ClientPhone    string          `gorm:"type:varchar(32);not null" bson:"client_phone" json:"clientPhone"`
	ClientUserID   *string         `gorm:"type:varchar(64)" bson:"client_user_id,omitempty" json:"clientUserId,omitempty"`
	BookingType    BookingType     `gorm:"type:varchar(16);not null" bson:"booking_type" json:"bookingType"`
	ClientAddress  *string         `gorm:"type:text" bson:"client_address,omitempty" json:"clientAddress,omitempty"`
	Notes          *string         `gorm:"type:text" bson:"notes,omitempty" json:"notes,omitempty"`
	Status         BookingStatus   `gorm:"type:varchar(16);not null;index" bson:"status" json:"status"`
	TotalAmount    float64         `gorm:"not null" bson:"total_amount" json:"totalAmount"`
	AvailabilityID *AvailabilityID `gorm:"type:varchar(64)" bson:"availability_id,omitempty" json:"availabilityId,omitempty"`
	IdempotencyKey *string         `gorm:"type:varchar(128)" bson:"idempotency_key,omitempty" json:"-"`
	CreatedAt      time.Time       `gorm:"not null" bson:"created_at" json:"createdAt"`
}

func (Booking) TableName() string { return "bookings" }

// ScheduledAt is the appointment start in loc.
func (b Booking) ScheduledAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", b.Date+" "+b.Time, loc)
}
