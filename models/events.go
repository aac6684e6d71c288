package models

// BookingEvent is what the realtime layer receives when a booking is created.
type BookingEvent struct {
	Type        string    `json:"type"` // "booking.created" or "booking.reminder"
	BookingID   BookingID `json:"bookingId"`
	Reference   string    `json:"reference,omitempty"`
	BraiderID   BraiderID `json:"braiderId"`
	ServiceID   ServiceID `json:"serviceId"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	ClientName  string    `json:"clientName"`
	BookingType string    `json:"bookingType"`
	TotalAmount float64   `json:"totalAmount"`
}

const (
	EventBookingCreated  = "booking.created"
	EventBookingReminder = "booking.reminder"
)
