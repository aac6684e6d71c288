package models

import "github.com/google/uuid"

// Identifiers are distinct string types so a braider id can never be passed where
// a service or slot id is expected.
type (
	BraiderID      string
	ServiceID      string
	AvailabilityID string
	BookingID      string
)

func NewServiceID() ServiceID           { return ServiceID(uuid.New().String()) }
func NewAvailabilityID() AvailabilityID { return AvailabilityID(uuid.New().String()) }
func NewBookingID() BookingID           { return BookingID(uuid.New().String()) }

func (id BraiderID) String() string      { return string(id) }
func (id ServiceID) String() string      { return string(id) }
func (id AvailabilityID) String() string { return string(id) }
func (id BookingID) String() string      { return string(id) }
