package domain

import (
	"fmt"
	"strings"
	"time"
)

// VehicleType is the vehicle category a slot is built for
type VehicleType string

const (
	VehicleCar     VehicleType = "car"
	VehicleBike    VehicleType = "bike"
	VehicleBicycle VehicleType = "bicycle"
	VehicleTruck   VehicleType = "truck"
)

// VehicleTypes lists all supported categories
var VehicleTypes = []VehicleType{VehicleCar, VehicleBike, VehicleBicycle, VehicleTruck}

// ParseVehicleType validates a vehicle type coming from the outside
func ParseVehicleType(s string) (VehicleType, error) {
	v := VehicleType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range VehicleTypes {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown vehicle type %q", s)
}

// ParkingSlot is one physical space of a vehicle type within a parking area.
// It has no stored status: occupancy is derived from its reservations (see SlotOccupancy).
type ParkingSlot struct {
	ID            int64
	ParkingAreaID int64
	VehicleType   VehicleType
	SlotNumber    int
	PricePerHour  float64
	IsActive      bool
	IsDeleted     bool

	// ReservationIDs ordered by creation, append/remove only
	ReservationIDs []int64

	// Version is bumped on every reservation change touching the slot
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBookable returns true if the slot currently accepts bookings
func (s *ParkingSlot) IsBookable() bool {
	return s.IsActive && !s.IsDeleted
}
