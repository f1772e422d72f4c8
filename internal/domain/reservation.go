package domain

import (
	"slices"
	"strings"
	"time"
)

// ReservationStatus lifecycle status of a reservation
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// ReservationType how the reservation was created
type ReservationType string

const (
	ReservationPreBooking ReservationType = "pre_booking"
	ReservationOnSpot     ReservationType = "on_spot"
)

// PaymentStatus settlement state of a reservation
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Reservation of a parking slot. Never deleted: completed and cancelled are terminal.
type Reservation struct {
	ID            int64
	ParkingAreaID int64
	SlotID        int64
	VehicleType   VehicleType
	VehicleNumber string
	CustomerID    *int64

	// PerHourRate is a snapshot of the slot price taken at creation
	PerHourRate float64

	Status           ReservationStatus
	IsParked         bool
	StartDateAndTime time.Time
	EndDateAndTime   *time.Time
	PaymentStatus    PaymentStatus
	Type             ReservationType
	PaymentIDs       []int64

	CancellationReason *string
	CompletedAt        *time.Time
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal returns true for completed and cancelled reservations
func (r *Reservation) IsTerminal() bool {
	return slices.Contains(TerminalStatuses, r.Status)
}

// CanBeCancelled returns true while the vehicle has not arrived
func (r *Reservation) CanBeCancelled() bool {
	return !r.IsTerminal() && !r.IsParked
}

// CanBeReassigned returns true if the reservation may move to another slot
func (r *Reservation) CanBeReassigned() bool {
	return !r.IsTerminal() && !r.IsParked
}

// Window returns the time window the reservation asks for
func (r *Reservation) Window() Window {
	return Window{Start: r.StartDateAndTime, End: r.EndDateAndTime}
}

// NormalizeVehicleNumber upper-cases and strips separators so "dhaka-ga 11 2233" and
// "DHAKAGA112233" refer to the same vehicle
func NormalizeVehicleNumber(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if r == ' ' || r == '-' || r == '_' || r == '.' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ReservationFilter filter for listing reservations of a parking area
type ReservationFilter struct {
	ParkingAreaID   int64
	SlotID          *int64
	Status          *ReservationStatus
	From            *time.Time
	To              *time.Time
	IncludeInactive bool // включать завершённые и отменённые
}
