package domain

import "time"

// Occupancy is the derived state a reservation imposes on its slot at a moment
type Occupancy string

const (
	OccupancyFree         Occupancy = "free"
	OccupancyPendingHold  Occupancy = "pending_hold"
	OccupancyArrivalGrace Occupancy = "arrival_grace"
	OccupancyOccupied     Occupancy = "occupied"
	OccupancyCompleted    Occupancy = "completed"
)

// rank порядок приоритета при сведении состояний брони в состояние места
func (o Occupancy) rank() int {
	switch o {
	case OccupancyOccupied:
		return 3
	case OccupancyArrivalGrace:
		return 2
	case OccupancyPendingHold:
		return 1
	default:
		return 0
	}
}

// Window is a requested parking window. End is optional (open-ended stay).
type Window struct {
	Start time.Time
	End   *time.Time
}

// Occupancy classifies the reservation at now.
//
//   - parked confirmed reservation: occupied until explicit checkout, overstay included
//   - confirmed, not parked: holds the slot until start + ArrivalGrace
//   - pending, not parked: holds the slot until createdAt + PendingHold
//   - completed: completed; cancelled and expired holds: free
func (r *Reservation) Occupancy(now time.Time, p Policy) Occupancy {
	switch r.Status {
	case ReservationCompleted:
		return OccupancyCompleted
	case ReservationCancelled:
		return OccupancyFree
	}

	if r.IsParked {
		return OccupancyOccupied
	}

	switch r.Status {
	case ReservationConfirmed:
		if !r.StartDateAndTime.Before(now.Add(-p.ArrivalGrace)) {
			return OccupancyArrivalGrace
		}
	case ReservationPending:
		if !r.CreatedAt.Before(now.Add(-p.PendingHold)) {
			return OccupancyPendingHold
		}
	}
	return OccupancyFree
}

// HoldsUntil returns the moment the reservation stops holding the slot, nil while occupied without end
func (r *Reservation) HoldsUntil(now time.Time, p Policy) *time.Time {
	var until time.Time
	switch r.Occupancy(now, p) {
	case OccupancyOccupied:
		return r.EndDateAndTime
	case OccupancyArrivalGrace:
		until = r.StartDateAndTime.Add(p.ArrivalGrace)
	case OccupancyPendingHold:
		until = r.CreatedAt.Add(p.PendingHold)
	default:
		return nil
	}
	return &until
}

// IsBlocking reports whether the reservation makes its slot unavailable for window at now.
// A nil window means "any request": every holding reservation blocks.
//
// A parked vehicle always blocks. A held reservation (arrival grace or pending hold) lets a
// request through only when the two windows are separated by at least BookingBuffer:
// the request ends no later than start - buffer, or starts no earlier than end + buffer.
// Without a declared end the reservation is treated as open-ended.
func (r *Reservation) IsBlocking(now time.Time, window *Window, p Policy) bool {
	switch r.Occupancy(now, p) {
	case OccupancyOccupied:
		return true
	case OccupancyArrivalGrace, OccupancyPendingHold:
		if window == nil {
			return true
		}
		return !r.separatedFrom(*window, p.BookingBuffer)
	default:
		return false
	}
}

func (r *Reservation) separatedFrom(w Window, buffer time.Duration) bool {
	if w.End != nil && !w.End.After(r.StartDateAndTime.Add(-buffer)) {
		return true
	}
	if r.EndDateAndTime != nil && !w.Start.Before(r.EndDateAndTime.Add(buffer)) {
		return true
	}
	return false
}

// SlotState is the live state of a slot derived from all of its reservations
type SlotState struct {
	Occupancy     Occupancy
	ReservationID *int64
	Until         *time.Time
}

// IsFree returns true if nothing holds the slot
func (s SlotState) IsFree() bool {
	return s.Occupancy == OccupancyFree
}

// SlotOccupancy folds the reservations of one slot into the strongest state:
// occupied > arrival_grace > pending_hold > free. Completed reservations leave the slot free.
// Ties keep the earliest reservation in list order.
func SlotOccupancy(reservations []Reservation, now time.Time, p Policy) SlotState {
	state := SlotState{Occupancy: OccupancyFree}
	for i := range reservations {
		r := &reservations[i]
		occ := r.Occupancy(now, p)
		if occ.rank() <= state.Occupancy.rank() {
			continue
		}
		id := r.ID
		state = SlotState{
			Occupancy:     occ,
			ReservationID: &id,
			Until:         r.HoldsUntil(now, p),
		}
	}
	return state
}

// FirstBlocking returns the first reservation blocking window, skipping excludeID (0 skips nothing)
func FirstBlocking(reservations []Reservation, now time.Time, window *Window, p Policy, excludeID int64) *Reservation {
	for i := range reservations {
		r := &reservations[i]
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		if r.IsBlocking(now, window, p) {
			return r
		}
	}
	return nil
}

// HasBlocking reports whether any reservation except excludeID blocks window
func HasBlocking(reservations []Reservation, now time.Time, window *Window, p Policy, excludeID int64) bool {
	return FirstBlocking(reservations, now, window, p, excludeID) != nil
}

// IsSlotAvailable is true when the slot has no reservations or none of them blocks window
func IsSlotAvailable(reservations []Reservation, now time.Time, window *Window, p Policy) bool {
	return !HasBlocking(reservations, now, window, p, 0)
}
