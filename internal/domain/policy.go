package domain

import "time"

// Policy holds the grace windows used by the conflict predicate
type Policy struct {
	ArrivalGrace  time.Duration // сколько держим место за неприехавшим после начала брони
	PendingHold   time.Duration // удержание неподтверждённой брони на время оплаты
	BookingBuffer time.Duration // зазор между соседними бронированиями одного места
}

// DefaultPolicy returns the built-in policy
func DefaultPolicy() Policy {
	return Policy{
		ArrivalGrace:  DefaultArrivalGrace,
		PendingHold:   DefaultPendingHold,
		BookingBuffer: DefaultBookingBuffer,
	}
}

// AreaPolicyOverride per-area policy values. Nil fields fall back to the global policy.
type AreaPolicyOverride struct {
	ID                   int64
	ParkingAreaID        int64
	ArrivalGraceMinutes  *int
	PendingHoldMinutes   *int
	BookingBufferMinutes *int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Apply returns base with the override's non-nil values applied
func (o *AreaPolicyOverride) Apply(base Policy) Policy {
	if o == nil {
		return base
	}
	if o.ArrivalGraceMinutes != nil {
		base.ArrivalGrace = time.Duration(*o.ArrivalGraceMinutes) * time.Minute
	}
	if o.PendingHoldMinutes != nil {
		base.PendingHold = time.Duration(*o.PendingHoldMinutes) * time.Minute
	}
	if o.BookingBufferMinutes != nil {
		base.BookingBuffer = time.Duration(*o.BookingBufferMinutes) * time.Minute
	}
	return base
}

// IsEmpty returns true if the override changes nothing
func (o *AreaPolicyOverride) IsEmpty() bool {
	return o.ArrivalGraceMinutes == nil && o.PendingHoldMinutes == nil && o.BookingBufferMinutes == nil
}
