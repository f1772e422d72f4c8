package domain

import "time"

// Default policy values, overridable in config and per parking area
const (
	DefaultArrivalGrace  = time.Hour
	DefaultPendingHold   = 5 * time.Minute
	DefaultBookingBuffer = 2 * time.Hour

	DefaultSearchRadiusMeters = 10000
	DefaultFreeSlotSampleSize = 5
	DefaultTransitionAttempts = 3
	DefaultBookingClockSkew   = 5 * time.Minute
)

// Business validation constants
const (
	MinSearchRadiusMeters       = 1
	MaxSearchRadiusMeters       = 100000
	MaxVehicleNumberLength      = 32
	MaxCancellationReasonLength = 500
	MaxPolicyWindowMinutes      = 1440 // сутки
)

// DateTimeFormat формат дат во внешнем API
const DateTimeFormat = time.RFC3339

// OpenStatuses статусы, при которых бронирование ещё может держать место
var OpenStatuses = []ReservationStatus{
	ReservationPending,
	ReservationConfirmed,
}

// TerminalStatuses статусы, из которых переходов нет
var TerminalStatuses = []ReservationStatus{
	ReservationCompleted,
	ReservationCancelled,
}
