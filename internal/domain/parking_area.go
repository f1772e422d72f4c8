package domain

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/geo"
)

// SubscriptionPaymentStatus payment state of an owner's subscription
type SubscriptionPaymentStatus string

const (
	SubscriptionPaid    SubscriptionPaymentStatus = "PAID"
	SubscriptionPending SubscriptionPaymentStatus = "PENDING"
)

// Subscription gates whether a parking area may be offered to customers
type Subscription struct {
	ID                  int64
	PaymentStatus       SubscriptionPaymentStatus
	SubscriptionEndDate time.Time
}

// IsCurrent returns true if the subscription is paid and has not lapsed at now
func (s *Subscription) IsCurrent(now time.Time) bool {
	return s != nil && s.PaymentStatus == SubscriptionPaid && s.SubscriptionEndDate.After(now)
}

// ParkingArea represents an owner's parking place subdivided into slots
type ParkingArea struct {
	ID        int64
	OwnerID   int64
	Name      string
	Address   string
	Latitude  float64
	Longitude float64

	SubscriptionID *int64
	Subscription   *Subscription

	IsActive  bool
	IsDeleted bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AcceptsBookings returns true if the area is active, not deleted and its subscription is current
func (a *ParkingArea) AcceptsBookings(now time.Time) bool {
	return a.IsActive && !a.IsDeleted && a.Subscription.IsCurrent(now)
}

// IsOwnedBy returns true if the user owns the area
func (a *ParkingArea) IsOwnedBy(userID int64) bool {
	return a.OwnerID == userID
}

// Position location of the area for the proximity search
func (a *ParkingArea) Position() geo.Point {
	return geo.Point{Lat: a.Latitude, Lng: a.Longitude}
}
