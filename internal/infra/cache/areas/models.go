package areas

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

type cachedArea struct {
	ID                  int64     `json:"id"`
	OwnerID             int64     `json:"owner_id"`
	Name                string    `json:"name"`
	Address             string    `json:"address"`
	Latitude            float64   `json:"lat"`
	Longitude           float64   `json:"lng"`
	SubscriptionID      int64     `json:"subscription_id"`
	PaymentStatus       string    `json:"payment_status"`
	SubscriptionEndDate time.Time `json:"subscription_end_date"`
}

func toCached(a domain.ParkingArea) cachedArea {
	c := cachedArea{
		ID:        a.ID,
		OwnerID:   a.OwnerID,
		Name:      a.Name,
		Address:   a.Address,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
	}
	if a.Subscription != nil {
		c.SubscriptionID = a.Subscription.ID
		c.PaymentStatus = string(a.Subscription.PaymentStatus)
		c.SubscriptionEndDate = a.Subscription.SubscriptionEndDate
	}
	return c
}

// В кеш попадают только активные парковки, поэтому флаги восстанавливаются константами
func (c cachedArea) toDomain() domain.ParkingArea {
	a := domain.ParkingArea{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Name:      c.Name,
		Address:   c.Address,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		IsActive:  true,
	}
	if c.SubscriptionID != 0 {
		id := c.SubscriptionID
		a.SubscriptionID = &id
		a.Subscription = &domain.Subscription{
			ID:                  id,
			PaymentStatus:       domain.SubscriptionPaymentStatus(c.PaymentStatus),
			SubscriptionEndDate: c.SubscriptionEndDate,
		}
	}
	return a
}
