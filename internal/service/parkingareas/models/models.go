package models

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Request модели

// SetActiveRequest запрос на активацию или деактивацию парковки
type SetActiveRequest struct {
	UserID   int64 `json:"-"`
	IsActive *bool `json:"isActive"`
}

// UpdatePolicyRequest запрос на изменение политики парковки
// nil-поле наследует глобальное значение; все поля nil сбрасывают политику парковки
type UpdatePolicyRequest struct {
	UserID               int64 `json:"-"`
	ArrivalGraceMinutes  *int  `json:"arrivalGraceMinutes,omitempty"`
	PendingHoldMinutes   *int  `json:"pendingHoldMinutes,omitempty"`
	BookingBufferMinutes *int  `json:"bookingBufferMinutes,omitempty"`
}

// ToDomainOverride конвертирует request в domain модель
func (r *UpdatePolicyRequest) ToDomainOverride(areaID int64) *domain.AreaPolicyOverride {
	return &domain.AreaPolicyOverride{
		ParkingAreaID:        areaID,
		ArrivalGraceMinutes:  r.ArrivalGraceMinutes,
		PendingHoldMinutes:   r.PendingHoldMinutes,
		BookingBufferMinutes: r.BookingBufferMinutes,
	}
}

// Response модели

// AreaResponse ответ с данными парковки
type AreaResponse struct {
	ID                  int64      `json:"id"`
	OwnerID             int64      `json:"ownerId"`
	Name                string     `json:"name"`
	Address             string     `json:"address"`
	Latitude            float64    `json:"lat"`
	Longitude           float64    `json:"lng"`
	IsActive            bool       `json:"isActive"`
	SubscriptionID      *int64     `json:"subscriptionId,omitempty"`
	SubscriptionEndDate *time.Time `json:"subscriptionEndDate,omitempty"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// PolicyResponse действующая политика парковки
type PolicyResponse struct {
	ParkingAreaID        int64 `json:"parkingAreaId"`
	ArrivalGraceMinutes  int   `json:"arrivalGraceMinutes"`
	PendingHoldMinutes   int   `json:"pendingHoldMinutes"`
	BookingBufferMinutes int   `json:"bookingBufferMinutes"`
	Overridden           bool  `json:"overridden"` // у парковки есть собственная политика
}

// Методы конвертации

// FromDomainArea конвертирует domain модель в DTO
func FromDomainArea(a *domain.ParkingArea) *AreaResponse {
	if a == nil {
		return nil
	}

	resp := &AreaResponse{
		ID:             a.ID,
		OwnerID:        a.OwnerID,
		Name:           a.Name,
		Address:        a.Address,
		Latitude:       a.Latitude,
		Longitude:      a.Longitude,
		IsActive:       a.IsActive,
		SubscriptionID: a.SubscriptionID,
		UpdatedAt:      a.UpdatedAt,
	}
	if a.Subscription != nil {
		end := a.Subscription.SubscriptionEndDate
		resp.SubscriptionEndDate = &end
	}
	return resp
}

// FromPolicy конвертирует действующую политику в DTO
func FromPolicy(areaID int64, p domain.Policy, overridden bool) *PolicyResponse {
	return &PolicyResponse{
		ParkingAreaID:        areaID,
		ArrivalGraceMinutes:  int(p.ArrivalGrace / time.Minute),
		PendingHoldMinutes:   int(p.PendingHold / time.Minute),
		BookingBufferMinutes: int(p.BookingBuffer / time.Minute),
		Overridden:           overridden,
	}
}
