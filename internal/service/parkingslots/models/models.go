package models

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Request модели

// UpdateSlotRequest запрос на изменение места
// Все поля опциональны - обновляются только переданные значения
type UpdateSlotRequest struct {
	UserID       int64    `json:"-"`
	IsActive     *bool    `json:"isActive,omitempty"`
	PricePerHour *float64 `json:"pricePerHour,omitempty"`
}

// UpdateAreaPricesRequest запрос на изменение ставки всех мест парковки одного типа транспорта
type UpdateAreaPricesRequest struct {
	UserID       int64   `json:"-"`
	VehicleType  string  `json:"vehicleType"`
	PricePerHour float64 `json:"pricePerHour"`
}

// Response модели

// SlotResponse ответ с данными места
type SlotResponse struct {
	ID            int64     `json:"id"`
	ParkingAreaID int64     `json:"parkingAreaId"`
	VehicleType   string    `json:"vehicleType"`
	SlotNumber    int       `json:"slotNumber"`
	PricePerHour  float64   `json:"pricePerHour"`
	IsActive      bool      `json:"isActive"`
	Version       int64     `json:"version"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UpdateAreaPricesResponse результат изменения ставок
type UpdateAreaPricesResponse struct {
	ParkingAreaID int64   `json:"parkingAreaId"`
	VehicleType   string  `json:"vehicleType"`
	PricePerHour  float64 `json:"pricePerHour"`
	UpdatedSlots  int64   `json:"updatedSlots"`
}

// SlotStatus живое состояние места
type SlotStatus struct {
	SlotID        int64   `json:"slotId"`
	SlotNumber    int     `json:"slotNumber"`
	VehicleType   string  `json:"vehicleType"`
	PricePerHour  float64 `json:"pricePerHour"`
	IsActive      bool    `json:"isActive"`
	Version       int64   `json:"version"`
	Occupancy     string  `json:"occupancy"` // free | pending_hold | arrival_grace | occupied
	ReservationID *int64  `json:"reservationId,omitempty"`
	Until         *string `json:"until,omitempty"` // когда удержание истечёт
}

// StatusBoardResponse состояние всех мест парковки
type StatusBoardResponse struct {
	ParkingAreaID int64          `json:"parkingAreaId"`
	GeneratedAt   time.Time      `json:"generatedAt"`
	Counts        map[string]int `json:"counts"`
	Slots         []SlotStatus   `json:"slots"`
}

// Методы конвертации

// FromDomainSlot конвертирует domain модель в DTO
func FromDomainSlot(s *domain.ParkingSlot) *SlotResponse {
	if s == nil {
		return nil
	}
	return &SlotResponse{
		ID:            s.ID,
		ParkingAreaID: s.ParkingAreaID,
		VehicleType:   string(s.VehicleType),
		SlotNumber:    s.SlotNumber,
		PricePerHour:  s.PricePerHour,
		IsActive:      s.IsActive,
		Version:       s.Version,
		UpdatedAt:     s.UpdatedAt,
	}
}

// FromSlotState собирает состояние места
func FromSlotState(s *domain.ParkingSlot, state domain.SlotState) SlotStatus {
	status := SlotStatus{
		SlotID:        s.ID,
		SlotNumber:    s.SlotNumber,
		VehicleType:   string(s.VehicleType),
		PricePerHour:  s.PricePerHour,
		IsActive:      s.IsActive,
		Version:       s.Version,
		Occupancy:     string(state.Occupancy),
		ReservationID: state.ReservationID,
	}
	if state.Until != nil {
		until := state.Until.Format(domain.DateTimeFormat)
		status.Until = &until
	}
	return status
}
