package create_reservation

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/service/reservations/models"
	createReservation "github.com/m04kA/SMC-ParkingService/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	SlotID        int64   `json:"slotId"`
	VehicleType   string  `json:"vehicleType"`
	VehicleNumber string  `json:"vehicleNumber"`
	Type          string  `json:"type"`                 // pre_booking | on_spot
	StartTime     *string `json:"startTime,omitempty"`  // RFC3339, обязательно для pre_booking
	EndTime       *string `json:"endTime,omitempty"`    // RFC3339
	CustomerID    *int64  `json:"customerId,omitempty"` // клиент заезда без брони, если известен
	SlotVersion   *int64  `json:"slotVersion,omitempty"`
}

// CreateReservationResponse HTTP response model
type CreateReservationResponse struct {
	*models.ReservationResponse
	SlotVersion int64 `json:"slotVersion"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// Предварительную бронь клиент оформляет на себя, заезд без брони оформляет сотрудник парковки.
func (r *CreateReservationRequest) ToUseCaseRequest(userID int64) (*createReservation.Request, error) {
	start, err := parseTime(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}
	end, err := parseTime(r.EndTime)
	if err != nil {
		return nil, fmt.Errorf("endTime: %w", err)
	}

	customerID := r.CustomerID
	if domain.ReservationType(r.Type) == domain.ReservationPreBooking {
		customerID = &userID
	}

	return &createReservation.Request{
		CustomerID:    customerID,
		SlotID:        r.SlotID,
		VehicleType:   r.VehicleType,
		VehicleNumber: r.VehicleNumber,
		Type:          r.Type,
		StartTime:     start,
		EndTime:       end,
		SlotVersion:   r.SlotVersion,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createReservation.Response) *CreateReservationResponse {
	return &CreateReservationResponse{
		ReservationResponse: models.FromDomainReservation(resp.Reservation),
		SlotVersion:         resp.SlotVersion,
	}
}

func parseTime(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateTimeFormat, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
