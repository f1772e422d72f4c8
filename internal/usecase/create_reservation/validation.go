package create_reservation

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// validated разобранные поля запроса
type validated struct {
	vehicleType   domain.VehicleType
	vehicleNumber string
	resType       domain.ReservationType
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) (*validated, error) {
	if req.SlotID <= 0 {
		return nil, fmt.Errorf("%w: slotID must be positive", ErrInvalidInput)
	}

	if req.CustomerID != nil && *req.CustomerID <= 0 {
		return nil, fmt.Errorf("%w: customerID must be positive", ErrInvalidInput)
	}

	vehicleType, err := domain.ParseVehicleType(req.VehicleType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	number := domain.NormalizeVehicleNumber(strings.TrimSpace(req.VehicleNumber))
	if number == "" {
		return nil, fmt.Errorf("%w: vehicleNumber is required", ErrInvalidInput)
	}
	if len(number) > domain.MaxVehicleNumberLength {
		return nil, fmt.Errorf("%w: vehicleNumber must be at most %d characters", ErrInvalidInput, domain.MaxVehicleNumberLength)
	}

	resType := domain.ReservationType(req.Type)
	switch resType {
	case domain.ReservationPreBooking:
		if req.StartTime == nil || req.StartTime.IsZero() {
			return nil, fmt.Errorf("%w: startTime is required for pre_booking", ErrInvalidInput)
		}
		if req.CustomerID == nil {
			return nil, fmt.Errorf("%w: customerID is required for pre_booking", ErrInvalidInput)
		}
	case domain.ReservationOnSpot:
	default:
		return nil, fmt.Errorf("%w: type must be %s or %s", ErrInvalidInput, domain.ReservationPreBooking, domain.ReservationOnSpot)
	}

	return &validated{vehicleType: vehicleType, vehicleNumber: number, resType: resType}, nil
}

// resolveWindow строит окно брони: для заезда без брони начало совпадает с now
func resolveWindow(req *Request, resType domain.ReservationType, now time.Time, skew time.Duration) (domain.Window, error) {
	start := now
	if resType == domain.ReservationPreBooking {
		start = *req.StartTime
		if start.Before(now.Add(-skew)) {
			return domain.Window{}, fmt.Errorf("%w: startTime is in the past", ErrInvalidInput)
		}
	}

	if req.EndTime != nil && !req.EndTime.After(start) {
		return domain.Window{}, fmt.Errorf("%w: endTime must be after startTime", ErrInvalidInput)
	}

	return domain.Window{Start: start, End: req.EndTime}, nil
}
