package get_area_reservations

import (
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/service/reservations/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(
	areaID int64,
	userID int64,
	slotIDStr string,
	statusStr string,
	fromStr string,
	toStr string,
	includeInactiveStr string,
) (*models.GetAreaReservationsRequest, error) {
	req := &models.GetAreaReservationsRequest{
		UserID:          userID,
		AreaID:          areaID,
		IncludeInactive: false, // По умолчанию только открытые
	}

	if slotIDStr != "" {
		slotID, err := strconv.ParseInt(slotIDStr, 10, 64)
		if err != nil {
			return nil, err
		}
		req.SlotID = &slotID
	}

	if statusStr != "" {
		req.Status = &statusStr
	}

	if fromStr != "" {
		from, err := time.Parse(domain.DateTimeFormat, fromStr)
		if err != nil {
			return nil, err
		}
		req.From = &from
	}

	if toStr != "" {
		to, err := time.Parse(domain.DateTimeFormat, toStr)
		if err != nil {
			return nil, err
		}
		req.To = &to
	}

	if includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
