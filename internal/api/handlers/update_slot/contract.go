package update_slot

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/service/parkingslots/models"
)

type SlotService interface {
	UpdateSlot(ctx context.Context, slotID int64, req *models.UpdateSlotRequest) (*models.SlotResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
