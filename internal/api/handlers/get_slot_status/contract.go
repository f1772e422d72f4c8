package get_slot_status

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/service/parkingslots/models"
)

type SlotService interface {
	SlotStatusBoard(ctx context.Context, areaID int64, userID int64) (*models.StatusBoardResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
