package get_area_policy

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/service/parkingareas/models"
)

type AreaService interface {
	GetPolicy(ctx context.Context, areaID int64, userID int64) (*models.PolicyResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
