package set_area_activation

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/service/parkingareas/models"
)

type AreaService interface {
	SetActive(ctx context.Context, areaID int64, req *models.SetActiveRequest) (*models.AreaResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
