package update_area_prices

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/service/parkingslots/models"
)

type SlotService interface {
	UpdateAreaPrices(ctx context.Context, areaID int64, req *models.UpdateAreaPricesRequest) (*models.UpdateAreaPricesResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
