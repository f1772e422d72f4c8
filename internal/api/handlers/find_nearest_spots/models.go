package find_nearest_spots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/geo"
	findNearestSpots "github.com/m04kA/SMC-ParkingService/internal/usecase/find_nearest_spots"
)

// Coords координаты точки поиска
type Coords struct {
	Lng *float64 `json:"lng"`
	Lat *float64 `json:"lat"`
}

// FindNearestSpotsRequest HTTP request model
type FindNearestSpotsRequest struct {
	Coords      Coords  `json:"coords"`
	Radius      *int    `json:"radius,omitempty"` // метры, по умолчанию из конфига
	VehicleType string  `json:"vehicleType"`
	StartTime   string  `json:"startTime"`         // RFC3339
	EndTime     *string `json:"endTime,omitempty"` // RFC3339
}

// AreaResponse парковка со свободными местами
type AreaResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	DistanceMeters float64 `json:"distanceMeters"`
	FreeSlotCount  int     `json:"freeSlotCount"`
	Price          float64 `json:"price"`
	FreeSlotIDs    []int64 `json:"freeSlotIds"`
}

// FindNearestSpotsResponse HTTP response model
type FindNearestSpotsResponse struct {
	Areas []AreaResponse `json:"areas"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *FindNearestSpotsRequest) ToUseCaseRequest() (*findNearestSpots.Request, error) {
	if r.Coords.Lat == nil || r.Coords.Lng == nil {
		return nil, fmt.Errorf("coords.lat and coords.lng are required")
	}

	start, err := time.Parse(domain.DateTimeFormat, r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}

	req := &findNearestSpots.Request{
		Origin:       geo.Point{Lat: *r.Coords.Lat, Lng: *r.Coords.Lng},
		RadiusMeters: r.Radius,
		VehicleType:  r.VehicleType,
		StartTime:    start,
	}

	if r.EndTime != nil && *r.EndTime != "" {
		end, err := time.Parse(domain.DateTimeFormat, *r.EndTime)
		if err != nil {
			return nil, fmt.Errorf("endTime: %w", err)
		}
		req.EndTime = &end
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *findNearestSpots.Response) *FindNearestSpotsResponse {
	result := &FindNearestSpotsResponse{
		Areas: make([]AreaResponse, 0, len(resp.Areas)),
	}
	for _, a := range resp.Areas {
		ids := a.SampleSlotIDs
		if ids == nil {
			ids = []int64{}
		}
		result.Areas = append(result.Areas, AreaResponse{
			ID:             a.Area.ID,
			Name:           a.Area.Name,
			Address:        a.Area.Address,
			Lat:            a.Area.Latitude,
			Lng:            a.Area.Longitude,
			DistanceMeters: a.DistanceMeters,
			FreeSlotCount:  a.FreeSlotCount,
			Price:          a.Price,
			FreeSlotIDs:    ids,
		})
	}
	return result
}
