package find_nearest_spots

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/geo"
)

// Options настройки поиска
type Options struct {
	Policy              domain.Policy // глобальная политика, перекрывается политикой парковки
	DefaultRadiusMeters int
	SampleSize          int // сколько ID свободных мест отдавать на парковку
}

// Request модель запроса на поиск свободных мест рядом
type Request struct {
	Origin       geo.Point
	RadiusMeters *int // nil - радиус по умолчанию
	VehicleType  string
	StartTime    time.Time
	EndTime      *time.Time
}

// Response модель ответа: парковки со свободными местами по возрастанию расстояния
type Response struct {
	Areas []AreaAvailability
}

// AreaAvailability парковка и её свободные места под запрос
type AreaAvailability struct {
	Area           domain.ParkingArea
	DistanceMeters float64
	FreeSlotCount  int
	Price          float64 // ставка первого подходящего места
	SampleSlotIDs  []int64
}
