package find_nearest_spots

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/geo"
)

// cacheMarginMeters запас радиуса для кандидатов, посчитанных от округлённой точки
const cacheMarginMeters = 50

// UseCase use case поиска ближайших свободных мест
type UseCase struct {
	areaRepo        AreaRepository
	slotRepo        SlotRepository
	reservationRepo ReservationRepository
	policyRepo      PolicyRepository
	cache           AreaCache
	metrics         Metrics
	opts            Options
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	areaRepo AreaRepository,
	slotRepo SlotRepository,
	reservationRepo ReservationRepository,
	policyRepo PolicyRepository,
	cache AreaCache,
	metrics Metrics,
	opts Options,
	logger Logger,
) *UseCase {
	return &UseCase{
		areaRepo:        areaRepo,
		slotRepo:        slotRepo,
		reservationRepo: reservationRepo,
		policyRepo:      policyRepo,
		cache:           cache,
		metrics:         metrics,
		opts:            opts,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет поиск: геоиндекс, затем фильтр мест по предикату конфликта
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("FindNearestSpots: origin=(%.5f, %.5f), vehicleType=%s, start=%s",
		req.Origin.Lat, req.Origin.Lng, req.VehicleType, req.StartTime.Format(domain.DateTimeFormat))

	// 1. Валидация входных данных
	vehicleType, radius, err := validateRequest(req, uc.opts.DefaultRadiusMeters)
	if err != nil {
		uc.logger.Warn("FindNearestSpots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Кандидаты из геоиндекса (через кеш)
	candidates, err := uc.loadCandidates(ctx, req.Origin, radius, now)
	if err != nil {
		return nil, err
	}

	// 3. Точное расстояние и сортировка
	usable := make([]*domain.ParkingArea, 0, len(candidates))
	for i := range candidates {
		area := &candidates[i]
		if !area.AcceptsBookings(now) {
			continue
		}
		if err := area.Position().Validate(); err != nil {
			uc.logger.Warn("FindNearestSpots: skipping area id=%d: %v", area.ID, err)
			continue
		}
		usable = append(usable, area)
	}
	ranked := geo.Nearby(req.Origin, float64(radius), usable)

	if len(ranked) == 0 {
		uc.logger.Info("FindNearestSpots: no areas within %dm", radius)
		uc.metrics.ObserveSearch(0)
		return &Response{Areas: []AreaAvailability{}}, nil
	}

	areaIDs := make([]int64, len(ranked))
	for i, r := range ranked {
		areaIDs[i] = r.Item.ID
	}

	// 4. Места нужного типа и их незавершённые брони
	slots, err := uc.slotRepo.ListForAreas(ctx, areaIDs, vehicleType)
	if err != nil {
		uc.logger.Error("FindNearestSpots: failed to list slots: %v", err)
		return nil, fmt.Errorf("%w: failed to list slots: %w", ErrInternal, err)
	}
	slotsByArea, slotIDs := groupSlots(slots)

	reservations, err := uc.reservationRepo.ListOpenBySlots(ctx, slotIDs)
	if err != nil {
		uc.logger.Error("FindNearestSpots: failed to list reservations: %v", err)
		return nil, fmt.Errorf("%w: failed to list reservations: %w", ErrInternal, err)
	}

	// 5. Политики парковок поверх глобальной
	overrides, err := uc.policyRepo.ListByAreas(ctx, areaIDs)
	if err != nil {
		uc.logger.Error("FindNearestSpots: failed to load area policies: %v", err)
		return nil, fmt.Errorf("%w: failed to load area policies: %w", ErrInternal, err)
	}
	policies := make(map[int64]domain.Policy, len(areaIDs))
	for _, id := range areaIDs {
		policies[id] = overrides[id].Apply(uc.opts.Policy)
	}

	// 6. Фильтр
	window := domain.Window{Start: req.StartTime, End: req.EndTime}
	areas := filterAvailable(ranked, slotsByArea, groupReservations(reservations), policies, window, now, uc.opts.SampleSize)

	uc.metrics.ObserveSearch(len(areas))
	uc.logger.Info("FindNearestSpots: %d of %d areas have free %s slots", len(areas), len(ranked), vehicleType)

	return &Response{Areas: areas}, nil
}

// loadCandidates читает кандидатов из кеша или геоиндекса. Ошибки кеша не фатальны.
func (uc *UseCase) loadCandidates(ctx context.Context, origin geo.Point, radius int, now time.Time) ([]domain.ParkingArea, error) {
	rounded := geo.Point{Lat: round4(origin.Lat), Lng: round4(origin.Lng)}

	key, err := uc.cache.Key(ctx, rounded, radius)
	if err != nil {
		uc.logger.Warn("FindNearestSpots: cache unavailable: %v", err)
		key = ""
	}

	if key != "" {
		cached, ok, err := uc.cache.Get(ctx, key)
		if err != nil {
			uc.logger.Warn("FindNearestSpots: cache read failed: %v", err)
		}
		if ok {
			return cached, nil
		}
	}

	box := geo.BoundingBox(rounded, float64(radius+cacheMarginMeters))
	areas, err := uc.areaRepo.FindActiveInBox(ctx, box, now)
	if err != nil {
		uc.logger.Error("FindNearestSpots: geo index query failed: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	if key != "" {
		if err := uc.cache.Set(ctx, key, areas); err != nil {
			uc.logger.Warn("FindNearestSpots: cache write failed: %v", err)
		}
	}

	return areas, nil
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
