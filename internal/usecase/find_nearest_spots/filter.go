package find_nearest_spots

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/geo"
)

// filterAvailable для каждой парковки-кандидата считает места без блокирующих броней.
// Парковки без свободных мест отбрасываются, порядок кандидатов (по расстоянию) сохраняется.
func filterAvailable(
	candidates []geo.Ranked[*domain.ParkingArea],
	slotsByArea map[int64][]domain.ParkingSlot,
	reservationsBySlot map[int64][]domain.Reservation,
	policies map[int64]domain.Policy,
	window domain.Window,
	now time.Time,
	sampleSize int,
) []AreaAvailability {
	result := make([]AreaAvailability, 0, len(candidates))

	for _, candidate := range candidates {
		slots := slotsByArea[candidate.Item.ID]
		if len(slots) == 0 {
			continue
		}

		policy := policies[candidate.Item.ID]

		free := 0
		sample := make([]int64, 0, sampleSize)
		for _, slot := range slots {
			if !slot.IsBookable() {
				continue
			}
			if !domain.IsSlotAvailable(reservationsBySlot[slot.ID], now, &window, policy) {
				continue
			}
			free++
			if len(sample) < sampleSize {
				sample = append(sample, slot.ID)
			}
		}

		if free == 0 {
			continue
		}

		result = append(result, AreaAvailability{
			Area:           *candidate.Item,
			DistanceMeters: candidate.DistanceMeters,
			FreeSlotCount:  free,
			Price:          slots[0].PricePerHour,
			SampleSlotIDs:  sample,
		})
	}

	return result
}

func groupSlots(slots []domain.ParkingSlot) (map[int64][]domain.ParkingSlot, []int64) {
	byArea := make(map[int64][]domain.ParkingSlot)
	ids := make([]int64, 0, len(slots))
	for _, s := range slots {
		byArea[s.ParkingAreaID] = append(byArea[s.ParkingAreaID], s)
		ids = append(ids, s.ID)
	}
	return byArea, ids
}

func groupReservations(reservations []domain.Reservation) map[int64][]domain.Reservation {
	bySlot := make(map[int64][]domain.Reservation)
	for _, r := range reservations {
		bySlot[r.SlotID] = append(bySlot[r.SlotID], r)
	}
	return bySlot
}
