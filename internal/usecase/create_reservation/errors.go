package create_reservation

import "errors"

var (
	// ErrSlotNotFound возвращается, когда место не найдено
	ErrSlotNotFound = errors.New("create_reservation: parking slot not found")

	// ErrSlotUnavailable возвращается, когда место или парковка сейчас не принимают брони
	ErrSlotUnavailable = errors.New("create_reservation: parking slot does not accept reservations")

	// ErrConflict возвращается, когда место или транспорт уже заняты блокирующей бронью
	ErrConflict = errors.New("create_reservation: conflicting reservation")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_reservation: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)
