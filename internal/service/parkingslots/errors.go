package parkingslots

import "errors"

var (
	// ErrSlotNotFound возвращается, когда место не найдено
	ErrSlotNotFound = errors.New("parking slot not found")

	// ErrAreaNotFound возвращается, когда парковка не найдена
	ErrAreaNotFound = errors.New("parking area not found")

	// ErrAreaInactive возвращается при активации места в неактивной парковке
	ErrAreaInactive = errors.New("parking area is not active")

	// ErrConflict возвращается, когда место изменили параллельно
	ErrConflict = errors.New("parking slot was modified concurrently")

	// ErrAccessDenied возвращается, когда пользователь не владелец парковки
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
