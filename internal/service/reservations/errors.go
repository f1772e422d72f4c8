package reservations

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронь не найдена
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrSlotNotFound возвращается, когда место не найдено
	ErrSlotNotFound = errors.New("parking slot not found")

	// ErrAreaNotFound возвращается, когда парковка не найдена
	ErrAreaNotFound = errors.New("parking area not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidTransition возвращается при переходе, недопустимом из текущего состояния брони
	ErrInvalidTransition = errors.New("invalid reservation transition")

	// ErrConflict возвращается, когда переход нарушил бы правило одной блокирующей брони на место
	ErrConflict = errors.New("conflicting reservation")

	// ErrPaymentIncomplete возвращается при завершении брони с непогашенным остатком
	ErrPaymentIncomplete = errors.New("payment incomplete")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
