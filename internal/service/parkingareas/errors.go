package parkingareas

import "errors"

var (
	// ErrAreaNotFound возвращается, когда парковка не найдена
	ErrAreaNotFound = errors.New("parking area not found")

	// ErrAccessDenied возвращается, когда пользователь не владелец парковки
	ErrAccessDenied = errors.New("access denied")

	// ErrSubscriptionInactive возвращается при активации парковки без действующей подписки
	ErrSubscriptionInactive = errors.New("parking area subscription is not paid or expired")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
