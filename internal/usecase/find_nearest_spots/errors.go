package find_nearest_spots

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных координатах, типе транспорта или окне
	ErrInvalidInput = errors.New("find_nearest_spots: invalid input data")

	// ErrUpstream возвращается, когда геоиндекс недоступен
	ErrUpstream = errors.New("find_nearest_spots: geo index unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("find_nearest_spots: internal error")
)
