package areas

import "errors"

var (
	// ErrCache возвращается при ошибке обращения к Redis
	ErrCache = errors.New("areas.cache: redis error")

	// ErrDecode возвращается, когда закешированное значение не разбирается
	ErrDecode = errors.New("areas.cache: failed to decode cached value")
)
