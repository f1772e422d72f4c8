package parkingarea

import "errors"

var (
	// ErrAreaNotFound возвращается, когда парковка не найдена
	ErrAreaNotFound = errors.New("parkingarea.repository: parking area not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("parkingarea.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("parkingarea.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("parkingarea.repository: failed to scan row")
)
