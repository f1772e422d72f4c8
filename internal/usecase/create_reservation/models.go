package create_reservation

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// Options настройки создания брони
type Options struct {
	Policy                domain.Policy // глобальная политика, перекрывается политикой парковки
	AutoConfirm           bool          // подтверждать предварительную бронь сразу
	ClockSkew             time.Duration // допустимое отставание startTime от текущего времени
	MaxTransitionAttempts int           // повторы при конфликте версии места
}

// Request модель запроса на создание брони
type Request struct {
	CustomerID    *int64     // клиент; у заезда без брони может отсутствовать
	SlotID        int64      // ID места
	VehicleType   string     // тип транспорта, должен совпадать с типом места
	VehicleNumber string     // госномер
	Type          string     // pre_booking | on_spot
	StartTime     *time.Time // обязательно для pre_booking, для on_spot игнорируется
	EndTime       *time.Time // опционально
	SlotVersion   *int64     // ожидаемая версия места; при расхождении повтор не выполняется
}

// Response модель ответа с созданной бронью
type Response struct {
	Reservation *domain.Reservation
	SlotVersion int64 // версия места после создания брони
}
