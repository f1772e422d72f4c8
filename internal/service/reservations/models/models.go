package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid reservation status")
)

// Действия PATCH /reservation/{id}
const (
	ActionConfirm  = "confirm"
	ActionArrive   = "arrive"
	ActionReassign = "reassign"
)

// Request модели

// TransitionRequest запрос на переход брони (подтверждение, заезд, перенос на другое место)
type TransitionRequest struct {
	UserID      int64  `json:"-"`
	Action      string `json:"action"`
	SlotID      *int64 `json:"slotId,omitempty"`      // новое место для reassign
	SlotVersion *int64 `json:"slotVersion,omitempty"` // ожидаемая версия нового места
}

// SettlementInput оплата остатка при завершении
type SettlementInput struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}

// CompleteRequest запрос на завершение брони
type CompleteRequest struct {
	UserID     int64            `json:"-"`
	Settlement *SettlementInput `json:"settlement,omitempty"`
}

// CancelRequest запрос на отмену брони
type CancelRequest struct {
	UserID int64   `json:"-"`
	Reason *string `json:"reason,omitempty"`
}

// AddPaymentRequest запрос на внесение предоплаты
type AddPaymentRequest struct {
	UserID int64   `json:"-"`
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
}

// GetCustomerReservationsRequest запрос на получение броней клиента
type GetCustomerReservationsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// GetAreaReservationsRequest запрос на получение броней парковки
type GetAreaReservationsRequest struct {
	UserID          int64      `json:"userId"`
	AreaID          int64      `json:"areaId"`
	SlotID          *int64     `json:"slotId,omitempty"`
	Status          *string    `json:"status,omitempty"`
	From            *time.Time `json:"from,omitempty"`
	To              *time.Time `json:"to,omitempty"`
	IncludeInactive bool       `json:"includeInactive,omitempty"` // включить завершённые и отменённые
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetAreaReservationsRequest) ToDomainFilter() (domain.ReservationFilter, error) {
	filter := domain.ReservationFilter{
		ParkingAreaID:   r.AreaID,
		SlotID:          r.SlotID,
		From:            r.From,
		To:              r.To,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainReservationStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// ReservationResponse ответ с данными брони
type ReservationResponse struct {
	ID               int64   `json:"id"`
	ParkingAreaID    int64   `json:"parkingAreaId"`
	SlotID           int64   `json:"slotId"`
	VehicleType      string  `json:"vehicleType"`
	VehicleNumber    string  `json:"vehicleNumber"`
	CustomerID       *int64  `json:"customerId,omitempty"`
	PerHourRate      float64 `json:"perHourRate"`
	Status           string  `json:"status"`
	IsParked         bool    `json:"isParked"`
	StartDateAndTime string  `json:"startDateAndTime"`
	EndDateAndTime   *string `json:"endDateAndTime,omitempty"`
	PaymentStatus    string  `json:"paymentStatus"`
	Type             string  `json:"type"`
	PaymentIDs       []int64 `json:"paymentIds"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CompletedAt        *string `json:"completedAt,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationListResponse ответ со списком броней
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// SettlementResponse расчёт суммы к оплате
type SettlementResponse struct {
	ReservationID  int64   `json:"reservationId"`
	ElapsedMinutes int64   `json:"elapsedMinutes"`
	BilledHours    int64   `json:"billedHours"`
	PerHourRate    float64 `json:"perHourRate"`
	TotalAmount    float64 `json:"totalAmount"`
	TotalPaid      float64 `json:"totalPaid"`
	BalanceDue     float64 `json:"balanceDue"`
	IsSettled      bool    `json:"isSettled"`
}

// PaymentResponse ответ с данными платежа
type PaymentResponse struct {
	ID            int64     `json:"id"`
	ReservationID int64     `json:"reservationId"`
	Reference     string    `json:"reference"`
	Amount        float64   `json:"amount"`
	Method        string    `json:"method"`
	PayerID       *int64    `json:"payerId,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CompletionResponse ответ на завершение брони
type CompletionResponse struct {
	Reservation *ReservationResponse `json:"reservation"`
	Settlement  *SettlementResponse  `json:"settlement"`
	Payment     *PaymentResponse     `json:"payment,omitempty"` // платёж остатка, если был
}

// Методы конвертации

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	paymentIDs := r.PaymentIDs
	if paymentIDs == nil {
		paymentIDs = []int64{}
	}

	return &ReservationResponse{
		ID:                 r.ID,
		ParkingAreaID:      r.ParkingAreaID,
		SlotID:             r.SlotID,
		VehicleType:        string(r.VehicleType),
		VehicleNumber:      r.VehicleNumber,
		CustomerID:         r.CustomerID,
		PerHourRate:        r.PerHourRate,
		Status:             string(r.Status),
		IsParked:           r.IsParked,
		StartDateAndTime:   r.StartDateAndTime.Format(domain.DateTimeFormat),
		EndDateAndTime:     formatTime(r.EndDateAndTime),
		PaymentStatus:      string(r.PaymentStatus),
		Type:               string(r.Type),
		PaymentIDs:         paymentIDs,
		CancellationReason: r.CancellationReason,
		CompletedAt:        formatTime(r.CompletedAt),
		CancelledAt:        formatTime(r.CancelledAt),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(list []domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(list)),
	}
	for i := range list {
		resp.Reservations = append(resp.Reservations, *FromDomainReservation(&list[i]))
	}
	return resp
}

// FromSettlement конвертирует расчёт в DTO
func FromSettlement(reservationID int64, s domain.Settlement) *SettlementResponse {
	return &SettlementResponse{
		ReservationID:  reservationID,
		ElapsedMinutes: s.ElapsedMinutes,
		BilledHours:    s.BilledHours,
		PerHourRate:    s.PerHourRate,
		TotalAmount:    s.TotalAmount,
		TotalPaid:      s.TotalPaid,
		BalanceDue:     s.BalanceDue,
		IsSettled:      s.IsSettled(),
	}
}

// FromDomainPayment конвертирует платёж в DTO
func FromDomainPayment(p *domain.ReservationPayment) *PaymentResponse {
	if p == nil {
		return nil
	}
	return &PaymentResponse{
		ID:            p.ID,
		ReservationID: p.ReservationID,
		Reference:     p.Reference,
		Amount:        p.Amount,
		Method:        string(p.Method),
		PayerID:       p.PayerID,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
	}
}

// ToDomainReservationStatus конвертирует строку в статус брони
func ToDomainReservationStatus(s string) (domain.ReservationStatus, error) {
	switch status := domain.ReservationStatus(s); status {
	case domain.ReservationPending, domain.ReservationConfirmed, domain.ReservationCompleted, domain.ReservationCancelled:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(domain.DateTimeFormat)
	return &s
}
