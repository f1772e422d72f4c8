package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

const table = "reservations"

var reservationColumns = []string{
	"id",
	"parking_area_id",
	"parking_slot_id",
	"vehicle_type",
	"vehicle_number",
	"customer_id",
	"per_hour_rate",
	"status",
	"is_parked",
	"start_date_and_time",
	"end_date_and_time",
	"payment_status",
	"type",
	"ARRAY(SELECT p.id FROM reservation_payments p WHERE p.reservation_id = reservations.id ORDER BY p.id) AS payment_ids",
	"cancellation_reason",
	"completed_at",
	"cancelled_at",
	"created_at",
	"updated_at",
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// Repository репозиторий броней и платежей по ним
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория броней
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает бронь. CreatedAt задаёт вызывающий код: от него считается удержание неподтверждённой брони.
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"parking_area_id",
			"parking_slot_id",
			"vehicle_type",
			"vehicle_number",
			"customer_id",
			"per_hour_rate",
			"status",
			"is_parked",
			"start_date_and_time",
			"end_date_and_time",
			"payment_status",
			"type",
			"created_at",
			"updated_at",
		).
		Values(
			res.ParkingAreaID,
			res.SlotID,
			res.VehicleType,
			res.VehicleNumber,
			res.CustomerID,
			res.PerHourRate,
			res.Status,
			res.IsParked,
			res.StartDateAndTime,
			res.EndDateAndTime,
			res.PaymentStatus,
			res.Type,
			res.CreatedAt,
			res.CreatedAt,
		).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&res.ID); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	res.UpdatedAt = res.CreatedAt
	return res, nil
}

// GetByID получает бронь по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(reservationColumns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err)
	}

	return res, nil
}

// ListOpenBySlots возвращает незавершённые (pending, confirmed) брони указанных мест
// в порядке создания. Завершённые и отменённые места не блокируют, поэтому не читаются.
func (r *Repository) ListOpenBySlots(ctx context.Context, slotIDs []int64) ([]domain.Reservation, error) {
	if len(slotIDs) == 0 {
		return []domain.Reservation{}, nil
	}

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(table).
		Where(squirrel.Eq{"parking_slot_id": slotIDs}).
		Where(squirrel.Eq{"status": openStatuses()}).
		OrderBy("parking_slot_id ASC", "created_at ASC", "id ASC")

	return r.list(ctx, "ListOpenBySlots", selectBuilder)
}

// ListOpenBySlot возвращает незавершённые брони одного места
func (r *Repository) ListOpenBySlot(ctx context.Context, slotID int64) ([]domain.Reservation, error) {
	return r.ListOpenBySlots(ctx, []int64{slotID})
}

// ListOpenByVehicleNumber возвращает незавершённые брони транспорта по всем парковкам
func (r *Repository) ListOpenByVehicleNumber(ctx context.Context, vehicleNumber string) ([]domain.Reservation, error) {
	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(table).
		Where(squirrel.Eq{"vehicle_number": vehicleNumber}).
		Where(squirrel.Eq{"status": openStatuses()}).
		OrderBy("created_at ASC", "id ASC")

	return r.list(ctx, "ListOpenByVehicleNumber", selectBuilder)
}

// ListByCustomer возвращает брони клиента, новые первыми
// Опционально фильтрует по статусу
func (r *Repository) ListByCustomer(ctx context.Context, customerID int64, status *domain.ReservationStatus) ([]domain.Reservation, error) {
	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(table).
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("start_date_and_time DESC", "id DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	return r.list(ctx, "ListByCustomer", selectBuilder)
}

// ListByArea возвращает брони парковки с фильтрацией по месту, статусу и периоду начала
func (r *Repository) ListByArea(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(table).
		Where(squirrel.Eq{"parking_area_id": filter.ParkingAreaID})

	if filter.SlotID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"parking_slot_id": *filter.SlotID})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"start_date_and_time": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_date_and_time": *filter.To})
	}

	// Конкретный статус важнее флага неактивных
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": openStatuses()})
	}

	selectBuilder = selectBuilder.OrderBy("start_date_and_time ASC", "id ASC")

	return r.list(ctx, "ListByArea", selectBuilder)
}

// Confirm переводит бронь из pending в confirmed
func (r *Repository) Confirm(ctx context.Context, id int64, now time.Time) error {
	return r.update(ctx, "Confirm", psqlbuilder.Update(table).
		Set("status", domain.ReservationConfirmed).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}))
}

// MarkParked отмечает прибытие транспорта
func (r *Repository) MarkParked(ctx context.Context, id int64, now time.Time) error {
	return r.update(ctx, "MarkParked", psqlbuilder.Update(table).
		Set("is_parked", true).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}))
}

// Complete завершает бронь и фиксирует статус оплаты
func (r *Repository) Complete(ctx context.Context, id int64, paymentStatus domain.PaymentStatus, now time.Time) error {
	return r.update(ctx, "Complete", psqlbuilder.Update(table).
		Set("status", domain.ReservationCompleted).
		Set("payment_status", paymentStatus).
		Set("completed_at", now).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}))
}

// Cancel отменяет бронь с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason *string, now time.Time) error {
	return r.update(ctx, "Cancel", psqlbuilder.Update(table).
		Set("status", domain.ReservationCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", now).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}))
}

// MoveSlot переносит бронь на другое место
func (r *Repository) MoveSlot(ctx context.Context, id int64, slotID int64, now time.Time) error {
	return r.update(ctx, "MoveSlot", psqlbuilder.Update(table).
		Set("parking_slot_id", slotID).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}))
}

// SetPaymentStatus обновляет статус оплаты брони
func (r *Repository) SetPaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, now time.Time) error {
	return r.update(ctx, "SetPaymentStatus", psqlbuilder.Update(table).
		Set("payment_status", status).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}))
}

func (r *Repository) update(ctx context.Context, op string, builder squirrel.UpdateBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %w", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}

func (r *Repository) list(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %w", ErrScanRow, op, err)
		}
		reservations = append(reservations, *res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, err)
	}

	return reservations, nil
}

func scanReservation(row scanner) (*domain.Reservation, error) {
	var (
		res        domain.Reservation
		customerID sql.NullInt64
		endAt      sql.NullTime
		reason     sql.NullString
		completed  sql.NullTime
		cancelled  sql.NullTime
		createdAt  sql.NullTime
		updatedAt  sql.NullTime
	)

	err := row.Scan(
		&res.ID,
		&res.ParkingAreaID,
		&res.SlotID,
		&res.VehicleType,
		&res.VehicleNumber,
		&customerID,
		&res.PerHourRate,
		&res.Status,
		&res.IsParked,
		&res.StartDateAndTime,
		&endAt,
		&res.PaymentStatus,
		&res.Type,
		pq.Array(&res.PaymentIDs),
		&reason,
		&completed,
		&cancelled,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if customerID.Valid {
		res.CustomerID = &customerID.Int64
	}
	if endAt.Valid {
		res.EndDateAndTime = &endAt.Time
	}
	if reason.Valid {
		res.CancellationReason = &reason.String
	}
	if completed.Valid {
		res.CompletedAt = &completed.Time
	}
	if cancelled.Valid {
		res.CancelledAt = &cancelled.Time
	}
	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return &res, nil
}

func openStatuses() []string {
	statuses := make([]string, len(domain.OpenStatuses))
	for i, s := range domain.OpenStatuses {
		statuses[i] = string(s)
	}
	return statuses
}
