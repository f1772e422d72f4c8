package reservation

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

// CreatePayment добавляет платёж к брони
func (r *Repository) CreatePayment(ctx context.Context, payment *domain.ReservationPayment) (*domain.ReservationPayment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("reservation_payments").
		Columns(
			"reservation_id",
			"reference",
			"amount",
			"method",
			"payer_id",
			"status",
			"created_at",
		).
		Values(
			payment.ReservationID,
			payment.Reference,
			payment.Amount,
			payment.Method,
			payment.PayerID,
			payment.Status,
			payment.CreatedAt,
		).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreatePayment - build insert query: %w", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&payment.ID); err != nil {
		return nil, fmt.Errorf("%w: CreatePayment - execute insert: %w", ErrExecQuery, err)
	}

	return payment, nil
}

// ListPayments возвращает платежи брони в порядке поступления
func (r *Repository) ListPayments(ctx context.Context, reservationID int64) ([]domain.ReservationPayment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"reservation_id",
		"reference",
		"amount",
		"method",
		"payer_id",
		"status",
		"created_at",
	).
		From("reservation_payments").
		Where(squirrel.Eq{"reservation_id": reservationID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListPayments - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListPayments - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	payments := make([]domain.ReservationPayment, 0)
	for rows.Next() {
		var p domain.ReservationPayment
		if err := rows.Scan(
			&p.ID,
			&p.ReservationID,
			&p.Reference,
			&p.Amount,
			&p.Method,
			&p.PayerID,
			&p.Status,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: ListPayments - scan row: %w", ErrScanRow, err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListPayments - rows error: %w", ErrScanRow, err)
	}

	return payments, nil
}
