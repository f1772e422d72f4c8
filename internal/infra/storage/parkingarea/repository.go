package parkingarea

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/geo"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

var areaColumns = []string{
	"a.id",
	"a.owner_id",
	"a.name",
	"a.address",
	"a.latitude",
	"a.longitude",
	"a.subscription_id",
	"a.is_active",
	"a.is_deleted",
	"a.created_at",
	"a.updated_at",
	"s.payment_status",
	"s.subscription_end_date",
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// Repository репозиторий парковок
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория парковок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// FindActiveInBox возвращает парковки внутри прямоугольника, которые можно показывать клиентам:
// активные, не удалённые, с оплаченной и не истёкшей подпиской.
// Точное расстояние считает вызывающий код.
func (r *Repository) FindActiveInBox(ctx context.Context, box geo.Box, now time.Time) ([]domain.ParkingArea, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(areaColumns...).
		From("parking_areas a").
		Join("subscriptions s ON s.id = a.subscription_id").
		Where(squirrel.Eq{"a.is_active": true, "a.is_deleted": false}).
		Where(squirrel.Eq{"s.payment_status": domain.SubscriptionPaid}).
		Where(squirrel.Gt{"s.subscription_end_date": now}).
		Where(squirrel.GtOrEq{"a.latitude": box.MinLat}).
		Where(squirrel.LtOrEq{"a.latitude": box.MaxLat})

	switch {
	case box.SkipLng:
	case box.SplitLng:
		// прямоугольник пересекает 180-й меридиан
		selectBuilder = selectBuilder.Where(squirrel.Or{
			squirrel.GtOrEq{"a.longitude": box.MinLng},
			squirrel.LtOrEq{"a.longitude": box.MaxLng},
		})
	default:
		selectBuilder = selectBuilder.
			Where(squirrel.GtOrEq{"a.longitude": box.MinLng}).
			Where(squirrel.LtOrEq{"a.longitude": box.MaxLng})
	}

	query, args, err := selectBuilder.OrderBy("a.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindActiveInBox - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindActiveInBox - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	areas := make([]domain.ParkingArea, 0)
	for rows.Next() {
		area, err := scanArea(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: FindActiveInBox - scan row: %w", ErrScanRow, err)
		}
		areas = append(areas, *area)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FindActiveInBox - rows error: %w", ErrScanRow, err)
	}

	return areas, nil
}

// GetByID получает парковку по ID вместе с подпиской (если есть)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.ParkingArea, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(areaColumns...).
		From("parking_areas a").
		LeftJoin("subscriptions s ON s.id = a.subscription_id").
		Where(squirrel.Eq{"a.id": id, "a.is_deleted": false}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	area, err := scanArea(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAreaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan area: %w", ErrScanRow, err)
	}

	return area, nil
}

// HasCurrentSubscription проверяет, что подписка парковки оплачена и не истекла на момент now
func (r *Repository) HasCurrentSubscription(ctx context.Context, id int64, now time.Time) (bool, error) {
	area, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return area.Subscription.IsCurrent(now), nil
}

// SetActive меняет флаг активности парковки и каскадно всех её неудалённых мест.
// Вызывать внутри транзакции.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool, now time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("parking_areas").
		Set("is_active", active).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "is_deleted": false}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetActive - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetActive - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetActive - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrAreaNotFound
	}

	// Каскад на места
	query, args, err = psqlbuilder.Update("parking_slots").
		Set("is_active", active).
		Set("updated_at", now).
		Where(squirrel.Eq{"parking_area_id": id, "is_deleted": false}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetActive - build cascade query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: SetActive - execute cascade: %w", ErrExecQuery, err)
	}

	return nil
}

func scanArea(row scanner) (*domain.ParkingArea, error) {
	var (
		area           domain.ParkingArea
		subscriptionID sql.NullInt64
		paymentStatus  sql.NullString
		endDate        sql.NullTime
		createdAt      sql.NullTime
		updatedAt      sql.NullTime
	)

	err := row.Scan(
		&area.ID,
		&area.OwnerID,
		&area.Name,
		&area.Address,
		&area.Latitude,
		&area.Longitude,
		&subscriptionID,
		&area.IsActive,
		&area.IsDeleted,
		&createdAt,
		&updatedAt,
		&paymentStatus,
		&endDate,
	)
	if err != nil {
		return nil, err
	}

	area.CreatedAt = createdAt.Time
	area.UpdatedAt = updatedAt.Time

	if subscriptionID.Valid {
		id := subscriptionID.Int64
		area.SubscriptionID = &id
		if paymentStatus.Valid {
			area.Subscription = &domain.Subscription{
				ID:                  id,
				PaymentStatus:       domain.SubscriptionPaymentStatus(paymentStatus.String),
				SubscriptionEndDate: endDate.Time,
			}
		}
	}

	return &area, nil
}
