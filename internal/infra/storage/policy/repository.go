package policy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

var policyColumns = []string{
	"id",
	"parking_area_id",
	"arrival_grace_minutes",
	"pending_hold_minutes",
	"booking_buffer_minutes",
	"created_at",
	"updated_at",
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// Repository репозиторий политик удержания мест на уровне парковки
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория политик
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByArea получает собственную политику парковки
func (r *Repository) GetByArea(ctx context.Context, areaID int64) (*domain.AreaPolicyOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(policyColumns...).
		From("parking_area_policies").
		Where(squirrel.Eq{"parking_area_id": areaID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByArea - build select query: %w", ErrBuildQuery, err)
	}

	override, err := scanOverride(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByArea - scan policy: %w", ErrScanRow, err)
	}

	return override, nil
}

// ListByAreas возвращает политики нескольких парковок, ключ - ID парковки.
// Парковок без собственной политики в результате нет.
func (r *Repository) ListByAreas(ctx context.Context, areaIDs []int64) (map[int64]*domain.AreaPolicyOverride, error) {
	result := make(map[int64]*domain.AreaPolicyOverride, len(areaIDs))
	if len(areaIDs) == 0 {
		return result, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(policyColumns...).
		From("parking_area_policies").
		Where(squirrel.Eq{"parking_area_id": areaIDs}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByAreas - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByAreas - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		override, err := scanOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByAreas - scan row: %w", ErrScanRow, err)
		}
		result[override.ParkingAreaID] = override
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByAreas - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

// Resolve возвращает действующую политику парковки
// Приоритет: собственная политика парковки, затем глобальная base
func (r *Repository) Resolve(ctx context.Context, areaID int64, base domain.Policy) (domain.Policy, error) {
	override, err := r.GetByArea(ctx, areaID)
	if errors.Is(err, ErrPolicyNotFound) {
		return base, nil
	}
	if err != nil {
		return base, err
	}
	return override.Apply(base), nil
}

// Upsert создает или заменяет политику парковки
func (r *Repository) Upsert(ctx context.Context, override *domain.AreaPolicyOverride, now time.Time) (*domain.AreaPolicyOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("parking_area_policies").
		Columns(
			"parking_area_id",
			"arrival_grace_minutes",
			"pending_hold_minutes",
			"booking_buffer_minutes",
			"created_at",
			"updated_at",
		).
		Values(
			override.ParkingAreaID,
			override.ArrivalGraceMinutes,
			override.PendingHoldMinutes,
			override.BookingBufferMinutes,
			now,
			now,
		).
		Suffix(`ON CONFLICT (parking_area_id) DO UPDATE SET
			arrival_grace_minutes = EXCLUDED.arrival_grace_minutes,
			pending_hold_minutes = EXCLUDED.pending_hold_minutes,
			booking_buffer_minutes = EXCLUDED.booking_buffer_minutes,
			updated_at = EXCLUDED.updated_at
			RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&override.ID,
		&override.CreatedAt,
		&override.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %w", ErrExecQuery, err)
	}

	return override, nil
}

// Delete удаляет собственную политику парковки (парковка возвращается к глобальной)
func (r *Repository) Delete(ctx context.Context, areaID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("parking_area_policies").
		Where(squirrel.Eq{"parking_area_id": areaID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrPolicyNotFound
	}

	return nil
}

func scanOverride(row scanner) (*domain.AreaPolicyOverride, error) {
	var (
		o         domain.AreaPolicyOverride
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)

	err := row.Scan(
		&o.ID,
		&o.ParkingAreaID,
		&o.ArrivalGraceMinutes,
		&o.PendingHoldMinutes,
		&o.BookingBufferMinutes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time

	return &o, nil
}
