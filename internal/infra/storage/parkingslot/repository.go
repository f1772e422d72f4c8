package parkingslot

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

var slotColumns = []string{
	"s.id",
	"s.parking_area_id",
	"s.vehicle_type",
	"s.slot_number",
	"s.price_per_hour",
	"s.is_active",
	"s.is_deleted",
	"s.version",
	"ARRAY(SELECT r.id FROM reservations r WHERE r.parking_slot_id = s.id ORDER BY r.created_at, r.id) AS reservation_ids",
	"s.created_at",
	"s.updated_at",
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// Repository репозиторий парковочных мест
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория мест
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает место по ID (включая удалённые, чтобы отличать "нет" от "удалено")
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.ParkingSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("parking_slots s").
		Where(squirrel.Eq{"s.id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %w", ErrScanRow, err)
	}

	return slot, nil
}

// ListForAreas возвращает активные неудалённые места нужного типа транспорта в указанных парковках,
// упорядоченные по парковке и номеру места
func (r *Repository) ListForAreas(ctx context.Context, areaIDs []int64, vehicleType domain.VehicleType) ([]domain.ParkingSlot, error) {
	if len(areaIDs) == 0 {
		return []domain.ParkingSlot{}, nil
	}

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From("parking_slots s").
		Where(squirrel.Eq{"s.parking_area_id": areaIDs}).
		Where(squirrel.Eq{"s.vehicle_type": vehicleType}).
		Where(squirrel.Eq{"s.is_active": true, "s.is_deleted": false}).
		OrderBy("s.parking_area_id ASC", "s.slot_number ASC")

	return r.list(ctx, "ListForAreas", selectBuilder)
}

// ListByArea возвращает все неудалённые места парковки (и активные, и нет)
func (r *Repository) ListByArea(ctx context.Context, areaID int64) ([]domain.ParkingSlot, error) {
	selectBuilder := psqlbuilder.Select(slotColumns...).
		From("parking_slots s").
		Where(squirrel.Eq{"s.parking_area_id": areaID, "s.is_deleted": false}).
		OrderBy("s.vehicle_type ASC", "s.slot_number ASC")

	return r.list(ctx, "ListByArea", selectBuilder)
}

// SetActive включает или выключает приём броней на месте
func (r *Repository) SetActive(ctx context.Context, id int64, active bool, now time.Time) error {
	return r.update(ctx, "SetActive", psqlbuilder.Update("parking_slots").
		Set("is_active", active).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "is_deleted": false}))
}

// UpdatePrice меняет цену одного места. Открытые брони сохраняют свою ставку.
func (r *Repository) UpdatePrice(ctx context.Context, id int64, price float64, now time.Time) error {
	return r.update(ctx, "UpdatePrice", psqlbuilder.Update("parking_slots").
		Set("price_per_hour", price).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "is_deleted": false}))
}

// UpdateAreaPriceByVehicleType меняет цену всех мест парковки одного типа транспорта.
// Возвращает количество обновлённых мест.
func (r *Repository) UpdateAreaPriceByVehicleType(ctx context.Context, areaID int64, vehicleType domain.VehicleType, price float64, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("parking_slots").
		Set("price_per_hour", price).
		Set("updated_at", now).
		Where(squirrel.Eq{"parking_area_id": areaID, "vehicle_type": vehicleType, "is_deleted": false}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: UpdateAreaPriceByVehicleType - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: UpdateAreaPriceByVehicleType - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: UpdateAreaPriceByVehicleType - get rows affected: %w", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// BumpVersion увеличивает версию места, если она всё ещё равна expected.
// Это точка сериализации всех изменений броней одного места: проигравший получает ErrVersionConflict.
func (r *Repository) BumpVersion(ctx context.Context, id int64, expected int64) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("parking_slots").
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": id, "version": expected}).
		Suffix("RETURNING version").
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: BumpVersion - build update query: %w", ErrBuildQuery, err)
	}

	var version int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrVersionConflict
	}
	if err != nil {
		return 0, fmt.Errorf("%w: BumpVersion - execute update: %w", ErrExecQuery, err)
	}

	return version, nil
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
		return ErrSlotNotFound
	}

	return nil
}

func (r *Repository) list(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]domain.ParkingSlot, error) {
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

	slots := make([]domain.ParkingSlot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %w", ErrScanRow, op, err)
		}
		slots = append(slots, *slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, err)
	}

	return slots, nil
}

func scanSlot(row scanner) (*domain.ParkingSlot, error) {
	var (
		slot      domain.ParkingSlot
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)

	err := row.Scan(
		&slot.ID,
		&slot.ParkingAreaID,
		&slot.VehicleType,
		&slot.SlotNumber,
		&slot.PricePerHour,
		&slot.IsActive,
		&slot.IsDeleted,
		&slot.Version,
		pq.Array(&slot.ReservationIDs),
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return &slot, nil
}
