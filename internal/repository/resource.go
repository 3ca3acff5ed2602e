package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shenikar/disaster_resource_system/internal/apperror"
	"github.com/shenikar/disaster_resource_system/internal/config"
	"github.com/shenikar/disaster_resource_system/internal/models"
	"github.com/shenikar/disaster_resource_system/internal/service"
)

var resourceColumns = `
			r.id,
			r.name,
			r.type,
			r.description,
			r.latitude::float8,
			r.longitude::float8,
			r.address,
			r.region,
			r.capacity,
			r.available_capacity,
			r.status,
			r.contact,
			r.helpline,
			r.verified,
			r.verified_by,
			` + displayNameSQL("v") + `,
			r.coordinator_id,
			` + displayNameSQL("c") + `,
			r.created_at,
			r.updated_at
		FROM resources r
		LEFT JOIN users v ON v.id = r.verified_by
		LEFT JOIN users c ON c.id = r.coordinator_id`

type ResourceRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
	lockTimeout time.Duration
}

// NewResourceRepository создает репозиторий ресурсов. redisClient может быть nil,
// тогда кеш отключен.
func NewResourceRepository(db *pgxpool.Pool, redisClient *redis.Client, cfg *config.Config) service.ResourceRepository {
	return &ResourceRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cfg.CacheTTL,
		lockTimeout: cfg.DBLockTimeout,
	}
}

func scanResource(row pgx.Row) (*models.Resource, error) {
	resource := &models.Resource{}
	err := row.Scan(
		&resource.ID,
		&resource.Name,
		&resource.Type,
		&resource.Description,
		&resource.Latitude,
		&resource.Longitude,
		&resource.Address,
		&resource.Region,
		&resource.Capacity,
		&resource.AvailableCapacity,
		&resource.Status,
		&resource.Contact,
		&resource.Helpline,
		&resource.Verified,
		&resource.VerifiedBy,
		&resource.VerifiedByName,
		&resource.CoordinatorID,
		&resource.CoordinatorName,
		&resource.CreatedAt,
		&resource.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return resource, nil
}

// Create создает новую запись о ресурсе в бд
func (r *ResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	query := `
		INSERT INTO resources (
			name, type, description, latitude, longitude, address, region,
			capacity, available_capacity, status, contact, helpline, coordinator_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		resource.Name,
		string(resource.Type),
		resource.Description,
		resource.Latitude,
		resource.Longitude,
		resource.Address,
		resource.Region,
		resource.Capacity,
		resource.AvailableCapacity,
		string(resource.Status),
		resource.Contact,
		resource.Helpline,
		resource.CoordinatorID,
	).Scan(&resource.ID, &resource.CreatedAt, &resource.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", mapPgError(err, "resource"))
	}
	return nil
}

// GetByID возвращает ресурс по его UUID
func (r *ResourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	query := `SELECT ` + resourceColumns + `
		WHERE r.id = $1;
	`
	resource, err := scanResource(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("resource", id)
		}
		return nil, fmt.Errorf("failed to get resource by id: %w", err)
	}
	return resource, nil
}

// List возвращает ресурсы по фильтрам. Пустые значения фильтров не ограничивают выборку.
func (r *ResourceRepository) List(ctx context.Context, filter models.ResourceFilter) ([]*models.Resource, error) {
	order := "DESC"
	if filter.OldestFirst {
		order = "ASC"
	}
	query := `SELECT ` + resourceColumns + `
		WHERE ($1::text = '' OR r.type = $1)
			AND ($2::text = '' OR r.status = $2)
			AND ($3::text = '' OR r.region ILIKE $3)
			AND ($4::text = '' OR r.name ILIKE $4 OR r.description ILIKE $4)
			AND ($5::uuid IS NULL OR r.coordinator_id = $5)
		ORDER BY r.created_at ` + order + `, r.id;
	`
	rows, err := r.db.Query(ctx, query,
		string(filter.Type),
		string(filter.Status),
		containsPattern(filter.Region),
		containsPattern(filter.Search),
		filter.CoordinatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	resources := make([]*models.Resource, 0)
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource row: %w", err)
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return resources, nil
}

// Mutate блокирует строку ресурса, применяет к ней mutate и в той же транзакции
// сохраняет новое состояние и запись аудита. Параллельные вызовы для одного ресурса
// выполняются строго последовательно.
func (r *ResourceRepository) Mutate(ctx context.Context, id uuid.UUID, mutate models.ResourceMutation) (*models.Resource, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if r.lockTimeout > 0 {
		if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`,
			fmt.Sprintf("%dms", r.lockTimeout.Milliseconds())); err != nil {
			return nil, fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	query := `SELECT ` + resourceColumns + `
		WHERE r.id = $1
		FOR UPDATE OF r;
	`
	current, err := scanResource(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("resource", id)
		}
		return nil, fmt.Errorf("failed to lock resource: %w", mapPgError(err, "resource"))
	}

	audit, err := mutate(current)
	if err != nil {
		return nil, err
	}

	if audit != nil {
		audit.ResourceID = current.ID
		audit.ResourceName = current.Name
		err = tx.QueryRow(ctx, `
			INSERT INTO resource_updates (resource_id, coordinator_id, change_log, previous_capacity, new_capacity)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, timestamp;
		`,
			audit.ResourceID,
			audit.CoordinatorID,
			audit.ChangeLog,
			audit.PreviousCapacity,
			audit.NewCapacity,
		).Scan(&audit.ID, &audit.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to record resource update: %w", mapPgError(err, "resource update"))
		}
	}

	update := `
		UPDATE resources SET
			name = $2,
			type = $3,
			description = $4,
			latitude = $5,
			longitude = $6,
			address = $7,
			region = $8,
			capacity = $9,
			available_capacity = $10,
			status = $11,
			contact = $12,
			helpline = $13,
			verified = $14,
			verified_by = $15,
			coordinator_id = $16,
			updated_at = NOW()
		WHERE id = $1
		RETURNING
			updated_at,
			COALESCE((SELECT ` + displayNameSQL("v") + ` FROM users v WHERE v.id = resources.verified_by), ''),
			COALESCE((SELECT ` + displayNameSQL("c") + ` FROM users c WHERE c.id = resources.coordinator_id), '');
	`
	err = tx.QueryRow(ctx, update,
		current.ID,
		current.Name,
		string(current.Type),
		current.Description,
		current.Latitude,
		current.Longitude,
		current.Address,
		current.Region,
		current.Capacity,
		current.AvailableCapacity,
		string(current.Status),
		current.Contact,
		current.Helpline,
		current.Verified,
		current.VerifiedBy,
		current.CoordinatorID,
	).Scan(&current.UpdatedAt, &current.VerifiedByName, &current.CoordinatorName)
	if err != nil {
		return nil, fmt.Errorf("failed to update resource: %w", mapPgError(err, "resource"))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit resource update: %w", mapPgError(err, "resource"))
	}
	return current, nil
}

// Delete удаляет ресурс; журнал изменений удаляется каскадно
func (r *ResourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM resources WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", mapPgError(err, "resource"))
	}

	if cmdTag.RowsAffected() == 0 {
		return apperror.NotFound("resource", id)
	}
	return nil
}

// Stats собирает сводную статистику; все типы и статусы присутствуют в ответе, даже с нулем
func (r *ResourceRepository) Stats(ctx context.Context) (*models.ResourceStats, error) {
	stats := &models.ResourceStats{
		ByType:   make(map[models.ResourceType]int, len(models.ResourceTypes)),
		ByStatus: make(map[models.ResourceStatus]int, len(models.ResourceStatuses)),
	}
	for _, t := range models.ResourceTypes {
		stats.ByType[t] = 0
	}
	for _, s := range models.ResourceStatuses {
		stats.ByStatus[s] = 0
	}

	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE verified),
			COALESCE(SUM(capacity), 0),
			COALESCE(SUM(available_capacity), 0)
		FROM resources;
	`).Scan(&stats.TotalResources, &stats.VerifiedResources, &stats.TotalCapacity, &stats.AvailableCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to get resource totals: %w", err)
	}

	if err := r.countBy(ctx, "type", func(key string, n int) { stats.ByType[models.ResourceType(key)] = n }); err != nil {
		return nil, err
	}
	if err := r.countBy(ctx, "status", func(key string, n int) { stats.ByStatus[models.ResourceStatus(key)] = n }); err != nil {
		return nil, err
	}
	return stats, nil
}

// column всегда константа из Stats
func (r *ResourceRepository) countBy(ctx context.Context, column string, set func(key string, n int)) error {
	rows, err := r.db.Query(ctx, `SELECT `+column+`, COUNT(*) FROM resources GROUP BY `+column+`;`)
	if err != nil {
		return fmt.Errorf("failed to count resources by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("failed to scan resource count by %s: %w", column, err)
		}
		set(key, n)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error count iteration: %w", err)
	}
	return nil
}

// ListUpdates возвращает журнал изменений, новые записи первыми
func (r *ResourceRepository) ListUpdates(ctx context.Context, filter models.UpdateFilter) ([]*models.ResourceUpdate, error) {
	var limit *int
	if filter.Limit > 0 {
		limit = &filter.Limit
	}

	query := `
		SELECT
			u.id,
			u.resource_id,
			r.name,
			u.coordinator_id,
			` + displayNameSQL("c") + `,
			u.timestamp,
			u.change_log,
			u.previous_capacity,
			u.new_capacity
		FROM resource_updates u
		JOIN resources r ON r.id = u.resource_id
		LEFT JOIN users c ON c.id = u.coordinator_id
		WHERE ($1::uuid IS NULL OR u.resource_id = $1)
			AND ($2::uuid IS NULL OR r.coordinator_id = $2)
		ORDER BY u.timestamp DESC, u.id
		LIMIT $3::int;
	`
	rows, err := r.db.Query(ctx, query, filter.ResourceID, filter.CoordinatorScope, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list resource updates: %w", err)
	}
	defer rows.Close()

	updates := make([]*models.ResourceUpdate, 0)
	for rows.Next() {
		update := &models.ResourceUpdate{}
		var coordinatorID *uuid.UUID
		err := rows.Scan(
			&update.ID,
			&update.ResourceID,
			&update.ResourceName,
			&coordinatorID,
			&update.CoordinatorName,
			&update.Timestamp,
			&update.ChangeLog,
			&update.PreviousCapacity,
			&update.NewCapacity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource update row: %w", err)
		}
		if coordinatorID != nil {
			update.CoordinatorID = *coordinatorID
		}
		updates = append(updates, update)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return updates, nil
}

func resourceCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("resource:%s", id.String())
}

// GetResourceFromCache пытается получить ресурс из Redis
func (r *ResourceRepository) GetResourceFromCache(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	if r.redisClient == nil {
		return nil, nil
	}
	val, err := r.redisClient.Get(ctx, resourceCacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resource from cache: %w", err)
	}

	resource := &models.Resource{}
	if err := json.Unmarshal(val, resource); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resource from cache: %w", err)
	}
	return resource, nil
}

// SetResourceCache сохраняет ресурс в Redis
func (r *ResourceRepository) SetResourceCache(ctx context.Context, resource *models.Resource) error {
	if r.redisClient == nil {
		return nil
	}
	val, err := json.Marshal(resource)
	if err != nil {
		return fmt.Errorf("failed to marshal resource for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, resourceCacheKey(resource.ID), val, r.cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set resource in cache: %w", err)
	}
	return nil
}

// InvalidateResourceCache удаляет ресурс из Redis кэша
func (r *ResourceRepository) InvalidateResourceCache(ctx context.Context, id uuid.UUID) error {
	if r.redisClient == nil {
		return nil
	}
	if err := r.redisClient.Del(ctx, resourceCacheKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate resource cache: %w", err)
	}
	return nil
}
