package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shenikar/disaster_resource_system/internal/apperror"
	"github.com/shenikar/disaster_resource_system/internal/models"
	"github.com/shenikar/disaster_resource_system/internal/service"
)

var alertColumns = `
			a.id,
			a.title,
			a.description,
			a.severity,
			a.region,
			a.is_active,
			a.created_by,
			` + displayNameSQL("u") + `,
			a.created_at,
			a.expires_at
		FROM alerts a
		LEFT JOIN users u ON u.id = a.created_by`

type AlertRepository struct {
	db *pgxpool.Pool
}

func NewAlertRepository(db *pgxpool.Pool) service.AlertRepository {
	return &AlertRepository{db: db}
}

func scanAlert(row pgx.Row) (*models.Alert, error) {
	alert := &models.Alert{}
	err := row.Scan(
		&alert.ID,
		&alert.Title,
		&alert.Description,
		&alert.Severity,
		&alert.Region,
		&alert.IsActive,
		&alert.CreatedBy,
		&alert.CreatedByName,
		&alert.CreatedAt,
		&alert.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return alert, nil
}

// Create создает новое оповещение в бд
func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	query := `
		INSERT INTO alerts (title, description, severity, region, is_active, created_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query,
		alert.Title,
		alert.Description,
		string(alert.Severity),
		alert.Region,
		alert.IsActive,
		alert.CreatedBy,
		alert.ExpiresAt,
	).Scan(&alert.ID, &alert.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", mapPgError(err, "alert"))
	}
	return nil
}

// GetByID возвращает оповещение по его UUID
func (r *AlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	alert, err := scanAlert(r.db.QueryRow(ctx, `SELECT `+alertColumns+` WHERE a.id = $1;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("alert", id)
		}
		return nil, fmt.Errorf("failed to get alert by id: %w", err)
	}
	return alert, nil
}

// List возвращает оповещения, новые первыми. ActiveFlag фильтрует только по хранимому флагу:
// срок действия проверяется сервисом.
func (r *AlertRepository) List(ctx context.Context, filter models.AlertFilter) ([]*models.Alert, error) {
	query := `SELECT ` + alertColumns + `
		WHERE ($1::text = '' OR a.region ILIKE $1)
			AND ($2::text = '' OR a.severity = $2)
			AND ($3::boolean IS NULL OR a.is_active = $3)
		ORDER BY a.created_at DESC, a.id;
	`
	rows, err := r.db.Query(ctx, query,
		containsPattern(filter.Region),
		string(filter.Severity),
		filter.ActiveFlag,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*models.Alert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return alerts, nil
}

func (r *AlertRepository) Update(ctx context.Context, alert *models.Alert) error {
	query := `
		UPDATE alerts SET
			title = $1,
			description = $2,
			severity = $3,
			region = $4,
			is_active = $5,
			expires_at = $6
		WHERE id = $7;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		alert.Title,
		alert.Description,
		string(alert.Severity),
		alert.Region,
		alert.IsActive,
		alert.ExpiresAt,
		alert.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", mapPgError(err, "alert"))
	}

	if cmdTag.RowsAffected() == 0 {
		return apperror.NotFound("alert", alert.ID)
	}
	return nil
}

func (r *AlertRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM alerts WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperror.NotFound("alert", id)
	}
	return nil
}
