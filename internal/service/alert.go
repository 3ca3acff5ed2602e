package service

//go:generate mockgen -source=alert.go -destination=mocks/alert_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/disaster_resource_system/internal/apperror"
	"github.com/shenikar/disaster_resource_system/internal/models"
	"github.com/shenikar/disaster_resource_system/internal/policy"
)

// AlertRepository определяет контракт для работы с бд оповещений
type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Alert, error)
	List(ctx context.Context, filter models.AlertFilter) ([]*models.Alert, error)
	Update(ctx context.Context, alert *models.Alert) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AlertService определяет контракт бизнес-логики оповещений
type AlertService interface {
	CreateAlert(ctx context.Context, actor models.Actor, alert *models.Alert) error
	GetAlert(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Alert, error)
	ListAlerts(ctx context.Context, actor models.Actor, filter models.AlertFilter) ([]*models.Alert, error)
	ListActive(ctx context.Context, actor models.Actor, region string) ([]*models.Alert, error)
	UpdateAlert(ctx context.Context, actor models.Actor, id uuid.UUID, patch models.AlertPatch) (*models.Alert, error)
	DeactivateAlert(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Alert, error)
	DeleteAlert(ctx context.Context, actor models.Actor, id uuid.UUID) error
}

type alertService struct {
	repo   AlertRepository
	logger *logrus.Logger
	now    func() time.Time
}

func NewAlertService(repo AlertRepository, logger *logrus.Logger) AlertService {
	return &alertService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// CreateAlert создает активное оповещение от имени администратора
func (s *alertService) CreateAlert(ctx context.Context, actor models.Actor, alert *models.Alert) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "alert",
		"method":  "CreateAlert",
		"title":   alert.Title,
	})
	log.Info("Attempting to create a new alert")

	if err := policy.Authorize(actor, policy.ActionAlertCreate); err != nil {
		log.WithError(err).Warn("Alert creation refused by policy")
		return err
	}

	alert.Title = strings.TrimSpace(alert.Title)
	alert.Region = strings.TrimSpace(alert.Region)
	if alert.Title == "" {
		return apperror.Validation("title is required")
	}
	if alert.Region == "" {
		return apperror.Validation("region is required")
	}
	if alert.Severity == "" {
		alert.Severity = models.AlertSeverityMedium
	}
	if !alert.Severity.Valid() {
		return apperror.Validation("invalid severity %q", alert.Severity)
	}
	alert.IsActive = true
	alert.CreatedBy = actor.ID

	if err := s.repo.Create(ctx, alert); err != nil {
		log.WithError(err).Error("Failed to create alert in repository")
		return fmt.Errorf("service: could not create alert: %w", err)
	}

	log.WithField("alert_id", alert.ID).Info("Alert created successfully")
	return nil
}

func (s *alertService) GetAlert(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Alert, error) {
	if err := policy.Authorize(actor, policy.ActionAlertRead); err != nil {
		return nil, err
	}

	alert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"service":  "alert",
			"method":   "GetAlert",
			"alert_id": id,
		}).Warn("Failed to get alert from repository")
		return nil, fmt.Errorf("service: could not get alert: %w", err)
	}
	return alert, nil
}

// ListAlerts возвращает все оповещения, включая истекшие и деактивированные
func (s *alertService) ListAlerts(ctx context.Context, actor models.Actor, filter models.AlertFilter) ([]*models.Alert, error) {
	if err := policy.Authorize(actor, policy.ActionAlertRead); err != nil {
		return nil, err
	}
	if filter.Severity != "" && !filter.Severity.Valid() {
		return nil, apperror.Validation("invalid severity %q", filter.Severity)
	}

	alerts, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.WithError(err).WithField("method", "ListAlerts").Error("Failed to list alerts")
		return nil, fmt.Errorf("service: could not list alerts: %w", err)
	}
	return alerts, nil
}

// ListActive возвращает оповещения, активные на текущий момент.
// Истечение срока вычисляется при чтении, хранимый флаг не меняется.
func (s *alertService) ListActive(ctx context.Context, actor models.Actor, region string) ([]*models.Alert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "alert",
		"method":  "ListActive",
		"region":  region,
	})

	if err := policy.Authorize(actor, policy.ActionAlertRead); err != nil {
		return nil, err
	}

	flagged := true
	candidates, err := s.repo.List(ctx, models.AlertFilter{
		Region:     strings.TrimSpace(region),
		ActiveFlag: &flagged,
	})
	if err != nil {
		log.WithError(err).Error("Failed to list alerts")
		return nil, fmt.Errorf("service: could not list active alerts: %w", err)
	}

	now := s.now()
	active := make([]*models.Alert, 0, len(candidates))
	for _, a := range candidates {
		if a.ActiveAt(now) {
			active = append(active, a)
		}
	}

	log.WithField("count", len(active)).Debug("Active alerts listed")
	return active, nil
}

func (s *alertService) UpdateAlert(ctx context.Context, actor models.Actor, id uuid.UUID, patch models.AlertPatch) (*models.Alert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "UpdateAlert",
		"alert_id": id,
	})
	log.Info("Attempting to update alert")

	if err := policy.Authorize(actor, policy.ActionAlertUpdate); err != nil {
		log.WithError(err).Warn("Alert update refused by policy")
		return nil, err
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, apperror.Validation("title must not be empty")
	}
	if patch.Region != nil && strings.TrimSpace(*patch.Region) == "" {
		return nil, apperror.Validation("region must not be empty")
	}
	if patch.Severity != nil && !patch.Severity.Valid() {
		return nil, apperror.Validation("invalid severity %q", *patch.Severity)
	}

	alert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to update a missing alert")
		return nil, fmt.Errorf("service: could not update alert: %w", err)
	}

	if patch.Title != nil {
		alert.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		alert.Description = *patch.Description
	}
	if patch.Severity != nil {
		alert.Severity = *patch.Severity
	}
	if patch.Region != nil {
		alert.Region = strings.TrimSpace(*patch.Region)
	}
	if patch.IsActive != nil {
		alert.IsActive = *patch.IsActive
	}
	if patch.ExpiresAt != nil {
		alert.ExpiresAt = patch.ExpiresAt
	}
	if patch.ClearExpiry {
		alert.ExpiresAt = nil
	}

	if err := s.repo.Update(ctx, alert); err != nil {
		log.WithError(err).Error("Failed to update alert in repository")
		return nil, fmt.Errorf("service: could not update alert: %w", err)
	}

	log.Info("Alert updated successfully")
	return alert, nil
}

// DeactivateAlert снимает флаг активности; оповещение остается в полном списке
func (s *alertService) DeactivateAlert(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Alert, error) {
	inactive := false
	return s.UpdateAlert(ctx, actor, id, models.AlertPatch{IsActive: &inactive})
}

func (s *alertService) DeleteAlert(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "DeleteAlert",
		"alert_id": id,
	})

	if err := policy.Authorize(actor, policy.ActionAlertDelete); err != nil {
		log.WithError(err).Warn("Alert deletion refused by policy")
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to delete alert in repository")
		return fmt.Errorf("service: could not delete alert: %w", err)
	}

	log.Info("Alert deleted successfully")
	return nil
}
