package service

//go:generate mockgen -source=resource.go -destination=mocks/resource_mock.go -package=mocks

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/disaster_resource_system/internal/apperror"
	"github.com/shenikar/disaster_resource_system/internal/config"
	"github.com/shenikar/disaster_resource_system/internal/geo"
	"github.com/shenikar/disaster_resource_system/internal/metrics"
	"github.com/shenikar/disaster_resource_system/internal/models"
	"github.com/shenikar/disaster_resource_system/internal/policy"
)

// ResourceRepository определяет контракт хранилища ресурсов и журнала изменений
type ResourceRepository interface {
	Create(ctx context.Context, resource *models.Resource) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	List(ctx context.Context, filter models.ResourceFilter) ([]*models.Resource, error)
	Mutate(ctx context.Context, id uuid.UUID, mutate models.ResourceMutation) (*models.Resource, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*models.ResourceStats, error)
	ListUpdates(ctx context.Context, filter models.UpdateFilter) ([]*models.ResourceUpdate, error)
	GetResourceFromCache(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	SetResourceCache(ctx context.Context, resource *models.Resource) error
	InvalidateResourceCache(ctx context.Context, id uuid.UUID) error
}

// ResourceService определяет контракт бизнес-логики управления ресурсами
type ResourceService interface {
	CreateResource(ctx context.Context, actor models.Actor, resource *models.Resource) error
	GetResource(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Resource, error)
	ListResources(ctx context.Context, actor models.Actor, filter models.ResourceFilter) ([]*models.Resource, error)
	UpdateResource(ctx context.Context, actor models.Actor, id uuid.UUID, patch models.ResourcePatch) (*models.Resource, error)
	UpdateCapacity(ctx context.Context, actor models.Actor, id uuid.UUID, newAvailable *int, changeLog string) (*models.Resource, error)
	VerifyResource(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Resource, error)
	AssignCoordinator(ctx context.Context, actor models.Actor, id, coordinatorID uuid.UUID) (*models.Resource, error)
	DeleteResource(ctx context.Context, actor models.Actor, id uuid.UUID) error
	Stats(ctx context.Context, actor models.Actor) (*models.ResourceStats, error)
	Export(ctx context.Context, actor models.Actor, w io.Writer) error
	ListUpdates(ctx context.Context, actor models.Actor, filter models.UpdateFilter) ([]*models.ResourceUpdate, error)
}

// ExportHeader заголовок CSV-выгрузки ресурсов
var ExportHeader = []string{"Name", "Type", "Status", "Latitude", "Longitude", "Region", "Capacity", "Available", "Verified", "Coordinator"}

type resourceService struct {
	repo   ResourceRepository
	users  UserRepository
	logger *logrus.Logger
	cfg    *config.Config
}

func NewResourceService(repo ResourceRepository, users UserRepository, logger *logrus.Logger, cfg *config.Config) ResourceService {
	return &resourceService{
		repo:   repo,
		users:  users,
		logger: logger,
		cfg:    cfg,
	}
}

// CreateResource создает ресурс; доступная вместимость сверх общей молча урезается
func (s *resourceService) CreateResource(ctx context.Context, actor models.Actor, resource *models.Resource) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "resource",
		"method":  "CreateResource",
		"actor":   actor.ID,
		"name":    resource.Name,
	})
	log.Info("Attempting to create a new resource")

	if err := policy.Authorize(actor, policy.ActionResourceCreate); err != nil {
		log.WithError(err).Warn("Resource creation refused by policy")
		return err
	}
	if err := validateNewResource(resource); err != nil {
		log.WithError(err).Warn("Resource validation failed")
		return err
	}

	resource.Latitude = geo.RoundCoordinate(resource.Latitude)
	resource.Longitude = geo.RoundCoordinate(resource.Longitude)
	if resource.Status == "" {
		resource.Status = models.ResourceStatusOpen
	}
	if resource.ClampAvailable() {
		log.WithField("capacity", resource.Capacity).Info("Available capacity clamped to total capacity")
	}
	resource.Verified = false
	resource.VerifiedBy = nil

	switch {
	case actor.Role == models.RoleCoordinator:
		coordinator, err := s.lookupCoordinator(ctx, actor.ID)
		if err != nil {
			log.WithError(err).Error("Failed to load creating coordinator")
			return err
		}
		resource.CoordinatorID = &actor.ID
		resource.CoordinatorName = coordinator.DisplayName()
	case resource.CoordinatorID != nil:
		coordinator, err := s.lookupCoordinator(ctx, *resource.CoordinatorID)
		if err != nil {
			log.WithError(err).Warn("Invalid coordinator for new resource")
			return err
		}
		resource.CoordinatorName = coordinator.DisplayName()
	}

	if err := s.repo.Create(ctx, resource); err != nil {
		log.WithError(err).Error("Failed to create resource in repository")
		return fmt.Errorf("service: could not create resource: %w", err)
	}

	log.WithField("resource_id", resource.ID).Info("Resource created successfully")
	return nil
}

// GetResource получает ресурс по ID, используя кеш
func (s *resourceService) GetResource(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Resource, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "resource",
		"method":      "GetResource",
		"resource_id": id,
	})

	if err := policy.Authorize(actor, policy.ActionResourceRead); err != nil {
		return nil, err
	}

	var (
		resource *models.Resource
		err      error
	)
	if policy.OwnScope(actor, policy.ActionResourceRead) {
		// Владение проверяется по базе: кеш может хранить прежнего координатора до истечения TTL
		resource, err = s.repo.GetByID(ctx, id)
		if err != nil {
			log.WithError(err).Warn("Failed to get resource from repository")
			return nil, fmt.Errorf("service: could not get resource: %w", err)
		}
	} else {
		resource, err = s.load(ctx, log, id)
		if err != nil {
			return nil, err
		}
	}

	if err := policy.AuthorizeResource(actor, policy.ActionResourceRead, resource); err != nil {
		log.WithError(err).Warn("Resource read refused by policy")
		return nil, err
	}
	return resource, nil
}

// ListResources возвращает ресурсы по фильтрам; координатор видит только назначенные ему
func (s *resourceService) ListResources(ctx context.Context, actor models.Actor, filter models.ResourceFilter) ([]*models.Resource, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "resource",
		"method":  "ListResources",
	})

	if err := policy.Authorize(actor, policy.ActionResourceRead); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	if policy.OwnScope(actor, policy.ActionResourceRead) {
		filter.CoordinatorID = &actor.ID
	}

	resources, err := s.repo.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list resources from repository")
		return nil, fmt.Errorf("service: could not list resources: %w", err)
	}

	log.WithField("count", len(resources)).Debug("Resources listed successfully")
	return resources, nil
}

// UpdateResource изменяет описательные поля ресурса. Если общая вместимость опускается
// ниже доступной, доступная урезается, и это фиксируется в журнале изменений.
func (s *resourceService) UpdateResource(ctx context.Context, actor models.Actor, id uuid.UUID, patch models.ResourcePatch) (*models.Resource, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "resource",
		"method":      "UpdateResource",
		"resource_id": id,
		"actor":       actor.ID,
	})
	log.Info("Attempting to update resource")

	if err := policy.Authorize(actor, policy.ActionResourceUpdate); err != nil {
		log.WithError(err).Warn("Resource update refused by policy")
		return nil, err
	}
	if err := validatePatch(patch); err != nil {
		log.WithError(err).Warn("Resource patch validation failed")
		return nil, err
	}

	updated, err := s.repo.Mutate(ctx, id, func(current *models.Resource) (*models.ResourceUpdate, error) {
		applyPatch(current, patch)

		previous := current.AvailableCapacity
		if !current.ClampAvailable() {
			return nil, nil
		}
		current.Status = models.NextStatus(current.Status, current.AvailableCapacity)
		return &models.ResourceUpdate{
			CoordinatorID:    actor.ID,
			ChangeLog:        fmt.Sprintf("Capacity reduced to %d; available capacity clamped", current.Capacity),
			PreviousCapacity: previous,
			NewCapacity:      current.AvailableCapacity,
		}, nil
	})
	if err != nil {
		log.WithError(err).Warn("Failed to update resource in repository")
		return nil, fmt.Errorf("service: could not update resource: %w", err)
	}

	s.invalidate(ctx, log, id)
	log.Info("Resource updated successfully")
	return updated, nil
}

// UpdateCapacity атомарно записывает аудит, новую доступную вместимость и выведенный статус
func (s *resourceService) UpdateCapacity(ctx context.Context, actor models.Actor, id uuid.UUID, newAvailable *int, changeLog string) (*models.Resource, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "resource",
		"method":      "UpdateCapacity",
		"resource_id": id,
		"actor":       actor.ID,
	})
	log.Info("Attempting to update resource capacity")

	if err := policy.Authorize(actor, policy.ActionCapacityUpdate); err != nil {
		metrics.RecordCapacityUpdate("denied")
		log.WithError(err).Warn("Capacity update refused by policy")
		return nil, err
	}
	if newAvailable == nil {
		metrics.RecordCapacityUpdate("invalid")
		return nil, apperror.Validation("available_capacity is required")
	}
	available := *newAvailable
	if available < 0 {
		metrics.RecordCapacityUpdate("invalid")
		return nil, apperror.Validation("available_capacity must be >= 0, got %d", available)
	}
	if strings.TrimSpace(changeLog) == "" {
		changeLog = models.DefaultChangeLog
	}

	// Проверка владения до обращения к хранилищу на запись
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		metrics.RecordCapacityUpdate("not_found")
		log.WithError(err).Warn("Attempted to update capacity of a missing resource")
		return nil, fmt.Errorf("service: could not update capacity: %w", err)
	}
	if err := policy.AuthorizeResource(actor, policy.ActionCapacityUpdate, existing); err != nil {
		metrics.RecordCapacityUpdate("denied")
		log.WithError(err).Warn("Capacity update refused by policy")
		return nil, err
	}

	updated, err := s.repo.Mutate(ctx, id, func(current *models.Resource) (*models.ResourceUpdate, error) {
		// Назначение могло измениться между чтением и блокировкой строки
		if err := policy.AuthorizeResource(actor, policy.ActionCapacityUpdate, current); err != nil {
			return nil, err
		}
		if available > current.Capacity {
			return nil, apperror.Validation("available_capacity %d exceeds capacity %d", available, current.Capacity)
		}

		previous := current.AvailableCapacity
		current.AvailableCapacity = available
		current.Status = models.NextStatus(current.Status, available)

		return &models.ResourceUpdate{
			CoordinatorID:    actor.ID,
			ChangeLog:        changeLog,
			PreviousCapacity: previous,
			NewCapacity:      available,
		}, nil
	})
	if err != nil {
		metrics.RecordCapacityUpdate(apperror.KindOf(err).String())
		log.WithError(err).Warn("Capacity update failed")
		return nil, fmt.Errorf("service: could not update capacity: %w", err)
	}

	s.invalidate(ctx, log, id)
	metrics.RecordCapacityUpdate("success")
	log.WithFields(logrus.Fields{
		"available_capacity": updated.AvailableCapacity,
		"status":             updated.Status,
	}).Info("Resource capacity updated successfully")
	return updated, nil
}

// VerifyResource отмечает ресурс проверенным; повторная проверка лишь перезаписывает verified_by
func (s *resourceService) VerifyResource(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Resource, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "resource",
		"method":      "VerifyResource",
		"resource_id": id,
		"actor":       actor.ID,
	})

	if err := policy.Authorize(actor, policy.ActionResourceVerify); err != nil {
		log.WithError(err).Warn("Verification refused by policy")
		return nil, err
	}

	verifiedBy := actor.ID
	updated, err := s.repo.Mutate(ctx, id, func(current *models.Resource) (*models.ResourceUpdate, error) {
		current.Verified = true
		current.VerifiedBy = &verifiedBy
		return nil, nil
	})
	if err != nil {
		log.WithError(err).Warn("Failed to verify resource")
		return nil, fmt.Errorf("service: could not verify resource: %w", err)
	}

	s.invalidate(ctx, log, id)
	log.Info("Resource verified successfully")
	return updated, nil
}

// AssignCoordinator назначает ресурсу координатора, перезаписывая предыдущее назначение
func (s *resourceService) AssignCoordinator(ctx context.Context, actor models.Actor, id, coordinatorID uuid.UUID) (*models.Resource, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":        "resource",
		"method":         "AssignCoordinator",
		"resource_id":    id,
		"coordinator_id": coordinatorID,
	})

	if err := policy.Authorize(actor, policy.ActionResourceAssign); err != nil {
		log.WithError(err).Warn("Coordinator assignment refused by policy")
		return nil, err
	}

	coordinator, err := s.lookupCoordinator(ctx, coordinatorID)
	if err != nil {
		log.WithError(err).Warn("Invalid coordinator for assignment")
		return nil, err
	}

	updated, err := s.repo.Mutate(ctx, id, func(current *models.Resource) (*models.ResourceUpdate, error) {
		current.CoordinatorID = &coordinator.ID
		current.CoordinatorName = coordinator.DisplayName()
		return nil, nil
	})
	if err != nil {
		log.WithError(err).Warn("Failed to assign coordinator")
		return nil, fmt.Errorf("service: could not assign coordinator: %w", err)
	}

	s.invalidate(ctx, log, id)
	log.Info("Coordinator assigned successfully")
	return updated, nil
}

// DeleteResource удаляет ресурс вместе с журналом его изменений
func (s *resourceService) DeleteResource(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "resource",
		"method":      "DeleteResource",
		"resource_id": id,
		"actor":       actor.ID,
	})
	log.Info("Attempting to delete resource")

	if err := policy.Authorize(actor, policy.ActionResourceDelete); err != nil {
		log.WithError(err).Warn("Resource deletion refused by policy")
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to delete resource in repository")
		return fmt.Errorf("service: could not delete resource: %w", err)
	}

	s.invalidate(ctx, log, id)
	log.Info("Resource deleted successfully")
	return nil
}

func (s *resourceService) Stats(ctx context.Context, actor models.Actor) (*models.ResourceStats, error) {
	if err := policy.Authorize(actor, policy.ActionResourceStats); err != nil {
		return nil, err
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("method", "Stats").Error("Failed to collect resource stats")
		return nil, fmt.Errorf("service: could not collect stats: %w", err)
	}
	return stats, nil
}

// Export пишет CSV-выгрузку всех ресурсов
func (s *resourceService) Export(ctx context.Context, actor models.Actor, w io.Writer) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "resource",
		"method":  "Export",
		"actor":   actor.ID,
	})

	if err := policy.Authorize(actor, policy.ActionResourceExport); err != nil {
		log.WithError(err).Warn("Export refused by policy")
		return err
	}

	resources, err := s.repo.List(ctx, models.ResourceFilter{OldestFirst: true})
	if err != nil {
		log.WithError(err).Error("Failed to list resources for export")
		return fmt.Errorf("service: could not export resources: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("service: could not write export header: %w", err)
	}
	for _, r := range resources {
		row := []string{
			r.Name,
			string(r.Type),
			string(r.Status),
			strconv.FormatFloat(r.Latitude, 'f', -1, 64),
			strconv.FormatFloat(r.Longitude, 'f', -1, 64),
			r.Region,
			strconv.Itoa(r.Capacity),
			strconv.Itoa(r.AvailableCapacity),
			strconv.FormatBool(r.Verified),
			r.CoordinatorName,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("service: could not write export row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("service: could not flush export: %w", err)
	}

	log.WithField("count", len(resources)).Info("Resources exported")
	return nil
}

// ListUpdates возвращает журнал изменений, новые записи первыми.
// Limit == 0 означает лимит по умолчанию, Limit < 0 без ограничения.
func (s *resourceService) ListUpdates(ctx context.Context, actor models.Actor, filter models.UpdateFilter) ([]*models.ResourceUpdate, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "resource",
		"method":  "ListUpdates",
		"actor":   actor.ID,
	})

	if err := policy.Authorize(actor, policy.ActionUpdateHistory); err != nil {
		log.WithError(err).Warn("Update history refused by policy")
		return nil, err
	}

	if policy.OwnScope(actor, policy.ActionUpdateHistory) {
		if filter.ResourceID != nil {
			resource, err := s.repo.GetByID(ctx, *filter.ResourceID)
			if err != nil {
				return nil, fmt.Errorf("service: could not list updates: %w", err)
			}
			if err := policy.AuthorizeResource(actor, policy.ActionUpdateHistory, resource); err != nil {
				log.WithError(err).Warn("Update history refused by policy")
				return nil, err
			}
		}
		filter.CoordinatorScope = &actor.ID
	}

	switch {
	case filter.Limit == 0:
		filter.Limit = s.cfg.UpdateHistoryLimit
	case filter.Limit < 0:
		filter.Limit = 0
	}

	updates, err := s.repo.ListUpdates(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list resource updates")
		return nil, fmt.Errorf("service: could not list updates: %w", err)
	}
	return updates, nil
}

func (s *resourceService) load(ctx context.Context, log *logrus.Entry, id uuid.UUID) (*models.Resource, error) {
	cached, err := s.repo.GetResourceFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read resource cache")
	}
	if cached != nil {
		metrics.RecordCacheHit()
		return cached, nil
	}
	metrics.RecordCacheMiss()

	resource, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get resource from repository")
		return nil, fmt.Errorf("service: could not get resource: %w", err)
	}

	if err := s.repo.SetResourceCache(ctx, resource); err != nil {
		log.WithError(err).Warn("Failed to cache resource")
	}
	return resource, nil
}

func (s *resourceService) invalidate(ctx context.Context, log *logrus.Entry, id uuid.UUID) {
	if err := s.repo.InvalidateResourceCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate resource cache")
	}
}

func (s *resourceService) lookupCoordinator(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: could not load coordinator: %w", err)
	}
	if user.Role != models.RoleCoordinator {
		return nil, apperror.Validation("user %s has role %q, expected coordinator", userID, user.Role)
	}
	return user, nil
}
