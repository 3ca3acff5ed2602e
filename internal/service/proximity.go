package service

//go:generate mockgen -source=proximity.go -destination=mocks/proximity_mock.go -package=mocks

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/disaster_resource_system/internal/apperror"
	"github.com/shenikar/disaster_resource_system/internal/config"
	"github.com/shenikar/disaster_resource_system/internal/geo"
	"github.com/shenikar/disaster_resource_system/internal/metrics"
	"github.com/shenikar/disaster_resource_system/internal/models"
	"github.com/shenikar/disaster_resource_system/internal/policy"
)

// ProximityService определяет контракт поиска ближайших ресурсов
type ProximityService interface {
	FindNearby(ctx context.Context, actor models.Actor, query models.NearbyQuery) ([]*models.NearbyResource, error)
}

type proximityService struct {
	repo   ResourceRepository
	logger *logrus.Logger
	cfg    *config.Config
}

func NewProximityService(repo ResourceRepository, logger *logrus.Logger, cfg *config.Config) ProximityService {
	return &proximityService{
		repo:   repo,
		logger: logger,
		cfg:    cfg,
	}
}

// FindNearby возвращает ресурсы в радиусе maxDistance (включительно), ближайшие первыми.
// Полный перебор кандидатов: пространственный индекс не используется.
func (s *proximityService) FindNearby(ctx context.Context, actor models.Actor, query models.NearbyQuery) ([]*models.NearbyResource, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "proximity",
		"method":  "FindNearby",
	})

	if err := policy.Authorize(actor, policy.ActionResourceRead); err != nil {
		return nil, err
	}
	if query.Latitude == nil || query.Longitude == nil {
		return nil, apperror.Validation("lat and lon are required")
	}
	lat, lon := *query.Latitude, *query.Longitude
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	maxKm := s.cfg.NearbyDefaultKm
	if query.MaxDistanceKm != nil {
		maxKm = *query.MaxDistanceKm
	}
	if math.IsNaN(maxKm) || maxKm < 0 {
		return nil, apperror.Validation("max_distance must be >= 0, got %v", maxKm)
	}

	filter := query.Filter
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	if policy.OwnScope(actor, policy.ActionResourceRead) {
		filter.CoordinatorID = &actor.ID
	}
	// Кандидаты в порядке вставки: равные расстояния сохраняют этот порядок
	filter.OldestFirst = true

	started := time.Now()
	candidates, err := s.repo.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list candidate resources")
		return nil, fmt.Errorf("service: could not find nearby resources: %w", err)
	}

	result := make([]*models.NearbyResource, 0)
	for _, r := range candidates {
		d := geo.Distance(lat, lon, r.Latitude, r.Longitude)
		if d <= maxKm {
			result = append(result, &models.NearbyResource{
				Resource:   r,
				DistanceKm: geo.Round2(d),
			})
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DistanceKm < result[j].DistanceKm
	})

	metrics.ObserveNearbyQuery(time.Since(started), len(candidates))
	log.WithFields(logrus.Fields{
		"scanned": len(candidates),
		"matched": len(result),
		"max_km":  maxKm,
	}).Debug("Nearby query completed")
	return result, nil
}
