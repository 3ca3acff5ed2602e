package models

import (
	"time"

	"github.com/google/uuid"
)

type ResourceType string

const (
	ResourceTypeHospital ResourceType = "hospital"
	ResourceTypePolice   ResourceType = "police"
	ResourceTypeFire     ResourceType = "fire"
	ResourceTypeShelter  ResourceType = "shelter"
	ResourceTypeFood     ResourceType = "food"
	ResourceTypeWater    ResourceType = "water"
)

// ResourceTypes перечисляет допустимые типы в порядке отображения
var ResourceTypes = []ResourceType{
	ResourceTypeHospital,
	ResourceTypePolice,
	ResourceTypeFire,
	ResourceTypeShelter,
	ResourceTypeFood,
	ResourceTypeWater,
}

func (t ResourceType) Valid() bool {
	for _, v := range ResourceTypes {
		if v == t {
			return true
		}
	}
	return false
}

type ResourceStatus string

const (
	ResourceStatusOpen   ResourceStatus = "open"
	ResourceStatusClosed ResourceStatus = "closed"
	ResourceStatusFull   ResourceStatus = "full"
)

var ResourceStatuses = []ResourceStatus{
	ResourceStatusOpen,
	ResourceStatusClosed,
	ResourceStatusFull,
}

func (s ResourceStatus) Valid() bool {
	switch s {
	case ResourceStatusOpen, ResourceStatusClosed, ResourceStatusFull:
		return true
	}
	return false
}

// Resource экстренный ресурс (больница, убежище и т.п.) с отслеживаемой вместимостью
type Resource struct {
	ID                uuid.UUID      `json:"id"`
	Name              string         `json:"name"`
	Type              ResourceType   `json:"type"`
	Description       string         `json:"description"`
	Latitude          float64        `json:"latitude"`
	Longitude         float64        `json:"longitude"`
	Address           string         `json:"address"`
	Region            string         `json:"region"`
	Capacity          int            `json:"capacity"`
	AvailableCapacity int            `json:"available_capacity"`
	Status            ResourceStatus `json:"status"`
	Contact           string         `json:"contact"`
	Helpline          string         `json:"helpline,omitempty"`
	Verified          bool           `json:"verified"`
	VerifiedBy        *uuid.UUID     `json:"verified_by,omitempty"`
	VerifiedByName    string         `json:"verified_by_name,omitempty"`
	CoordinatorID     *uuid.UUID     `json:"coordinator_id,omitempty"`
	CoordinatorName   string         `json:"coordinator_name,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// ClampAvailable опускает available_capacity до capacity, если инвариант нарушен.
// Возвращает true, если значение было изменено.
func (r *Resource) ClampAvailable() bool {
	if r.AvailableCapacity > r.Capacity {
		r.AvailableCapacity = r.Capacity
		return true
	}
	return false
}

// ManagedBy сообщает, назначен ли пользователь координатором ресурса
func (r *Resource) ManagedBy(userID uuid.UUID) bool {
	return r.CoordinatorID != nil && *r.CoordinatorID == userID
}

// NextStatus выводит статус после изменения доступной вместимости
func NextStatus(current ResourceStatus, newAvailable int) ResourceStatus {
	if newAvailable == 0 {
		return ResourceStatusFull
	}
	if current == ResourceStatusFull && newAvailable > 0 {
		return ResourceStatusOpen
	}
	return current
}

// ResourcePatch изменяемые администратором описательные поля.
// Доступная вместимость здесь отсутствует: она меняется только через обновление вместимости.
type ResourcePatch struct {
	Name        *string
	Type        *ResourceType
	Description *string
	Latitude    *float64
	Longitude   *float64
	Address     *string
	Region      *string
	Capacity    *int
	Status      *ResourceStatus
	Contact     *string
	Helpline    *string
}

// ResourceFilter необязательные фильтры списка ресурсов
type ResourceFilter struct {
	Type          ResourceType
	Status        ResourceStatus
	Region        string
	Search        string
	CoordinatorID *uuid.UUID
	OldestFirst   bool
}

// NearbyResource ресурс с расстоянием до точки запроса.
// Расстояние вычисляется во время запроса и никогда не сохраняется.
type NearbyResource struct {
	Resource   *Resource `json:"resource"`
	DistanceKm float64   `json:"distance"`
}

// NearbyQuery параметры поиска ближайших ресурсов
type NearbyQuery struct {
	Latitude      *float64
	Longitude     *float64
	MaxDistanceKm *float64
	Filter        ResourceFilter
}

// ResourceStats сводная статистика по ресурсам
type ResourceStats struct {
	TotalResources    int                    `json:"total_resources"`
	VerifiedResources int                    `json:"verified_resources"`
	TotalCapacity     int                    `json:"total_capacity"`
	AvailableCapacity int                    `json:"available_capacity"`
	ByType            map[ResourceType]int   `json:"by_type"`
	ByStatus          map[ResourceStatus]int `json:"by_status"`
}
