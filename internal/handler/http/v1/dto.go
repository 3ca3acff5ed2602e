package v1

import (
	"time"

	"github.com/google/uuid"
)

// CreateResourceRequest DTO для создания ресурса
// @Description DTO для создания ресурса
type CreateResourceRequest struct {
	Name              string     `json:"name" validate:"required,max=200"`
	Type              string     `json:"type" validate:"required,oneof=hospital police fire shelter food water"`
	Description       string     `json:"description,omitempty"`
	Latitude          *float64   `json:"latitude" validate:"required,latitude"`
	Longitude         *float64   `json:"longitude" validate:"required,longitude"`
	Address           string     `json:"address" validate:"required"`
	Region            string     `json:"region" validate:"required,max=100"`
	Capacity          *int       `json:"capacity" validate:"required,gte=0"`
	AvailableCapacity *int       `json:"available_capacity" validate:"required,gte=0"`
	Status            string     `json:"status,omitempty" validate:"omitempty,oneof=open closed full"`
	Contact           string     `json:"contact" validate:"required,max=100"`
	Helpline          string     `json:"helpline,omitempty" validate:"max=100"`
	CoordinatorID     *uuid.UUID `json:"coordinator_id,omitempty"`
}

// UpdateResourceRequest DTO для изменения ресурса. Передаются только изменяемые поля;
// available_capacity здесь не принимается.
// @Description DTO для изменения ресурса
type UpdateResourceRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Type        *string  `json:"type,omitempty" validate:"omitempty,oneof=hospital police fire shelter food water"`
	Description *string  `json:"description,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Address     *string  `json:"address,omitempty" validate:"omitempty,min=1"`
	Region      *string  `json:"region,omitempty" validate:"omitempty,min=1,max=100"`
	Capacity    *int     `json:"capacity,omitempty" validate:"omitempty,gte=0"`
	Status      *string  `json:"status,omitempty" validate:"omitempty,oneof=open closed full"`
	Contact     *string  `json:"contact,omitempty" validate:"omitempty,min=1,max=100"`
	Helpline    *string  `json:"helpline,omitempty" validate:"omitempty,max=100"`
}

// UpdateCapacityRequest DTO для обновления доступной вместимости
// @Description DTO для обновления доступной вместимости
type UpdateCapacityRequest struct {
	AvailableCapacity *int   `json:"available_capacity" validate:"required"`
	ChangeLog         string `json:"change_log,omitempty" validate:"max=1000"`
}

// AssignCoordinatorRequest DTO для назначения координатора
// @Description DTO для назначения координатора
type AssignCoordinatorRequest struct {
	CoordinatorID *uuid.UUID `json:"coordinator_id" validate:"required"`
}

// ResourceResponse DTO для ответа с информацией о ресурсе
// @Description DTO для ответа с информацией о ресурсе
type ResourceResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Type              string     `json:"type"`
	Description       string     `json:"description"`
	Latitude          float64    `json:"latitude"`
	Longitude         float64    `json:"longitude"`
	Address           string     `json:"address"`
	Region            string     `json:"region"`
	Capacity          int        `json:"capacity"`
	AvailableCapacity int        `json:"available_capacity"`
	Status            string     `json:"status"`
	Contact           string     `json:"contact"`
	Helpline          string     `json:"helpline,omitempty"`
	Verified          bool       `json:"verified"`
	VerifiedBy        *uuid.UUID `json:"verified_by,omitempty"`
	VerifiedByName    string     `json:"verified_by_name,omitempty"`
	CoordinatorID     *uuid.UUID `json:"coordinator,omitempty"`
	CoordinatorName   string     `json:"coordinator_name,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NearbyResourceResponse ресурс с расстоянием до точки запроса в километрах
// @Description ресурс с расстоянием до точки запроса
type NearbyResourceResponse struct {
	ResourceResponse
	Distance float64 `json:"distance"`
}

// ResourceUpdateResponse DTO записи журнала изменений вместимости
// @Description DTO записи журнала изменений вместимости
type ResourceUpdateResponse struct {
	ID               uuid.UUID `json:"id"`
	ResourceID       uuid.UUID `json:"resource"`
	ResourceName     string    `json:"resource_name"`
	CoordinatorID    uuid.UUID `json:"coordinator"`
	CoordinatorName  string    `json:"coordinator_name"`
	Timestamp        time.Time `json:"timestamp"`
	ChangeLog        string    `json:"change_log"`
	PreviousCapacity int       `json:"previous_capacity"`
	NewCapacity      int       `json:"new_capacity"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	TotalResources    int            `json:"total_resources"`
	VerifiedResources int            `json:"verified_resources"`
	TotalCapacity     int            `json:"total_capacity"`
	AvailableCapacity int            `json:"available_capacity"`
	ByType            map[string]int `json:"by_type"`
	ByStatus          map[string]int `json:"by_status"`
}

// CreateAlertRequest DTO для создания оповещения
// @Description DTO для создания оповещения
type CreateAlertRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description,omitempty"`
	Severity    string     `json:"severity,omitempty" validate:"omitempty,oneof=low medium high"`
	Region      string     `json:"region" validate:"required,max=100"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// UpdateAlertRequest DTO для изменения оповещения
// @Description DTO для изменения оповещения
type UpdateAlertRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty"`
	Severity    *string    `json:"severity,omitempty" validate:"omitempty,oneof=low medium high"`
	Region      *string    `json:"region,omitempty" validate:"omitempty,min=1,max=100"`
	IsActive    *bool      `json:"is_active,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ClearExpiry bool       `json:"clear_expiry,omitempty"`
}

// AlertResponse DTO для ответа с информацией об оповещении
// @Description DTO для ответа с информацией об оповещении
type AlertResponse struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Severity      string     `json:"severity"`
	Region        string     `json:"region"`
	IsActive      bool       `json:"is_active"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	CreatedByName string     `json:"created_by_name,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// UpdateUserRequest DTO для изменения пользователя администратором
// @Description DTO для изменения пользователя администратором
type UpdateUserRequest struct {
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName   *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName    *string `json:"last_name,omitempty" validate:"omitempty,max=150"`
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,max=20"`
	Role        *string `json:"role,omitempty" validate:"omitempty,oneof=citizen coordinator admin"`
	IsApproved  *bool   `json:"is_approved,omitempty"`
}

// UserResponse DTO для ответа с информацией о пользователе
// @Description DTO для ответа с информацией о пользователе
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Role        string    `json:"role"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	IsApproved  bool      `json:"is_approved"`
	CreatedAt   time.Time `json:"created_at"`
}
