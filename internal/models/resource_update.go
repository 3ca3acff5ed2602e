package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultChangeLog запись журнала, если координатор не указал комментарий
const DefaultChangeLog = "Capacity updated"

// ResourceUpdate неизменяемая запись аудита изменения вместимости
type ResourceUpdate struct {
	ID               uuid.UUID `json:"id"`
	ResourceID       uuid.UUID `json:"resource_id"`
	ResourceName     string    `json:"resource_name,omitempty"`
	CoordinatorID    uuid.UUID `json:"coordinator_id"`
	CoordinatorName  string    `json:"coordinator_name,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	ChangeLog        string    `json:"change_log"`
	PreviousCapacity int       `json:"previous_capacity"`
	NewCapacity      int       `json:"new_capacity"`
}

// ResourceMutation применяется к заблокированной строке ресурса внутри транзакции.
// Возвращенная запись аудита (если не nil) сохраняется в той же транзакции;
// ошибка откатывает транзакцию целиком.
type ResourceMutation func(current *Resource) (*ResourceUpdate, error)

// UpdateFilter фильтры журнала изменений
type UpdateFilter struct {
	ResourceID *uuid.UUID
	// CoordinatorScope ограничивает журнал ресурсами, назначенными координатору
	CoordinatorScope *uuid.UUID
	// Limit <= 0 означает без ограничения
	Limit int
}
