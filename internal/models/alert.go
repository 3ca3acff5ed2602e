package models

import (
	"time"

	"github.com/google/uuid"
)

type AlertSeverity string

const (
	AlertSeverityLow    AlertSeverity = "low"
	AlertSeverityMedium AlertSeverity = "medium"
	AlertSeverityHigh   AlertSeverity = "high"
)

func (s AlertSeverity) Valid() bool {
	switch s {
	case AlertSeverityLow, AlertSeverityMedium, AlertSeverityHigh:
		return true
	}
	return false
}

// Alert ограниченное по времени оповещение для региона
type Alert struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Severity      AlertSeverity `json:"severity"`
	Region        string        `json:"region"`
	IsActive      bool          `json:"is_active"`
	CreatedBy     uuid.UUID     `json:"created_by"`
	CreatedByName string        `json:"created_by_name,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	ExpiresAt     *time.Time    `json:"expires_at,omitempty"`
}

// ActiveAt вычисляет активность на момент now; флаг is_active при этом не меняется
func (a *Alert) ActiveAt(now time.Time) bool {
	if !a.IsActive {
		return false
	}
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}

// AlertPatch изменяемые поля оповещения
type AlertPatch struct {
	Title       *string
	Description *string
	Severity    *AlertSeverity
	Region      *string
	IsActive    *bool
	ExpiresAt   *time.Time
	// ClearExpiry снимает срок действия
	ClearExpiry bool
}

// AlertFilter фильтры списка оповещений
type AlertFilter struct {
	Region     string
	Severity   AlertSeverity
	ActiveFlag *bool
}
