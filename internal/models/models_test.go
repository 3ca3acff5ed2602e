package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestClampAvailable(t *testing.T) {
	r := &Resource{Capacity: 100, AvailableCapacity: 150}
	assert.True(t, r.ClampAvailable())
	assert.Equal(t, 100, r.AvailableCapacity)

	r = &Resource{Capacity: 100, AvailableCapacity: 40}
	assert.False(t, r.ClampAvailable())
	assert.Equal(t, 40, r.AvailableCapacity)
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name      string
		current   ResourceStatus
		available int
		want      ResourceStatus
	}{
		{"ran out", ResourceStatusOpen, 0, ResourceStatusFull},
		{"closed and empty", ResourceStatusClosed, 0, ResourceStatusFull},
		{"restocked", ResourceStatusFull, 5, ResourceStatusOpen},
		{"still open", ResourceStatusOpen, 7, ResourceStatusOpen},
		{"closed stays closed", ResourceStatusClosed, 7, ResourceStatusClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStatus(tt.current, tt.available))
		})
	}
}

func TestManagedBy(t *testing.T) {
	owner := uuid.New()
	r := &Resource{CoordinatorID: &owner}

	assert.True(t, r.ManagedBy(owner))
	assert.False(t, r.ManagedBy(uuid.New()))
	assert.False(t, (&Resource{}).ManagedBy(owner))
}

func TestAlertActiveAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Alert{IsActive: true}).ActiveAt(now))
	assert.True(t, (&Alert{IsActive: true, ExpiresAt: &future}).ActiveAt(now))
	assert.False(t, (&Alert{IsActive: true, ExpiresAt: &past}).ActiveAt(now))
	assert.False(t, (&Alert{IsActive: true, ExpiresAt: &now}).ActiveAt(now))
	assert.False(t, (&Alert{IsActive: false}).ActiveAt(now))
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, ResourceTypeShelter.Valid())
	assert.False(t, ResourceType("spaceport").Valid())
	assert.True(t, ResourceStatusFull.Valid())
	assert.False(t, ResourceStatus("busy").Valid())
	assert.True(t, AlertSeverityHigh.Valid())
	assert.False(t, AlertSeverity("critical").Valid())
	assert.True(t, RoleCoordinator.Valid())
	assert.False(t, RoleAnonymous.Valid())
}

func TestActorFromUser(t *testing.T) {
	u := &User{ID: uuid.New(), Role: RoleCoordinator, IsApproved: true}
	a := u.Actor()

	assert.Equal(t, u.ID, a.ID)
	assert.Equal(t, RoleCoordinator, a.Role)
	assert.True(t, a.IsApproved)
	assert.False(t, a.IsAnonymous())
	assert.True(t, Anonymous().IsAnonymous())
}
