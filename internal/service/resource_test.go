package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/disaster_resource_system/internal/apperror"
	"github.com/shenikar/disaster_resource_system/internal/config"
	"github.com/shenikar/disaster_resource_system/internal/models"
	"github.com/shenikar/disaster_resource_system/internal/service/mocks"
)

// newTestResourceService - вспомогательная функция для создания инстанса сервиса с моками.
func newTestResourceService(t *testing.T) (*resourceService, *mocks.MockResourceRepository, *mocks.MockUserRepository) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockResourceRepository(ctrl)
	usersMock := mocks.NewMockUserRepository(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		NearbyDefaultKm:    10,
		UpdateHistoryLimit: 50,
	}

	service := NewResourceService(repoMock, usersMock, logger, cfg)
	return service.(*resourceService), repoMock, usersMock
}

func testActor(role models.Role) models.Actor {
	return models.Actor{ID: uuid.New(), Role: role, IsApproved: true}
}

// lockedRow имитирует Mutate репозитория: мутация применяется к копии строки,
// а при успехе копия фиксируется вместе с записью аудита.
type lockedRow struct {
	row    models.Resource
	audits []*models.ResourceUpdate
}

func (l *lockedRow) mutate(_ context.Context, id uuid.UUID, fn models.ResourceMutation) (*models.Resource, error) {
	if id != l.row.ID {
		return nil, apperror.NotFound("resource", id)
	}
	working := l.row
	audit, err := fn(&working)
	if err != nil {
		return nil, err
	}
	l.row = working
	if audit != nil {
		audit.ResourceID = id
		l.audits = append(l.audits, audit)
	}
	committed := l.row
	return &committed, nil
}

func newShelter(capacity, available int, coordinator *uuid.UUID) models.Resource {
	return models.Resource{
		ID:                uuid.New(),
		Name:              "Центральное убежище",
		Type:              models.ResourceTypeShelter,
		Latitude:          40.7128,
		Longitude:         -74.006,
		Address:           "1 Main St",
		Region:            "Manhattan",
		Capacity:          capacity,
		AvailableCapacity: available,
		Status:            models.ResourceStatusOpen,
		Contact:           "555-0100",
		CoordinatorID:     coordinator,
	}
}

func TestCreateResource_ClampsAvailableToCapacity(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	admin := testActor(models.RoleAdmin)
	resource := &models.Resource{
		Name:              "Shelter",
		Type:              models.ResourceTypeShelter,
		Latitude:          40.7128,
		Longitude:         -74.006,
		Address:           "1 Main St",
		Region:            "Manhattan",
		Capacity:          100,
		AvailableCapacity: 150,
		Contact:           "555-0100",
	}

	// Ожидания
	repoMock.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, r *models.Resource) error {
			assert.Equal(t, 100, r.AvailableCapacity)
			r.ID = uuid.New()
			return nil
		}).Times(1)

	// Действие
	err := service.CreateResource(ctx, admin, resource)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 100, resource.AvailableCapacity)
	assert.Equal(t, models.ResourceStatusOpen, resource.Status)
	assert.False(t, resource.Verified)
}

func TestCreateResource_CoordinatorBecomesOwner(t *testing.T) {
	service, repoMock, usersMock := newTestResourceService(t)
	ctx := context.Background()
	coordinator := testActor(models.RoleCoordinator)
	resource := newShelter(10, 10, nil)

	usersMock.EXPECT().GetByID(ctx, coordinator.ID).Return(&models.User{
		ID: coordinator.ID, Username: "dkim", FirstName: "Dana", LastName: "Kim",
		Role: models.RoleCoordinator, IsApproved: true,
	}, nil).Times(1)
	repoMock.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)

	err := service.CreateResource(ctx, coordinator, &resource)

	require.NoError(t, err)
	require.NotNil(t, resource.CoordinatorID)
	assert.Equal(t, coordinator.ID, *resource.CoordinatorID)
	assert.Equal(t, "Dana Kim", resource.CoordinatorName)
}

func TestCreateResource_CoordinatorOverridesRequestedCoordinator(t *testing.T) {
	service, repoMock, usersMock := newTestResourceService(t)
	ctx := context.Background()
	coordinator := testActor(models.RoleCoordinator)
	other := uuid.New()
	resource := newShelter(10, 10, &other)

	usersMock.EXPECT().GetByID(ctx, coordinator.ID).Return(&models.User{
		ID: coordinator.ID, Username: "dkim", Role: models.RoleCoordinator, IsApproved: true,
	}, nil).Times(1)
	usersMock.EXPECT().GetByID(ctx, other).Times(0)
	repoMock.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)

	err := service.CreateResource(ctx, coordinator, &resource)

	require.NoError(t, err)
	assert.Equal(t, coordinator.ID, *resource.CoordinatorID)
	assert.Equal(t, "dkim", resource.CoordinatorName)
}

func TestCreateResource_ValidationErrors(t *testing.T) {
	admin := testActor(models.RoleAdmin)

	tests := []struct {
		name   string
		modify func(r *models.Resource)
	}{
		{"missing name", func(r *models.Resource) { r.Name = "  " }},
		{"invalid type", func(r *models.Resource) { r.Type = "bunker" }},
		{"invalid status", func(r *models.Resource) { r.Status = "busy" }},
		{"latitude out of range", func(r *models.Resource) { r.Latitude = 91 }},
		{"longitude out of range", func(r *models.Resource) { r.Longitude = -180.5 }},
		{"negative capacity", func(r *models.Resource) { r.Capacity = -1 }},
		{"negative available", func(r *models.Resource) { r.AvailableCapacity = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _ := newTestResourceService(t)
			resource := newShelter(10, 5, nil)
			tt.modify(&resource)

			err := service.CreateResource(context.Background(), admin, &resource)

			require.Error(t, err)
			assert.True(t, apperror.Is(err, apperror.KindValidation))
		})
	}
}

func TestCreateResource_CitizenDenied(t *testing.T) {
	service, _, _ := newTestResourceService(t)
	resource := newShelter(10, 5, nil)

	err := service.CreateResource(context.Background(), testActor(models.RoleCitizen), &resource)

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
}

func TestCreateResource_AssignedUserMustBeCoordinator(t *testing.T) {
	service, _, usersMock := newTestResourceService(t)
	ctx := context.Background()
	citizen := &models.User{ID: uuid.New(), Username: "citizen", Role: models.RoleCitizen}
	resource := newShelter(10, 5, &citizen.ID)

	usersMock.EXPECT().GetByID(ctx, citizen.ID).Return(citizen, nil).Times(1)

	err := service.CreateResource(ctx, testActor(models.RoleAdmin), &resource)

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestUpdateCapacity_RanOutThenRestocked(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	coordinator := testActor(models.RoleCoordinator)
	row := &lockedRow{row: newShelter(100, 40, &coordinator.ID)}
	id := row.row.ID

	// Ожидания
	repoMock.EXPECT().GetByID(ctx, id).DoAndReturn(func(context.Context, uuid.UUID) (*models.Resource, error) {
		current := row.row
		return &current, nil
	}).Times(2)
	repoMock.EXPECT().Mutate(ctx, id, gomock.Any()).DoAndReturn(row.mutate).Times(2)
	repoMock.EXPECT().InvalidateResourceCache(ctx, id).Return(nil).Times(2)

	// Действие: ресурс исчерпан
	zero := 0
	updated, err := service.UpdateCapacity(ctx, coordinator, id, &zero, "ran out")

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 0, updated.AvailableCapacity)
	assert.Equal(t, models.ResourceStatusFull, updated.Status)
	require.Len(t, row.audits, 1)
	assert.Equal(t, 40, row.audits[0].PreviousCapacity)
	assert.Equal(t, 0, row.audits[0].NewCapacity)
	assert.Equal(t, "ran out", row.audits[0].ChangeLog)
	assert.Equal(t, coordinator.ID, row.audits[0].CoordinatorID)

	// Действие: пополнение
	five := 5
	updated, err = service.UpdateCapacity(ctx, coordinator, id, &five, "")

	require.NoError(t, err)
	assert.Equal(t, 5, updated.AvailableCapacity)
	assert.Equal(t, models.ResourceStatusOpen, updated.Status)
	require.Len(t, row.audits, 2)
	assert.Equal(t, 0, row.audits[1].PreviousCapacity)
	assert.Equal(t, models.DefaultChangeLog, row.audits[1].ChangeLog)
}

func TestUpdateCapacity_ClosedStaysClosed(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	admin := testActor(models.RoleAdmin)
	shelter := newShelter(100, 10, nil)
	shelter.Status = models.ResourceStatusClosed
	row := &lockedRow{row: shelter}

	repoMock.EXPECT().GetByID(ctx, shelter.ID).Return(&shelter, nil).Times(1)
	repoMock.EXPECT().Mutate(ctx, shelter.ID, gomock.Any()).DoAndReturn(row.mutate).Times(1)
	repoMock.EXPECT().InvalidateResourceCache(ctx, shelter.ID).Return(nil).Times(1)

	thirty := 30
	updated, err := service.UpdateCapacity(ctx, admin, shelter.ID, &thirty, "restock")

	require.NoError(t, err)
	assert.Equal(t, models.ResourceStatusClosed, updated.Status)
}

func TestUpdateCapacity_ExceedsCapacityRejected(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	admin := testActor(models.RoleAdmin)
	shelter := newShelter(100, 40, nil)
	row := &lockedRow{row: shelter}

	// Ожидания
	repoMock.EXPECT().GetByID(ctx, shelter.ID).Return(&shelter, nil).Times(1)
	repoMock.EXPECT().Mutate(ctx, shelter.ID, gomock.Any()).DoAndReturn(row.mutate).Times(1)

	// Действие
	over := 150
	updated, err := service.UpdateCapacity(ctx, admin, shelter.ID, &over, "")

	// Проверки: ничего не изменилось и аудит не записан
	require.Error(t, err)
	assert.Nil(t, updated)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Equal(t, 40, row.row.AvailableCapacity)
	assert.Empty(t, row.audits)
}

func TestUpdateCapacity_InvalidInput(t *testing.T) {
	admin := testActor(models.RoleAdmin)
	negative := -1

	tests := []struct {
		name      string
		available *int
	}{
		{"missing value", nil},
		{"negative value", &negative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _ := newTestResourceService(t)

			_, err := service.UpdateCapacity(context.Background(), admin, uuid.New(), tt.available, "")

			require.Error(t, err)
			assert.True(t, apperror.Is(err, apperror.KindValidation))
		})
	}
}

func TestUpdateCapacity_NotFound(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	id := uuid.New()

	repoMock.EXPECT().GetByID(ctx, id).Return(nil, apperror.NotFound("resource", id)).Times(1)
	repoMock.EXPECT().Mutate(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	five := 5
	_, err := service.UpdateCapacity(ctx, testActor(models.RoleAdmin), id, &five, "")

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestUpdateCapacity_CoordinatorOfAnotherResourceDenied(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	owner := testActor(models.RoleCoordinator)
	stranger := testActor(models.RoleCoordinator)
	shelter := newShelter(100, 40, &owner.ID)

	// Ожидания: до мутации дело не доходит
	repoMock.EXPECT().GetByID(ctx, shelter.ID).Return(&shelter, nil).Times(1)
	repoMock.EXPECT().Mutate(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// Действие
	ten := 10
	_, err := service.UpdateCapacity(ctx, stranger, shelter.ID, &ten, "")

	// Проверки
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
	assert.False(t, apperror.Is(err, apperror.KindNotFound))
}

func TestUpdateCapacity_ReassignedWhileWaitingForLock(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	coordinator := testActor(models.RoleCoordinator)
	shelter := newShelter(100, 40, &coordinator.ID)
	other := uuid.New()
	locked := shelter
	locked.CoordinatorID = &other
	row := &lockedRow{row: locked}

	repoMock.EXPECT().GetByID(ctx, shelter.ID).Return(&shelter, nil).Times(1)
	repoMock.EXPECT().Mutate(ctx, shelter.ID, gomock.Any()).DoAndReturn(row.mutate).Times(1)

	ten := 10
	_, err := service.UpdateCapacity(ctx, coordinator, shelter.ID, &ten, "")

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
	assert.Empty(t, row.audits)
}

func TestUpdateCapacity_CitizenDeniedBeforeStore(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)

	repoMock.EXPECT().GetByID(gomock.Any(), gomock.Any()).Times(0)

	five := 5
	_, err := service.UpdateCapacity(context.Background(), testActor(models.RoleCitizen), uuid.New(), &five, "")

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
}

func TestUpdateCapacity_UnapprovedCoordinatorDenied(t *testing.T) {
	service, _, _ := newTestResourceService(t)
	pending := models.Actor{ID: uuid.New(), Role: models.RoleCoordinator}

	five := 5
	_, err := service.UpdateCapacity(context.Background(), pending, uuid.New(), &five, "")

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
	assert.ErrorContains(t, err, "pending approval")
}

func TestUpdateResource_LoweringCapacityClampsAndAudits(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	admin := testActor(models.RoleAdmin)
	row := &lockedRow{row: newShelter(100, 80, nil)}
	id := row.row.ID

	// Ожидания
	repoMock.EXPECT().Mutate(ctx, id, gomock.Any()).DoAndReturn(row.mutate).Times(1)
	repoMock.EXPECT().InvalidateResourceCache(ctx, id).Return(nil).Times(1)

	// Действие
	capacity := 50
	updated, err := service.UpdateResource(ctx, admin, id, models.ResourcePatch{Capacity: &capacity})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Capacity)
	assert.Equal(t, 50, updated.AvailableCapacity)
	require.Len(t, row.audits, 1)
	assert.Equal(t, 80, row.audits[0].PreviousCapacity)
	assert.Equal(t, 50, row.audits[0].NewCapacity)
}

func TestUpdateResource_DescriptiveChangeWithoutAudit(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	row := &lockedRow{row: newShelter(100, 80, nil)}
	id := row.row.ID

	repoMock.EXPECT().Mutate(ctx, id, gomock.Any()).DoAndReturn(row.mutate).Times(1)
	repoMock.EXPECT().InvalidateResourceCache(ctx, id).Return(nil).Times(1)

	name := "Северное убежище"
	updated, err := service.UpdateResource(ctx, testActor(models.RoleAdmin), id, models.ResourcePatch{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, 80, updated.AvailableCapacity)
	assert.Empty(t, row.audits)
}

func TestUpdateResource_CoordinatorDenied(t *testing.T) {
	service, _, _ := newTestResourceService(t)

	name := "x"
	_, err := service.UpdateResource(context.Background(), testActor(models.RoleCoordinator), uuid.New(), models.ResourcePatch{Name: &name})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
}

func TestVerifyResource_Idempotent(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	first := testActor(models.RoleAdmin)
	second := testActor(models.RoleAdmin)
	row := &lockedRow{row: newShelter(10, 10, nil)}
	id := row.row.ID

	repoMock.EXPECT().Mutate(ctx, id, gomock.Any()).DoAndReturn(row.mutate).Times(2)
	repoMock.EXPECT().InvalidateResourceCache(ctx, id).Return(nil).Times(2)

	_, err := service.VerifyResource(ctx, first, id)
	require.NoError(t, err)
	updated, err := service.VerifyResource(ctx, second, id)
	require.NoError(t, err)

	assert.True(t, updated.Verified)
	require.NotNil(t, updated.VerifiedBy)
	assert.Equal(t, second.ID, *updated.VerifiedBy)
}

func TestVerifyResource_CoordinatorDenied(t *testing.T) {
	service, _, _ := newTestResourceService(t)

	_, err := service.VerifyResource(context.Background(), testActor(models.RoleCoordinator), uuid.New())

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
}

func TestAssignCoordinator_Success(t *testing.T) {
	service, repoMock, usersMock := newTestResourceService(t)
	ctx := context.Background()
	previous := uuid.New()
	row := &lockedRow{row: newShelter(10, 10, &previous)}
	id := row.row.ID
	coordinator := &models.User{ID: uuid.New(), Username: "dana", FirstName: "Dana", LastName: "Kim", Role: models.RoleCoordinator}

	usersMock.EXPECT().GetByID(ctx, coordinator.ID).Return(coordinator, nil).Times(1)
	repoMock.EXPECT().Mutate(ctx, id, gomock.Any()).DoAndReturn(row.mutate).Times(1)
	repoMock.EXPECT().InvalidateResourceCache(ctx, id).Return(nil).Times(1)

	updated, err := service.AssignCoordinator(ctx, testActor(models.RoleAdmin), id, coordinator.ID)

	require.NoError(t, err)
	require.NotNil(t, updated.CoordinatorID)
	assert.Equal(t, coordinator.ID, *updated.CoordinatorID)
	assert.Equal(t, "Dana Kim", updated.CoordinatorName)
}

func TestAssignCoordinator_UserNotFound(t *testing.T) {
	service, repoMock, usersMock := newTestResourceService(t)
	ctx := context.Background()
	userID := uuid.New()

	usersMock.EXPECT().GetByID(ctx, userID).Return(nil, apperror.NotFound("user", userID)).Times(1)
	repoMock.EXPECT().Mutate(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := service.AssignCoordinator(ctx, testActor(models.RoleAdmin), uuid.New(), userID)

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestAssignCoordinator_UserIsNotCoordinator(t *testing.T) {
	service, repoMock, usersMock := newTestResourceService(t)
	ctx := context.Background()
	admin := &models.User{ID: uuid.New(), Username: "root", Role: models.RoleAdmin}

	usersMock.EXPECT().GetByID(ctx, admin.ID).Return(admin, nil).Times(1)
	repoMock.EXPECT().Mutate(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := service.AssignCoordinator(ctx, testActor(models.RoleAdmin), uuid.New(), admin.ID)

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestGetResource_Success_FromCache(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	shelter := newShelter(10, 5, nil)

	repoMock.EXPECT().GetResourceFromCache(ctx, shelter.ID).Return(&shelter, nil).Times(1)

	resource, err := service.GetResource(ctx, models.Anonymous(), shelter.ID)

	require.NoError(t, err)
	assert.Equal(t, &shelter, resource)
}

func TestGetResource_Success_FromDB(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	shelter := newShelter(10, 5, nil)

	// 1. Промах кеша
	repoMock.EXPECT().GetResourceFromCache(ctx, shelter.ID).Return(nil, nil).Times(1)
	// 2. Попадание в БД
	repoMock.EXPECT().GetByID(ctx, shelter.ID).Return(&shelter, nil).Times(1)
	// 3. Запись в кеш
	repoMock.EXPECT().SetResourceCache(ctx, &shelter).Return(nil).Times(1)

	resource, err := service.GetResource(ctx, testActor(models.RoleCitizen), shelter.ID)

	require.NoError(t, err)
	assert.Equal(t, &shelter, resource)
}

func TestGetResource_CacheErrorFallsBackToDB(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	shelter := newShelter(10, 5, nil)

	repoMock.EXPECT().GetResourceFromCache(ctx, shelter.ID).Return(nil, fmt.Errorf("redis down")).Times(1)
	repoMock.EXPECT().GetByID(ctx, shelter.ID).Return(&shelter, nil).Times(1)
	repoMock.EXPECT().SetResourceCache(ctx, &shelter).Return(fmt.Errorf("redis down")).Times(1)

	resource, err := service.GetResource(ctx, models.Anonymous(), shelter.ID)

	require.NoError(t, err)
	assert.Equal(t, shelter.ID, resource.ID)
}

func TestGetResource_NotFound(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	id := uuid.New()

	repoMock.EXPECT().GetResourceFromCache(ctx, id).Return(nil, nil).Times(1)
	repoMock.EXPECT().GetByID(ctx, id).Return(nil, apperror.NotFound("resource", id)).Times(1)

	resource, err := service.GetResource(ctx, models.Anonymous(), id)

	require.Error(t, err)
	assert.Nil(t, resource)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.ErrorContains(t, err, "could not get resource")
}

func TestGetResource_CoordinatorOfAnotherResourceDenied(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	owner := uuid.New()
	shelter := newShelter(10, 5, &owner)

	repoMock.EXPECT().GetResourceFromCache(gomock.Any(), gomock.Any()).Times(0)
	repoMock.EXPECT().GetByID(ctx, shelter.ID).Return(&shelter, nil).Times(1)

	_, err := service.GetResource(ctx, testActor(models.RoleCoordinator), shelter.ID)

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
}

func TestGetResource_CoordinatorOwnershipIgnoresStaleCache(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	coordinator := testActor(models.RoleCoordinator)
	previous := coordinator.ID
	current := uuid.New()
	stale := newShelter(10, 5, &previous)
	fresh := stale
	fresh.CoordinatorID = &current

	// В кеше остался прежний координатор; решение принимается по строке из базы
	repoMock.EXPECT().GetResourceFromCache(gomock.Any(), gomock.Any()).Times(0)
	repoMock.EXPECT().SetResourceCache(gomock.Any(), gomock.Any()).Times(0)
	repoMock.EXPECT().GetByID(ctx, stale.ID).Return(&fresh, nil).Times(1)

	_, err := service.GetResource(ctx, coordinator, stale.ID)

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
}

func TestGetResource_CoordinatorOwnResourceFromDB(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	coordinator := testActor(models.RoleCoordinator)
	shelter := newShelter(10, 5, &coordinator.ID)

	repoMock.EXPECT().GetByID(ctx, shelter.ID).Return(&shelter, nil).Times(1)

	resource, err := service.GetResource(ctx, coordinator, shelter.ID)

	require.NoError(t, err)
	assert.Equal(t, shelter.ID, resource.ID)
}

func TestListResources_CoordinatorScoped(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	coordinator := testActor(models.RoleCoordinator)

	repoMock.EXPECT().
		List(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, f models.ResourceFilter) ([]*models.Resource, error) {
			require.NotNil(t, f.CoordinatorID)
			assert.Equal(t, coordinator.ID, *f.CoordinatorID)
			assert.Equal(t, models.ResourceTypeFood, f.Type)
			return []*models.Resource{}, nil
		}).Times(1)

	_, err := service.ListResources(ctx, coordinator, models.ResourceFilter{Type: models.ResourceTypeFood})

	require.NoError(t, err)
}

func TestListResources_PublicUnscoped(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	expected := []*models.Resource{{ID: uuid.New()}, {ID: uuid.New()}}

	repoMock.EXPECT().List(ctx, models.ResourceFilter{Region: "man"}).Return(expected, nil).Times(1)

	resources, err := service.ListResources(ctx, models.Anonymous(), models.ResourceFilter{Region: "man"})

	require.NoError(t, err)
	assert.Equal(t, expected, resources)
}

func TestListResources_InvalidFilter(t *testing.T) {
	service, _, _ := newTestResourceService(t)

	_, err := service.ListResources(context.Background(), models.Anonymous(), models.ResourceFilter{Status: "busy"})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestDeleteResource_Success(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	id := uuid.New()

	repoMock.EXPECT().Delete(ctx, id).Return(nil).Times(1)
	repoMock.EXPECT().InvalidateResourceCache(ctx, id).Return(nil).Times(1)

	err := service.DeleteResource(ctx, testActor(models.RoleAdmin), id)

	require.NoError(t, err)
}

func TestDeleteResource_CoordinatorDenied(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)

	repoMock.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)

	err := service.DeleteResource(context.Background(), testActor(models.RoleCoordinator), uuid.New())

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
}

func TestStats_Success(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	expected := &models.ResourceStats{TotalResources: 3, VerifiedResources: 1}

	repoMock.EXPECT().Stats(ctx).Return(expected, nil).Times(1)

	stats, err := service.Stats(ctx, testActor(models.RoleAdmin))

	require.NoError(t, err)
	assert.Equal(t, expected, stats)
}

func TestExport_WritesCSV(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	shelter := newShelter(100, 40, nil)
	shelter.Verified = true
	shelter.CoordinatorName = "Dana Kim"

	repoMock.EXPECT().List(ctx, models.ResourceFilter{OldestFirst: true}).Return([]*models.Resource{&shelter}, nil).Times(1)

	var buf bytes.Buffer
	err := service.Export(ctx, testActor(models.RoleAdmin), &buf)

	require.NoError(t, err)
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, ExportHeader, records[0])
	assert.Equal(t, []string{"Центральное убежище", "shelter", "open", "40.7128", "-74.006", "Manhattan", "100", "40", "true", "Dana Kim"}, records[1])
}

func TestExport_CitizenDenied(t *testing.T) {
	service, _, _ := newTestResourceService(t)

	err := service.Export(context.Background(), testActor(models.RoleCitizen), &bytes.Buffer{})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
}

func TestListUpdates_DefaultLimit(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()

	repoMock.EXPECT().ListUpdates(ctx, models.UpdateFilter{Limit: 50}).Return([]*models.ResourceUpdate{}, nil).Times(1)

	_, err := service.ListUpdates(ctx, testActor(models.RoleAdmin), models.UpdateFilter{})

	require.NoError(t, err)
}

func TestListUpdates_NegativeLimitMeansAll(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()

	repoMock.EXPECT().ListUpdates(ctx, models.UpdateFilter{Limit: 0}).Return(nil, nil).Times(1)

	_, err := service.ListUpdates(ctx, testActor(models.RoleAdmin), models.UpdateFilter{Limit: -1})

	require.NoError(t, err)
}

func TestListUpdates_CoordinatorScoped(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	coordinator := testActor(models.RoleCoordinator)

	repoMock.EXPECT().
		ListUpdates(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, f models.UpdateFilter) ([]*models.ResourceUpdate, error) {
			require.NotNil(t, f.CoordinatorScope)
			assert.Equal(t, coordinator.ID, *f.CoordinatorScope)
			assert.Equal(t, 10, f.Limit)
			return nil, nil
		}).Times(1)

	_, err := service.ListUpdates(ctx, coordinator, models.UpdateFilter{Limit: 10})

	require.NoError(t, err)
}

func TestListUpdates_CoordinatorForeignResourceDenied(t *testing.T) {
	service, repoMock, _ := newTestResourceService(t)
	ctx := context.Background()
	owner := uuid.New()
	shelter := newShelter(10, 5, &owner)

	repoMock.EXPECT().GetByID(ctx, shelter.ID).Return(&shelter, nil).Times(1)
	repoMock.EXPECT().ListUpdates(gomock.Any(), gomock.Any()).Times(0)

	_, err := service.ListUpdates(ctx, testActor(models.RoleCoordinator), models.UpdateFilter{ResourceID: &shelter.ID})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
}

func TestListUpdates_CitizenDenied(t *testing.T) {
	service, _, _ := newTestResourceService(t)

	_, err := service.ListUpdates(context.Background(), testActor(models.RoleCitizen), models.UpdateFilter{})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
}
