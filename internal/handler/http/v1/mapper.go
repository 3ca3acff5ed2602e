package v1

import "github.com/shenikar/disaster_resource_system/internal/models"

// DTOToResourceModel преобразует DTO создания в доменную модель
func DTOToResourceModel(dto CreateResourceRequest) *models.Resource {
	resource := &models.Resource{
		Name:          dto.Name,
		Type:          models.ResourceType(dto.Type),
		Description:   dto.Description,
		Address:       dto.Address,
		Region:        dto.Region,
		Status:        models.ResourceStatus(dto.Status),
		Contact:       dto.Contact,
		Helpline:      dto.Helpline,
		CoordinatorID: dto.CoordinatorID,
	}
	if dto.Latitude != nil {
		resource.Latitude = *dto.Latitude
	}
	if dto.Longitude != nil {
		resource.Longitude = *dto.Longitude
	}
	if dto.Capacity != nil {
		resource.Capacity = *dto.Capacity
	}
	if dto.AvailableCapacity != nil {
		resource.AvailableCapacity = *dto.AvailableCapacity
	}
	return resource
}

// DTOToResourcePatch преобразует DTO изменения в набор изменяемых полей
func DTOToResourcePatch(dto UpdateResourceRequest) models.ResourcePatch {
	patch := models.ResourcePatch{
		Name:        dto.Name,
		Description: dto.Description,
		Latitude:    dto.Latitude,
		Longitude:   dto.Longitude,
		Address:     dto.Address,
		Region:      dto.Region,
		Capacity:    dto.Capacity,
		Contact:     dto.Contact,
		Helpline:    dto.Helpline,
	}
	if dto.Type != nil {
		t := models.ResourceType(*dto.Type)
		patch.Type = &t
	}
	if dto.Status != nil {
		s := models.ResourceStatus(*dto.Status)
		patch.Status = &s
	}
	return patch
}

// ModelToResourceResponse преобразует доменную модель в DTO для ответа
func ModelToResourceResponse(model *models.Resource) *ResourceResponse {
	return &ResourceResponse{
		ID:                model.ID,
		Name:              model.Name,
		Type:              string(model.Type),
		Description:       model.Description,
		Latitude:          model.Latitude,
		Longitude:         model.Longitude,
		Address:           model.Address,
		Region:            model.Region,
		Capacity:          model.Capacity,
		AvailableCapacity: model.AvailableCapacity,
		Status:            string(model.Status),
		Contact:           model.Contact,
		Helpline:          model.Helpline,
		Verified:          model.Verified,
		VerifiedBy:        model.VerifiedBy,
		VerifiedByName:    model.VerifiedByName,
		CoordinatorID:     model.CoordinatorID,
		CoordinatorName:   model.CoordinatorName,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

// ModelsToResourceResponses преобразует слайс моделей в слайс DTO
func ModelsToResourceResponses(models []*models.Resource) []*ResourceResponse {
	responses := make([]*ResourceResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToResourceResponse(model)
	}
	return responses
}

func NearbyToResponses(nearby []*models.NearbyResource) []*NearbyResourceResponse {
	responses := make([]*NearbyResourceResponse, len(nearby))
	for i, n := range nearby {
		responses[i] = &NearbyResourceResponse{
			ResourceResponse: *ModelToResourceResponse(n.Resource),
			Distance:         n.DistanceKm,
		}
	}
	return responses
}

func UpdatesToResponses(updates []*models.ResourceUpdate) []*ResourceUpdateResponse {
	responses := make([]*ResourceUpdateResponse, len(updates))
	for i, u := range updates {
		responses[i] = &ResourceUpdateResponse{
			ID:               u.ID,
			ResourceID:       u.ResourceID,
			ResourceName:     u.ResourceName,
			CoordinatorID:    u.CoordinatorID,
			CoordinatorName:  u.CoordinatorName,
			Timestamp:        u.Timestamp,
			ChangeLog:        u.ChangeLog,
			PreviousCapacity: u.PreviousCapacity,
			NewCapacity:      u.NewCapacity,
		}
	}
	return responses
}

func StatsToResponse(stats *models.ResourceStats) *StatsResponse {
	resp := &StatsResponse{
		TotalResources:    stats.TotalResources,
		VerifiedResources: stats.VerifiedResources,
		TotalCapacity:     stats.TotalCapacity,
		AvailableCapacity: stats.AvailableCapacity,
		ByType:            make(map[string]int, len(stats.ByType)),
		ByStatus:          make(map[string]int, len(stats.ByStatus)),
	}
	for t, n := range stats.ByType {
		resp.ByType[string(t)] = n
	}
	for s, n := range stats.ByStatus {
		resp.ByStatus[string(s)] = n
	}
	return resp
}

func DTOToAlertModel(dto CreateAlertRequest) *models.Alert {
	return &models.Alert{
		Title:       dto.Title,
		Description: dto.Description,
		Severity:    models.AlertSeverity(dto.Severity),
		Region:      dto.Region,
		ExpiresAt:   dto.ExpiresAt,
	}
}

func DTOToAlertPatch(dto UpdateAlertRequest) models.AlertPatch {
	patch := models.AlertPatch{
		Title:       dto.Title,
		Description: dto.Description,
		Region:      dto.Region,
		IsActive:    dto.IsActive,
		ExpiresAt:   dto.ExpiresAt,
		ClearExpiry: dto.ClearExpiry,
	}
	if dto.Severity != nil {
		s := models.AlertSeverity(*dto.Severity)
		patch.Severity = &s
	}
	return patch
}

func ModelToAlertResponse(model *models.Alert) *AlertResponse {
	return &AlertResponse{
		ID:            model.ID,
		Title:         model.Title,
		Description:   model.Description,
		Severity:      string(model.Severity),
		Region:        model.Region,
		IsActive:      model.IsActive,
		CreatedBy:     model.CreatedBy,
		CreatedByName: model.CreatedByName,
		CreatedAt:     model.CreatedAt,
		ExpiresAt:     model.ExpiresAt,
	}
}

func ModelsToAlertResponses(models []*models.Alert) []*AlertResponse {
	responses := make([]*AlertResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToAlertResponse(model)
	}
	return responses
}

func DTOToUserPatch(dto UpdateUserRequest) models.UserPatch {
	patch := models.UserPatch{
		Email:       dto.Email,
		FirstName:   dto.FirstName,
		LastName:    dto.LastName,
		PhoneNumber: dto.PhoneNumber,
		IsApproved:  dto.IsApproved,
	}
	if dto.Role != nil {
		r := models.Role(*dto.Role)
		patch.Role = &r
	}
	return patch
}

func ModelToUserResponse(model *models.User) *UserResponse {
	return &UserResponse{
		ID:          model.ID,
		Username:    model.Username,
		Email:       model.Email,
		FirstName:   model.FirstName,
		LastName:    model.LastName,
		Role:        string(model.Role),
		PhoneNumber: model.PhoneNumber,
		IsApproved:  model.IsApproved,
		CreatedAt:   model.CreatedAt,
	}
}

func ModelsToUserResponses(models []*models.User) []*UserResponse {
	responses := make([]*UserResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToUserResponse(model)
	}
	return responses
}
