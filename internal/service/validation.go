package service

import (
	"strings"

	"github.com/shenikar/disaster_resource_system/internal/apperror"
	"github.com/shenikar/disaster_resource_system/internal/geo"
	"github.com/shenikar/disaster_resource_system/internal/models"
)

func validateNewResource(r *models.Resource) error {
	r.Name = strings.TrimSpace(r.Name)
	r.Region = strings.TrimSpace(r.Region)
	r.Address = strings.TrimSpace(r.Address)
	r.Contact = strings.TrimSpace(r.Contact)

	switch {
	case r.Name == "":
		return apperror.Validation("name is required")
	case r.Address == "":
		return apperror.Validation("address is required")
	case r.Region == "":
		return apperror.Validation("region is required")
	case r.Contact == "":
		return apperror.Validation("contact is required")
	}
	if !r.Type.Valid() {
		return apperror.Validation("invalid resource type %q", r.Type)
	}
	if r.Status != "" && !r.Status.Valid() {
		return apperror.Validation("invalid resource status %q", r.Status)
	}
	if err := validateCoordinates(r.Latitude, r.Longitude); err != nil {
		return err
	}
	if r.Capacity < 0 {
		return apperror.Validation("capacity must be >= 0, got %d", r.Capacity)
	}
	if r.AvailableCapacity < 0 {
		return apperror.Validation("available_capacity must be >= 0, got %d", r.AvailableCapacity)
	}
	return nil
}

func validateCoordinates(lat, lon float64) error {
	if !geo.ValidLatitude(lat) {
		return apperror.Validation("latitude must be within [-90, 90], got %v", lat)
	}
	if !geo.ValidLongitude(lon) {
		return apperror.Validation("longitude must be within [-180, 180], got %v", lon)
	}
	return nil
}

func validatePatch(p models.ResourcePatch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apperror.Validation("name must not be empty")
	}
	if p.Type != nil && !p.Type.Valid() {
		return apperror.Validation("invalid resource type %q", *p.Type)
	}
	if p.Status != nil && !p.Status.Valid() {
		return apperror.Validation("invalid resource status %q", *p.Status)
	}
	if p.Latitude != nil && !geo.ValidLatitude(*p.Latitude) {
		return apperror.Validation("latitude must be within [-90, 90], got %v", *p.Latitude)
	}
	if p.Longitude != nil && !geo.ValidLongitude(*p.Longitude) {
		return apperror.Validation("longitude must be within [-180, 180], got %v", *p.Longitude)
	}
	if p.Capacity != nil && *p.Capacity < 0 {
		return apperror.Validation("capacity must be >= 0, got %d", *p.Capacity)
	}
	return nil
}

func validateFilter(f models.ResourceFilter) error {
	if f.Type != "" && !f.Type.Valid() {
		return apperror.Validation("invalid resource type %q", f.Type)
	}
	if f.Status != "" && !f.Status.Valid() {
		return apperror.Validation("invalid resource status %q", f.Status)
	}
	return nil
}

func applyPatch(r *models.Resource, p models.ResourcePatch) {
	if p.Name != nil {
		r.Name = strings.TrimSpace(*p.Name)
	}
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Latitude != nil {
		r.Latitude = geo.RoundCoordinate(*p.Latitude)
	}
	if p.Longitude != nil {
		r.Longitude = geo.RoundCoordinate(*p.Longitude)
	}
	if p.Address != nil {
		r.Address = *p.Address
	}
	if p.Region != nil {
		r.Region = *p.Region
	}
	if p.Capacity != nil {
		r.Capacity = *p.Capacity
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Contact != nil {
		r.Contact = *p.Contact
	}
	if p.Helpline != nil {
		r.Helpline = *p.Helpline
	}
}
