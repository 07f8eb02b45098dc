// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"github.com/MKhiriev/go-resource-keeper/internal/hooks"
	"github.com/MKhiriev/go-resource-keeper/internal/logger"
	"github.com/MKhiriev/go-resource-keeper/internal/schema"
	"github.com/MKhiriev/go-resource-keeper/internal/store"
)

type Services struct {
	ResourceService ResourceService
}

func NewServices(resources *schema.Registry, transforms *hooks.Registry, adapter store.Adapter, logger *logger.Logger) *Services {
	return &Services{
		ResourceService: NewResourceService(resources, transforms, adapter, logger),
	}
}
