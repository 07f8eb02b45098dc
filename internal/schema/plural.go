// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package schema

import (
	"regexp"

	"github.com/jinzhu/inflection"

	"github.com/MKhiriev/go-resource-keeper/models"
)

var nameRegexp = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// MetricsPlural is the route segment taken by the Prometheus endpoint.
const MetricsPlural = "metrics"

// reservedPlurals collide with top-level document keys or with the metrics
// route.
var reservedPlurals = []string{
	models.DocumentLinksKey,
	models.DocumentLinkedKey,
	models.DocumentMetaKey,
	MetricsPlural,
}

// Plural returns the collection name used for a resource in routes and
// response documents.
func Plural(name string) string {
	return inflection.Plural(name)
}

// ValidName reports whether name can be used as a resource or plural name.
func ValidName(name string) bool {
	return nameRegexp.MatchString(name)
}

func isReservedPlural(plural string) bool {
	for _, r := range reservedPlurals {
		if plural == r {
			return true
		}
	}
	return false
}
