// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	m := NewMetrics()
	m.RecordHTTPRequest(http.MethodGet, "/people", http.StatusOK, 10*time.Millisecond)
	m.RecordHTTPRequest(http.MethodGet, "/people", http.StatusOK, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/people", "200")))
}

func TestMetrics_RecordStorageOperation(t *testing.T) {
	m := NewMetrics()
	m.RecordStorageOperation("find", "person", nil, time.Millisecond)
	m.RecordStorageOperation("find", "person", errors.New("x"), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageOperationsTotal.WithLabelValues("find", "person", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageOperationsTotal.WithLabelValues("find", "person", "error")))
}

func TestMetrics_CacheAndRegistry(t *testing.T) {
	m := NewMetrics()
	m.RecordCacheHit("person")
	m.RecordCacheMiss("person")
	m.RecordCacheMiss("person")
	m.SetResourcesRegistered(3)
	m.RecordRegistrationError()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("person")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("person")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ResourcesRegistered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistrationErrors))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest(http.MethodGet, "/", 200, time.Second)
		m.RecordStorageOperation("find", "x", nil, time.Second)
		m.RecordCacheHit("x")
		m.RecordCacheMiss("x")
		m.SetResourcesRegistered(1)
		m.RecordRegistrationError()
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RecordHTTPRequest(http.MethodPost, "/people", http.StatusCreated, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resource_keeper_http_requests_total")
}
