// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-resource-keeper/internal/logger"
	"github.com/MKhiriev/go-resource-keeper/internal/utils"
	"github.com/MKhiriev/go-resource-keeper/models"
)

const mergePatchContentType = "application/merge-patch+json"

// Config locates the API.
type Config struct {
	// Address is the server URL; "http://" is assumed when no scheme is
	// given.
	Address string
	// Namespace is the route prefix configured on the server.
	Namespace string
	// Timeout bounds every request. Zero means no limit.
	Timeout time.Duration
	// Token is an optional bearer token.
	Token string
}

type httpResourceClient struct {
	client *utils.HTTPClient
	prefix string

	logger *logger.Logger
}

// New builds an HTTP [ResourceClient].
func New(cfg Config, logger *logger.Logger) (ResourceClient, error) {
	baseURL, err := normalizeBaseURL(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	c := &httpResourceClient{
		client: utils.NewHTTPClient(baseURL, cfg.Timeout),
		logger: logger,
	}
	if ns := strings.Trim(cfg.Namespace, "/"); ns != "" {
		c.prefix = "/" + ns
	}
	if cfg.Token != "" {
		c.SetToken(cfg.Token)
	}

	return c, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (c *httpResourceClient) SetToken(token string) {
	c.client.SetToken(strings.TrimSpace(token))
}

func (c *httpResourceClient) Find(ctx context.Context, plural string, ids ...string) ([]models.Record, error) {
	resp, err := c.client.R().SetContext(ctx).Get(c.itemPath(plural, ids...))
	if err != nil {
		return nil, fmt.Errorf("find request: %w", err)
	}
	return c.records(resp, plural)
}

func (c *httpResourceClient) FindMany(ctx context.Context, plural string, params url.Values) ([]models.Record, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		Get(c.collectionPath(plural))
	if err != nil {
		return nil, fmt.Errorf("find many request: %w", err)
	}
	return c.records(resp, plural)
}

func (c *httpResourceClient) Related(ctx context.Context, plural, id, relation string) ([]models.Record, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(c.itemPath(plural, id) + "/" + url.PathEscape(relation))
	if err != nil {
		return nil, fmt.Errorf("related request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	doc, err := decodeDocument(resp)
	if err != nil {
		return nil, err
	}
	// the only collection is the related resource
	for _, recs := range doc.Collections {
		return recs, nil
	}
	return nil, fmt.Errorf("%w: no collection in related response", ErrUnexpectedResponse)
}

func (c *httpResourceClient) Create(ctx context.Context, plural string, records ...models.Record) ([]models.Record, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", utils.ContentTypeJSON).
		SetBody(models.Document{Collections: map[string][]models.Record{plural: records}}).
		Post(c.collectionPath(plural))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.records(resp, plural)
}

func (c *httpResourceClient) Update(ctx context.Context, plural, id string, record models.Record) (models.Record, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", utils.ContentTypeJSON).
		SetBody(models.Document{Collections: map[string][]models.Record{plural: {record}}}).
		Put(c.itemPath(plural, id))
	if err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}
	return c.single(resp, plural)
}

func (c *httpResourceClient) Patch(ctx context.Context, plural, id string, patch map[string]any) (models.Record, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", mergePatchContentType).
		SetBody(patch).
		Patch(c.itemPath(plural, id))
	if err != nil {
		return nil, fmt.Errorf("patch request: %w", err)
	}
	return c.single(resp, plural)
}

func (c *httpResourceClient) Delete(ctx context.Context, plural string, ids ...string) error {
	resp, err := c.client.R().SetContext(ctx).Delete(c.itemPath(plural, ids...))
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return mapHTTPError(resp)
}

func (c *httpResourceClient) collectionPath(plural string) string {
	return c.prefix + "/" + url.PathEscape(plural)
}

func (c *httpResourceClient) itemPath(plural string, ids ...string) string {
	escaped := make([]string, len(ids))
	for i, id := range ids {
		escaped[i] = url.PathEscape(id)
	}
	return c.collectionPath(plural) + "/" + strings.Join(escaped, ",")
}

func (c *httpResourceClient) records(resp *resty.Response, plural string) ([]models.Record, error) {
	if err := mapHTTPError(resp); err != nil {
		c.logger.Debug().Err(err).Str("url", resp.Request.URL).Msg("request failed")
		return nil, err
	}

	doc, err := decodeDocument(resp)
	if err != nil {
		return nil, err
	}
	recs, ok := doc.Collections[plural]
	if !ok {
		return nil, fmt.Errorf("%w: no %q collection", ErrUnexpectedResponse, plural)
	}
	return recs, nil
}

func (c *httpResourceClient) single(resp *resty.Response, plural string) (models.Record, error) {
	recs, err := c.records(resp, plural)
	if err != nil {
		return nil, err
	}
	if len(recs) != 1 {
		return nil, fmt.Errorf("%w: expected one record, got %d", ErrUnexpectedResponse, len(recs))
	}
	return recs[0], nil
}

func decodeDocument(resp *resty.Response) (models.Document, error) {
	var doc models.Document
	if err := json.Unmarshal(resp.Body(), &doc); err != nil {
		return models.Document{}, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	return doc, nil
}
