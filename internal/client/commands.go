// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/MKhiriev/go-resource-keeper/internal/workers"
	"github.com/MKhiriev/go-resource-keeper/models"
)

var ErrUsage = errors.New("usage")

const Usage = `commands:
  get    <plural> <id>[,<id>...]
  list   <plural> [query]          e.g. "sort=-age&filter[name]=Ann"
  related <plural> <id> <relation>
  create <plural> <json>           a record object or an array of records
  update <plural> <id> <json>
  patch  <plural> <id> <json>
  delete <plural> <id>[,<id>...]
  import <plural> <file>           creates every record of a JSON array file`

// Commands runs command line verbs against a [ResourceClient] and prints
// the results as indented JSON.
type Commands struct {
	client  ResourceClient
	out     io.Writer
	workers int
}

// NewCommands binds verbs to c. Import creates up to parallel records at
// once.
func NewCommands(c ResourceClient, out io.Writer, parallel int) *Commands {
	return &Commands{client: c, out: out, workers: parallel}
}

// Run executes args, the verb first.
func (c *Commands) Run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: a command and a resource are required", ErrUsage)
	}
	verb, plural, rest := args[0], args[1], args[2:]

	switch verb {
	case "get":
		if len(rest) != 1 {
			return fmt.Errorf("%w: get <plural> <ids>", ErrUsage)
		}
		recs, err := c.client.Find(ctx, plural, splitIDs(rest[0])...)
		if err != nil {
			return err
		}
		return c.print(recs)

	case "list":
		params := url.Values{}
		if len(rest) > 0 {
			var err error
			if params, err = url.ParseQuery(rest[0]); err != nil {
				return fmt.Errorf("%w: bad query: %w", ErrUsage, err)
			}
		}
		recs, err := c.client.FindMany(ctx, plural, params)
		if err != nil {
			return err
		}
		return c.print(recs)

	case "related":
		if len(rest) != 2 {
			return fmt.Errorf("%w: related <plural> <id> <relation>", ErrUsage)
		}
		recs, err := c.client.Related(ctx, plural, rest[0], rest[1])
		if err != nil {
			return err
		}
		return c.print(recs)

	case "create":
		if len(rest) != 1 {
			return fmt.Errorf("%w: create <plural> <json>", ErrUsage)
		}
		recs, err := parseRecords([]byte(rest[0]))
		if err != nil {
			return err
		}
		created, err := c.client.Create(ctx, plural, recs...)
		if err != nil {
			return err
		}
		return c.print(created)

	case "update", "patch":
		if len(rest) != 2 {
			return fmt.Errorf("%w: %s <plural> <id> <json>", ErrUsage, verb)
		}
		var body map[string]any
		if err := json.Unmarshal([]byte(rest[1]), &body); err != nil {
			return fmt.Errorf("%w: body must be a JSON object: %w", ErrUsage, err)
		}

		var (
			rec models.Record
			err error
		)
		if verb == "update" {
			rec, err = c.client.Update(ctx, plural, rest[0], body)
		} else {
			rec, err = c.client.Patch(ctx, plural, rest[0], body)
		}
		if err != nil {
			return err
		}
		return c.print(rec)

	case "delete":
		if len(rest) != 1 {
			return fmt.Errorf("%w: delete <plural> <ids>", ErrUsage)
		}
		return c.client.Delete(ctx, plural, splitIDs(rest[0])...)

	case "import":
		if len(rest) != 1 {
			return fmt.Errorf("%w: import <plural> <file>", ErrUsage)
		}
		return c.importFile(ctx, plural, rest[0])
	}

	return fmt.Errorf("%w: unknown command %q", ErrUsage, verb)
}

func (c *Commands) importFile(ctx context.Context, plural, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	recs, err := parseRecords(data)
	if err != nil {
		return err
	}

	created := make([]models.Record, len(recs))
	var mu sync.Mutex

	batch := workers.New(c.workers)
	for i, rec := range recs {
		batch.Add(workers.WorkerFunc(func(ctx context.Context) error {
			saved, err := c.client.Create(ctx, plural, rec)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			if len(saved) != 1 {
				return fmt.Errorf("record %d: %w", i, ErrUnexpectedResponse)
			}
			mu.Lock()
			created[i] = saved[0]
			mu.Unlock()
			return nil
		}))
	}

	if err = batch.Run(ctx); err != nil {
		return err
	}
	return c.print(created)
}

func (c *Commands) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// parseRecords accepts one record object or an array of them.
func parseRecords(data []byte) ([]models.Record, error) {
	var many []models.Record
	if err := json.Unmarshal(data, &many); err == nil {
		return many, nil
	}

	var one models.Record
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("%w: records must be a JSON object or array: %w", ErrUsage, err)
	}
	return []models.Record{one}, nil
}
