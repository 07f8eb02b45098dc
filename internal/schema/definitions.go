// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MKhiriev/go-resource-keeper/models"
)

// HookNames lists built-in transforms attached to a resource by name.
type HookNames struct {
	Before []string `yaml:"before"`
	After  []string `yaml:"after"`
}

// Definition is a single resource entry of a definitions file.
type Definition struct {
	Name     string         `yaml:"-"`
	Plural   string         `yaml:"plural"`
	Fields   map[string]any `yaml:"fields"`
	ReadOnly bool           `yaml:"readOnly"`
	NoIndex  bool           `yaml:"noIndex"`
	Hooks    HookNames      `yaml:"hooks"`
}

// Options returns the registration options carried by the definition.
func (d Definition) Options() models.ResourceOptions {
	return models.ResourceOptions{
		Plural:   d.Plural,
		ReadOnly: d.ReadOnly,
		NoIndex:  d.NoIndex,
	}
}

// Schema parses the definition's fields.
func (d Definition) Schema() (models.Schema, error) {
	return Parse(d.Fields)
}

type definitionsFile struct {
	Resources yaml.Node `yaml:"resources"`
}

// LoadDefinitions reads a YAML or JSON definitions file.
func LoadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading definitions file: %w", err)
	}
	return ParseDefinitions(data)
}

// ParseDefinitions decodes definitions, keeping the order in which
// resources appear in the document.
func ParseDefinitions(data []byte) ([]Definition, error) {
	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}

	node := &file.Resources
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: resources must be a mapping", ErrInvalidDefinition)
	}

	defs := make([]Definition, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var def Definition
		if err := node.Content[i+1].Decode(&def); err != nil {
			return nil, fmt.Errorf("%w: resource %q: %w", ErrInvalidDefinition, node.Content[i].Value, err)
		}
		def.Name = node.Content[i].Value
		defs = append(defs, def)
	}

	return defs, nil
}
