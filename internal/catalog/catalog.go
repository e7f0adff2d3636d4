// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog holds the starter templates a new editing session can be
// seeded from.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"mailcanvas/internal/models"
)

//go:embed catalog.yaml
var builtin []byte

// Entry is one starter template.
type Entry struct {
	ID          string           `yaml:"id" json:"id"`
	Name        string           `yaml:"name" json:"name"`
	Description string           `yaml:"description" json:"description"`
	Thumbnail   string           `yaml:"thumbnail" json:"thumbnail"`
	Styles      models.StyleSet  `yaml:"styles" json:"styles"`
	Elements    []models.Element `yaml:"elements" json:"elements"`
}

// Draft returns a fresh editing draft seeded from the entry. The element
// slice is copied so edits never reach the catalog.
func (e *Entry) Draft() models.Draft {
	return models.Draft{
		Name:         e.Name,
		TemplateType: "email",
		Styles:       e.Styles,
		Elements:     slices.Clone(e.Elements),
	}
}

// Catalog is an ordered, read-only set of entries.
type Catalog struct {
	entries []Entry
	byID    map[string]int
}

// Load returns the built-in catalog.
func Load() (*Catalog, error) {
	return Parse(builtin)
}

// MustLoad is Load for package initialization; the built-in data is
// covered by tests.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse reads a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	c := &Catalog{entries: entries, byID: make(map[string]int, len(entries))}
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog entry %d has no id", i)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog entry %q", e.ID)
		}
		seen := make(map[string]bool, len(e.Elements))
		for _, el := range e.Elements {
			if el.ID == "" || seen[el.ID] {
				return nil, fmt.Errorf("catalog entry %q: missing or duplicate element id %q", e.ID, el.ID)
			}
			seen[el.ID] = true
		}
		c.byID[e.ID] = i
	}
	return c, nil
}

// Get returns the entry with the given id.
func (c *Catalog) Get(id string) (*Entry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	e := c.entries[i]
	return &e, true
}

// List returns all entries in catalog order.
func (c *Catalog) List() []Entry {
	return slices.Clone(c.entries)
}
