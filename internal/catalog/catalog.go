// Package catalog holds the immutable list of queues players can join.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/vogiaan1904/draftqueue/internal/models"
)

type Catalog struct {
	defs []models.QueueDefinition
	byID map[string]models.QueueDefinition
}

// New validates defs and builds a catalog preserving their order.
func New(defs []models.QueueDefinition) (*Catalog, error) {
	c := &Catalog{
		defs: make([]models.QueueDefinition, 0, len(defs)),
		byID: make(map[string]models.QueueDefinition, len(defs)),
	}

	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("catalog: queue without id")
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate queue id %q", d.ID)
		}
		if d.PlayerCount < 1 {
			return nil, fmt.Errorf("catalog: queue %q needs a positive player count, got %d", d.ID, d.PlayerCount)
		}
		if d.SetCode == "" {
			return nil, fmt.Errorf("catalog: queue %q has no set code", d.ID)
		}
		if d.Settings != nil {
			s := *d.Settings
			d.Settings = &s
		}

		c.defs = append(c.defs, d)
		c.byID[d.ID] = d
	}

	return c, nil
}

// Default returns the built-in queues. Outside production the last queue is
// turned into a two-player test queue so a table can be filled by hand.
func Default(production bool) *Catalog {
	defs := []models.QueueDefinition{
		{ID: "mat", Name: "March of the Machine: the Aftermath", PlayerCount: 8, SetCode: "mat"},
		{ID: "mom", Name: "March of the Machine", PlayerCount: 8, SetCode: "mom"},
		{ID: "dmu", Name: "Dominaria United", PlayerCount: 8, SetCode: "dmu"},
	}

	if !production {
		last := &defs[len(defs)-1]
		last.Name = "Test Queue"
		last.PlayerCount = 2
	}

	c, err := New(defs)
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads queue definitions from a JSON file when path is set, and falls
// back to Default otherwise.
func Load(path string, production bool) (*Catalog, error) {
	if path == "" {
		return Default(production), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	var defs []models.QueueDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}

	return New(defs)
}

func (c *Catalog) Get(queueID string) (models.QueueDefinition, bool) {
	d, ok := c.byID[queueID]
	return d, ok
}

// All returns the definitions in declaration order.
func (c *Catalog) All() []models.QueueDefinition {
	return slices.Clone(c.defs)
}
