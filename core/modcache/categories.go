package modcache

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

const (
	// UnsortedID is the category id of entries whose id is not in the table.
	UnsortedID = -1
	// UnsortedName is the category name of entries whose id is not in the table.
	UnsortedName = "Unsorted"
)

// Category is one row of the category table.
type Category struct {
	ID   int    `toml:"id" json:"id"`
	Name string `toml:"name" json:"name"`
}

// Categories resolves category ids to names.
type Categories struct {
	byID map[int]string
}

var defaultCategories = []Category{
	{107, "Buses"},
	{108, "Other Land Vehicles"},
	{117, "Trailers"},
	{118, "Other Loads"},
	{119, "Addon Parts"},
	{120, "Boats"},
	{121, "Trains"},
	{123, "Helicopters"},
	{124, "Planes"},
	{125, "Fixed Structures"},
	{129, "Terrains"},
	{146, "Street Cars"},
	{147, "Light Racing Cars"},
	{148, "Offroad Cars"},
	{149, "Fantasy Cars"},
	{150, "Bikes"},
	{151, "Tractors"},
	{152, "Towercranes"},
	{153, "Mobile Cranes"},
	{154, "Other Cranes"},
	{155, "Crawlers"},
	{162, "Forklifts"},
	{164, "Fantasy Trucks"},
	{165, "Transport Trucks"},
	{166, "Other Trucks"},
	{167, "Dump Trucks"},
	{168, "Military Vehicles"},
	{169, "Skins"},
}

// NewCategories builds a table from rows. Later rows win on duplicate ids.
func NewCategories(rows []Category) *Categories {
	c := &Categories{byID: make(map[int]string, len(rows))}
	for _, row := range rows {
		c.byID[row.ID] = row.Name
	}
	return c
}

// DefaultCategories returns the built-in category table.
func DefaultCategories() *Categories {
	return NewCategories(defaultCategories)
}

// LoadCategories reads a TOML table of [[category]] rows (id, name).
func LoadCategories(path string) (*Categories, error) {
	var file struct {
		Category []Category `toml:"category"`
	}
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to read category table %s: %w", path, err)
	}
	if len(file.Category) == 0 {
		return nil, fmt.Errorf("category table %s has no [[category]] rows", path)
	}
	return NewCategories(file.Category), nil
}

// Resolve returns the id and name for id, or the Unsorted sentinel.
func (c *Categories) Resolve(id int) (int, string) {
	if name, ok := c.byID[id]; ok {
		return id, name
	}
	return UnsortedID, UnsortedName
}

// List returns the table sorted by id.
func (c *Categories) List() []Category {
	out := make([]Category, 0, len(c.byID))
	for id, name := range c.byID {
		out = append(out, Category{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
