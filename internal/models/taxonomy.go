package models

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultCategory is the sentinel assigned whenever classification is
// unavailable or not confident enough.
const DefaultCategory = "other"

// CategoryDefinition describes one entry of the taxonomy.
type CategoryDefinition struct {
	Name          string   `yaml:"name" json:"name"`
	Description   string   `yaml:"description" json:"description"`
	Icon          string   `yaml:"icon" json:"icon"`
	Color         string   `yaml:"color" json:"color"`
	Subcategories []string `yaml:"subcategories" json:"subcategories"`
}

// Taxonomy is the closed, ordered label set used for classification.
// It is a value type whose accessors return copies, so it cannot be mutated
// once built.
type Taxonomy struct {
	categories  []CategoryDefinition
	index       map[string]int
	defaultName string
}

// NewTaxonomy validates defs and builds a Taxonomy. Names must be non-blank
// and unique, and defaultName must be one of them.
func NewTaxonomy(defs []CategoryDefinition, defaultName string) (Taxonomy, error) {
	if len(defs) == 0 {
		return Taxonomy{}, errors.New("taxonomy must contain at least one category")
	}

	t := Taxonomy{
		categories:  make([]CategoryDefinition, 0, len(defs)),
		index:       make(map[string]int, len(defs)),
		defaultName: defaultName,
	}
	for _, d := range defs {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return Taxonomy{}, errors.New("taxonomy category with blank name")
		}
		if _, dup := t.index[name]; dup {
			return Taxonomy{}, fmt.Errorf("duplicate taxonomy category %q", name)
		}
		d.Name = name
		d.Subcategories = append([]string(nil), d.Subcategories...)
		t.index[name] = len(t.categories)
		t.categories = append(t.categories, d)
	}
	if _, ok := t.index[defaultName]; !ok {
		return Taxonomy{}, fmt.Errorf("taxonomy is missing the default category %q", defaultName)
	}
	return t, nil
}

// Default returns the name of the fallback category.
func (t Taxonomy) Default() string {
	return t.defaultName
}

// Len returns the number of categories.
func (t Taxonomy) Len() int {
	return len(t.categories)
}

// Names returns the category names in taxonomy order.
func (t Taxonomy) Names() []string {
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.Name
	}
	return names
}

// Categories returns a deep copy of the definitions.
func (t Taxonomy) Categories() []CategoryDefinition {
	out := make([]CategoryDefinition, len(t.categories))
	for i, c := range t.categories {
		c.Subcategories = append([]string(nil), c.Subcategories...)
		out[i] = c
	}
	return out
}

// Lookup returns the definition for name.
func (t Taxonomy) Lookup(name string) (CategoryDefinition, bool) {
	i, ok := t.index[name]
	if !ok {
		return CategoryDefinition{}, false
	}
	c := t.categories[i]
	c.Subcategories = append([]string(nil), c.Subcategories...)
	return c, true
}

// Contains reports whether name is a member of the taxonomy.
func (t Taxonomy) Contains(name string) bool {
	_, ok := t.index[name]
	return ok
}

var builtinCategories = []CategoryDefinition{
	{Name: "groceries", Description: "Supermarkets, bakeries and food stores", Icon: "🛒", Color: "#4CAF50",
		Subcategories: []string{"supermarket", "bakery", "butcher", "market"}},
	{Name: "restaurants", Description: "Restaurants, cafes, bars and food delivery", Icon: "🍽️", Color: "#FF9800",
		Subcategories: []string{"restaurant", "cafe", "bar", "delivery", "fast food"}},
	{Name: "transport", Description: "Public transport, taxis, fuel and parking", Icon: "🚌", Color: "#2196F3",
		Subcategories: []string{"public transport", "taxi", "fuel", "parking", "car service"}},
	{Name: "shopping", Description: "Clothing, electronics and general retail", Icon: "🛍️", Color: "#E91E63",
		Subcategories: []string{"clothing", "electronics", "home goods", "online marketplace"}},
	{Name: "housing", Description: "Rent, mortgage and home maintenance", Icon: "🏠", Color: "#795548",
		Subcategories: []string{"rent", "mortgage", "repairs", "furniture"}},
	{Name: "utilities", Description: "Electricity, water, gas, internet and phone", Icon: "💡", Color: "#FFC107",
		Subcategories: []string{"electricity", "water", "gas", "internet", "mobile"}},
	{Name: "health", Description: "Pharmacies, doctors and insurance", Icon: "💊", Color: "#F44336",
		Subcategories: []string{"pharmacy", "doctor", "dentist", "insurance"}},
	{Name: "entertainment", Description: "Cinema, events, games and hobbies", Icon: "🎬", Color: "#9C27B0",
		Subcategories: []string{"cinema", "concerts", "games", "sports", "hobbies"}},
	{Name: "travel", Description: "Flights, hotels and travel bookings", Icon: "✈️", Color: "#00BCD4",
		Subcategories: []string{"flights", "hotels", "car rental", "tours"}},
	{Name: "education", Description: "Courses, books and tuition", Icon: "📚", Color: "#3F51B5",
		Subcategories: []string{"courses", "books", "tuition"}},
	{Name: "subscriptions", Description: "Streaming, software and memberships", Icon: "🔁", Color: "#607D8B",
		Subcategories: []string{"streaming", "software", "memberships"}},
	{Name: "income", Description: "Salary, refunds and other incoming money", Icon: "💰", Color: "#8BC34A",
		Subcategories: []string{"salary", "refund", "interest", "cashback"}},
	{Name: "transfers", Description: "Transfers between accounts and people, cash withdrawals", Icon: "🔄", Color: "#9E9E9E",
		Subcategories: []string{"card to card", "own accounts", "cash withdrawal"}},
	{Name: DefaultCategory, Description: "Anything that does not fit another category", Icon: "❓", Color: "#BDBDBD"},
}

// DefaultTaxonomy returns the built-in taxonomy.
func DefaultTaxonomy() Taxonomy {
	t, err := NewTaxonomy(builtinCategories, DefaultCategory)
	if err != nil {
		panic(fmt.Sprintf("builtin taxonomy is invalid: %v", err))
	}
	return t
}
