package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CategorySeed describes a category created for every new user.
type CategorySeed struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
	Icon  string `yaml:"icon"`
}

// categoryFile is the layout of DEFAULT_CATEGORIES_FILE.
type categoryFile struct {
	Categories []CategorySeed `yaml:"categories"`
}

// BuiltinCategories is used when no seed file is configured.
var BuiltinCategories = []CategorySeed{
	{Name: "Food", Color: "#FF9800", Icon: "utensils"},
	{Name: "Housing", Color: "#3F51B5", Icon: "home"},
	{Name: "Transport", Color: "#2196F3", Icon: "car"},
	{Name: "Health", Color: "#F44336", Icon: "heart"},
	{Name: "Education", Color: "#9C27B0", Icon: "book"},
	{Name: "Leisure", Color: "#E91E63", Icon: "smile"},
	{Name: "Salary", Color: "#4CAF50", Icon: "briefcase"},
	{Name: "Other", Color: "#607D8B", Icon: "tag"},
}

// LoadCategorySeeds reads default categories from a YAML file. An empty path
// returns BuiltinCategories.
func LoadCategorySeeds(path string) ([]CategorySeed, error) {
	if path == "" {
		return BuiltinCategories, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading category seeds: %w", err)
	}
	var file categoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing category seeds: %w", err)
	}

	seen := make(map[string]bool, len(file.Categories))
	for i, c := range file.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("category seed %d: name is required", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("category seed %d: duplicate name %q", i+1, name)
		}
		seen[name] = true
		file.Categories[i].Name = name
		if c.Color == "" {
			file.Categories[i].Color = "#4CAF50"
		}
		if c.Icon == "" {
			file.Categories[i].Icon = "tag"
		}
	}
	return file.Categories, nil
}
