// Package seed bootstraps an empty database from a YAML subscription file.
package seed

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the root of a seed document.
type File struct {
	Categories []Category `yaml:"categories"`
}

type Category struct {
	Name    string   `yaml:"name"`
	Sources []Source `yaml:"sources"`
}

type Source struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// Load reads and validates a seed file. A missing file is not an error; it
// returns nil so startup can continue with an empty catalog.
func Load(path string) (*File, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("Seed file not found, skipping", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	if err := validate(&file); err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, err)
	}

	return &file, nil
}

func validate(file *File) error {
	seenURLs := make(map[string]bool)

	for _, category := range file.Categories {
		if category.Name == "" {
			return fmt.Errorf("category name is required")
		}
		for _, source := range category.Sources {
			if source.URL == "" {
				return fmt.Errorf("source URL is required in category %q", category.Name)
			}
			if source.Title == "" {
				return fmt.Errorf("source title is required for %s", source.URL)
			}
			if seenURLs[source.URL] {
				return fmt.Errorf("duplicate source URL %s", source.URL)
			}
			seenURLs[source.URL] = true
		}
	}

	return nil
}
