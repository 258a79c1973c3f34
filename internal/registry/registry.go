// Package registry holds the ordered mapping from model output index to
// mushroom species label. The mapping is loaded once at startup and is
// immutable afterwards; its order is the model's output order.
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/mushroomid/internal/config"
)

type namesFile struct {
	MushroomClasses []string `json:"mushroom_classes"`
}

// Registry is the read-only index → label mapping.
type Registry struct {
	labels []string
}

// Load reads the class-names JSON file and validates it. Any fault (missing
// file, malformed JSON, empty or duplicated labels) is a ConfigurationError:
// the caller must refuse to serve.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, config.NewConfigurationError("class_names", fmt.Errorf("read %s: %w", path, err))
	}

	var file namesFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, config.NewConfigurationError("class_names", fmt.Errorf("parse %s: %w", path, err))
	}

	if len(file.MushroomClasses) == 0 {
		return nil, config.NewConfigurationError("class_names", fmt.Errorf("%s contains no classes", path))
	}

	seen := make(map[string]int, len(file.MushroomClasses))
	for i, label := range file.MushroomClasses {
		if label == "" {
			return nil, config.NewConfigurationError("class_names", fmt.Errorf("empty label at index %d", i))
		}
		if prev, ok := seen[label]; ok {
			return nil, config.NewConfigurationError("class_names", fmt.Errorf("duplicate label %q at indexes %d and %d", label, prev, i))
		}
		seen[label] = i
	}

	labels := make([]string, len(file.MushroomClasses))
	copy(labels, file.MushroomClasses)
	return &Registry{labels: labels}, nil
}

// Size returns the number of classes.
func (r *Registry) Size() int {
	return len(r.labels)
}

// Label returns the class label at the given model output index.
func (r *Registry) Label(i int) (string, error) {
	if i < 0 || i >= len(r.labels) {
		return "", fmt.Errorf("class index %d out of range [0,%d)", i, len(r.labels))
	}
	return r.labels[i], nil
}

// Labels returns a copy of the ordered label list.
func (r *Registry) Labels() []string {
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}
