// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package project

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/recsheet/pkg/types"
)

// LoadProfile reads a YAML column profile from path. An empty path returns
// the built-in recording-sheet profile.
func LoadProfile(path string) (types.ColumnProfile, error) {
	if path == "" {
		return types.RecSheetProfile(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return types.ColumnProfile{}, fmt.Errorf("reading profile %s: %w", path, err)
	}

	var p types.ColumnProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return types.ColumnProfile{}, fmt.Errorf("parsing profile %s: %w", path, err)
	}

	if err := validateProfile(p); err != nil {
		return types.ColumnProfile{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// validateProfile rejects profiles that cannot select anything.
func validateProfile(p types.ColumnProfile) error {
	if len(p.Required) == 0 {
		return fmt.Errorf("no required columns")
	}
	for i, c := range p.Required {
		if c.Source == "" {
			return fmt.Errorf("required column %d has no source name", i)
		}
	}
	return nil
}
