package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/colony-go/internal/infrastructure/config"
)

// decodeFile reads a YAML document into out and runs struct validation.
// Unknown keys are rejected so typos in data files surface at startup.
func decodeFile(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := config.NewValidator().Validate(out); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

func blank(path string) bool {
	return strings.TrimSpace(path) == ""
}
