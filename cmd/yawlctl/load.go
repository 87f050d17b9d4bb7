package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yawlrun/yawlrun/version"
)

func loadDefinitionFile(path string) (*version.Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return version.LoadYAML(raw)
	case ".json":
		return version.LoadJSON(raw)
	default:
		return nil, fmt.Errorf("unrecognized definition file extension for %s (want .yaml, .yml, or .json)", path)
	}
}
