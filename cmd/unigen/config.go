package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional unigen.yaml next to the working directory:
// model aliases plus a few default knobs.
//
//	default_model: gpt-4o-mini
//	temperature: 0.2
//	aliases:
//	  fast: groq::llama-3.1-8b-instant
//	  smart: claude-sonnet-4-5
type fileConfig struct {
	DefaultModel string            `yaml:"default_model"`
	Temperature  *float64          `yaml:"temperature"`
	MaxTokens    *uint32           `yaml:"max_tokens"`
	Aliases      map[string]string `yaml:"aliases"`
}

const configFileName = "unigen.yaml"

// loadFileConfig reads unigen.yaml when present; a missing file is not an
// error.
func loadFileConfig() (fileConfig, error) {
	var config fileConfig

	raw, err := os.ReadFile(configFileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return config, fmt.Errorf("reading %s: %w", configFileName, err)
	}

	if err := yaml.Unmarshal(raw, &config); err != nil {
		return config, fmt.Errorf("parsing %s: %w", configFileName, err)
	}
	return config, nil
}

// resolveAlias expands a configured alias, or returns the model unchanged.
func (fc fileConfig) resolveAlias(model string) string {
	if expanded, ok := fc.Aliases[model]; ok {
		return expanded
	}
	return model
}
