// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text
// files and from the environment. Each file in the directory represents one
// secret: the filename is the key name and the file contents (trimmed) are the
// value.
//
// Supported key files: tavily-api-key, openai-api-key, openai-base-url, model-name.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Key names used across the CLI.
const (
	KeyTavilyAPIKey  = "tavily-api-key"
	KeyOpenAIAPIKey  = "openai-api-key"
	KeyOpenAIBaseURL = "openai-base-url"
	KeyModelName     = "model-name"
)

// envAliases maps key names to the environment variables that override them.
var envAliases = map[string]string{
	KeyTavilyAPIKey:  "TAVILY_API_KEY",
	KeyOpenAIAPIKey:  "OPENAI_API_KEY",
	KeyOpenAIBaseURL: "OPENAI_BASE_URL",
	KeyModelName:     "MODEL_NAME",
}

// Load reads all files in dir and returns a map of filename to trimmed
// contents, then applies environment overrides. A missing directory or
// missing files are not errors; Load returns whatever the environment
// supplies. Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	secrets := make(map[string]string)

	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	for key, env := range envAliases {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			secrets[key] = v
		}
	}

	return secrets, nil
}

// Get returns the secret value for key, or fallback when fallback is non-empty.
func Get(secrets map[string]string, key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return secrets[key]
}

// Status reports which of the supported keys are set, without exposing values.
func Status(secrets map[string]string) map[string]bool {
	status := make(map[string]bool, len(envAliases))
	for key := range envAliases {
		status[key] = secrets[key] != ""
	}
	return status
}
