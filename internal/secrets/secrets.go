// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves API keys and credentials. Each key can come
// from three places, in precedence order: an explicit value (flag or
// config file), an environment variable (key name upper-cased with
// dashes as underscores, e.g. ANTHROPIC_API_KEY), or a plain-text file
// in the secrets directory whose filename is the key name.
//
// Supported key files: anthropic-api-key, opencitations-access-token.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Secrets holds the file-loaded values, keyed by filename.
type Secrets map[string]string

// Load reads all files in dir and returns their trimmed contents. A
// missing directory or missing files are not errors; Load returns an
// empty map. Unreadable files produce a warning on stderr but do not
// abort.
func Load(dir string) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", entry.Name(), err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[entry.Name()] = value
		}
	}

	return secrets, nil
}

// Get resolves key with full precedence: explicit value, then the
// environment, then the loaded file. Returns "" when nothing is set.
func (s Secrets) Get(key, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv(envName(key)); v != "" {
		return v
	}
	return s[key]
}

// envName maps a key filename to its environment variable.
func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}
