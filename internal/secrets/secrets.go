// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads NCBI credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Recognized key files: ncbi-api-key, ncbi-email, ncbi-tool.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Key file names.
const (
	KeyAPIKey = "ncbi-api-key"
	KeyEmail  = "ncbi-email"
	KeyTool   = "ncbi-tool"
)

// Secrets maps key file names to their values.
type Secrets map[string]string

// Or returns value when it is non-empty, the secret stored under key
// otherwise, and "" when neither exists. Explicit settings win over files.
func (s Secrets) Or(key, value string) string {
	if value != "" {
		return value
	}
	return s[key]
}

// Load reads all files in dir. A missing directory is not an error; Load
// returns an empty set. Unreadable files are logged as warnings and
// skipped. log may be nil.
func Load(dir string, log *logrus.Entry) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
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
			if log != nil {
				log.WithField("secret", name).WithError(err).Warn("could not read secret")
			}
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
