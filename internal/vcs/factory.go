// SPDX-License-Identifier: MIT
package vcs

import (
	"fmt"
	"strings"
)

// ParseBackendSelection parses --backend selections. An empty selection
// means the exec-based git backend.
func ParseBackendSelection(raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	switch name {
	case "":
		return "git", nil
	case "git", "gogit":
		return name, nil
	default:
		return "", fmt.Errorf("unsupported backend %q (supported: git,gogit)", raw)
	}
}

// NewBackendForSelection creates the backend for a --backend selection.
func NewBackendForSelection(raw string) (Backend, error) {
	name, err := ParseBackendSelection(raw)
	if err != nil {
		return nil, err
	}
	switch name {
	case "gogit":
		return NewGoGitBackend(), nil
	default:
		return NewGitBackend(nil), nil
	}
}
