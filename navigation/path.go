// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package navigation

import (
	"errors"
	"strings"
)

var ErrInvalidPath = errors.New("navigation: invalid path")

// CanonicalizePath normalizes a path for navigation: leading slash, no
// repeated slashes, no trailing slash except for "/". Query strings and
// fragments are dropped.
func CanonicalizePath(path string) (string, error) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if strings.ContainsAny(path, "\\\x00") {
		return "", ErrInvalidPath
	}
	if path == "" {
		return "/", nil
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path, nil
}
