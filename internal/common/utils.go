package common

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

const (
	MaxConcurrencyLimit = 8

	// Request limits
	DefaultMaxFileCount = 10
	DefaultMaxFileSize  = 50 * 1024 * 1024
	DefaultMaxTotalSize = 100 * 1024 * 1024

	DefaultRasterDPI = 150
)

// GenerateUUID generates a new UUID string
func GenerateUUID() string {
	return uuid.New().String()
}

// BaseName returns the file name without directories or extension.
func BaseName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return "file"
	}
	ext := path.Ext(name)
	if ext == name {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

// ReplaceExt swaps the extension of name for ext (which includes the dot).
func ReplaceExt(name, ext string) string {
	return BaseName(name) + ext
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
