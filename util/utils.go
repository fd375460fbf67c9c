// Package util holds small helpers shared across the transformer suite.
package util

import (
	"log"
	"os"
	"path/filepath"
)

// GetAbsolutePath resolves a path relative to the current working directory.
func GetAbsolutePath(relativePath string) string {
	root, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	return filepath.Join(root, relativePath)
}

func StringPtr(s string) *string {
	return &s
}
