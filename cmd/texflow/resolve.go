package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// resolveDocument guesses the main LaTeX file from a possibly extension-less
// argument. The .tex extension is tried first, even when the user supplied a
// different one, then .latex.
func resolveDocument(arg string) (string, error) {
	stem := strings.TrimSuffix(arg, filepath.Ext(arg))
	for _, ext := range []string{".tex", ".latex"} {
		candidate := stem + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			abs, absErr := filepath.Abs(candidate)
			if absErr != nil {
				return candidate, nil
			}
			return abs, nil
		}
	}
	return "", fmt.Errorf("no .tex/.latex file found with name %s", arg)
}
