package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCleanRemovesByProducts(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "main.tex"))
	for _, name := range []string{
		"main.aux", "main.log", "main.bbl", "main.pdf",
		"main-keywords.idx", "main-keywords.ind",
		"other.aux",
	} {
		touch(t, filepath.Join(dir, name))
	}

	cleanCmd.SetArgs(nil)
	if err := runClean(cleanCmd, []string{filepath.Join(dir, "main")}); err != nil {
		t.Fatalf("runClean: %v", err)
	}

	for _, gone := range []string{"main.aux", "main.log", "main.bbl", "main-keywords.idx", "main-keywords.ind"} {
		if _, err := os.Stat(filepath.Join(dir, gone)); !os.IsNotExist(err) {
			t.Fatalf("%s should have been removed", gone)
		}
	}
	for _, kept := range []string{"main.tex", "main.pdf", "other.aux"} {
		if _, err := os.Stat(filepath.Join(dir, kept)); err != nil {
			t.Fatalf("%s should have been kept: %v", kept, err)
		}
	}
}

func TestCleanWithPDF(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "main.tex"))
	touch(t, filepath.Join(dir, "main.pdf"))

	if err := cleanCmd.Flags().Set("pdf", "true"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	defer func() { _ = cleanCmd.Flags().Set("pdf", "false") }()

	if err := runClean(cleanCmd, []string{filepath.Join(dir, "main")}); err != nil {
		t.Fatalf("runClean: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "main.pdf")); !os.IsNotExist(err) {
		t.Fatalf("main.pdf should have been removed")
	}
}
