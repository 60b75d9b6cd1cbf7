package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"texflow/internal/project"
)

// ancillarySuffixes are the by-products a compilation leaves next to the
// document, mirroring the usual LaTeX .gitignore.
var ancillarySuffixes = []string{
	".aux", ".log", ".out", ".toc", ".lof", ".lot",
	".bbl", ".blg", ".bcf", ".run.xml",
	".idx", ".ind", ".ilg", ".fls", ".synctex.gz",
}

var cleanCmd = &cobra.Command{
	Use:   "clean [document]",
	Short: "Remove LaTeX by-product files",
	Long:  "Remove the auxiliary files a compilation leaves behind (.aux, .log, .bbl, ...). With --pdf the produced PDF is removed too.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	deletePDF, err := cmd.Flags().GetBool("pdf")
	if err != nil {
		return err
	}

	var document string
	if len(args) > 0 && args[0] != "" {
		document, err = resolveDocument(args[0])
	} else {
		manifest, ok, loadErr := project.Load(".")
		if loadErr != nil {
			return loadErr
		}
		if !ok {
			return fmt.Errorf("%s", noManifestMessage)
		}
		document, err = resolveDocument(manifest.MainPath())
	}
	if err != nil {
		return err
	}

	stem := strings.TrimSuffix(document, filepath.Ext(document))
	removed := 0
	for _, suffix := range ancillarySuffixes {
		removed += removePath(stem + suffix)
	}
	// splitindex scatters per-index files as <stem>-<name>.{idx,ind,ilg}.
	for _, glob := range []string{"-*.idx", "-*.ind", "-*.ilg"} {
		matches, globErr := filepath.Glob(stem + glob)
		if globErr != nil {
			continue
		}
		for _, match := range matches {
			removed += removePath(match)
		}
	}
	if deletePDF {
		removed += removePath(stem + ".pdf")
	}

	_, _ = fmt.Fprintf(os.Stdout, "removed %d file(s)\n", removed)
	return nil
}

func removePath(path string) int {
	if err := os.Remove(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			_, _ = fmt.Fprintf(os.Stderr, "failed to remove %s: %v\n", path, err)
		}
		return 0
	}
	return 1
}

func init() {
	cleanCmd.Flags().Bool("pdf", false, "also remove the produced PDF")
}
