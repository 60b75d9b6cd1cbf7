// Package main implements the texflow CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"texflow/internal/histcache"
	"texflow/internal/project"
	"texflow/internal/report"
	"texflow/internal/schedule"
	"texflow/internal/toolrun"
)

const noManifestMessage = "no texflow.toml found\nplease specify the document explicitly, e.g.:\n  texflow compile path/to/main.tex"

var compileCmd = &cobra.Command{
	Use:   "compile [flags] [document]",
	Short: "Compile a LaTeX document to a stable PDF",
	Long: `Compile runs the processor as many times as needed (up to a ceiling),
interleaving bibliography and index tool runs, until no diagnostic
recommends another pass. The document argument may omit its extension;
without it the nearest texflow.toml names the document.`,
	Args: cobra.MaximumNArgs(1),
	RunE: compileExecution,
}

func compileExecution(cmd *cobra.Command, args []string) error {
	processor, err := cmd.Flags().GetString("processor")
	if err != nil {
		return err
	}
	bibTool, err := cmd.Flags().GetString("bib")
	if err != nil {
		return err
	}
	indexTool, err := cmd.Flags().GetString("index")
	if err != nil {
		return err
	}
	outputName, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	encodingName, err := cmd.Flags().GetString("encoding")
	if err != nil {
		return err
	}
	maxPasses, err := cmd.Flags().GetInt("max-passes")
	if err != nil {
		return err
	}
	formatValue, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}

	if formatValue != "pretty" && formatValue != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", formatValue)
	}
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	colorValue, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	colorOn, err := readColorMode(colorValue)
	if err != nil {
		return err
	}

	// The manifest fills in whatever the flags left unset.
	manifest, manifestFound, err := project.Load(".")
	if err != nil {
		return err
	}
	var document string
	if len(args) > 0 && args[0] != "" {
		document, err = resolveDocument(args[0])
		if err != nil {
			return err
		}
	} else {
		if !manifestFound {
			return fmt.Errorf("%s", noManifestMessage)
		}
		document, err = resolveDocument(manifest.MainPath())
		if err != nil {
			return err
		}
	}
	if manifestFound {
		doc := manifest.Config.Document
		if processor == "" {
			processor = doc.Processor
		}
		if bibTool == "" {
			bibTool = doc.Bib
		}
		if indexTool == "" {
			indexTool = doc.Index
		}
		if outputName == "" {
			outputName = doc.Output
		}
		if maxPasses == 0 {
			maxPasses = manifest.Config.Compile.MaxPasses
		}
		if encodingName == "" {
			encodingName = manifest.Config.Compile.Encoding
		}
		quiet = quiet || manifest.Config.Compile.Quiet
	}
	if encodingName == "" {
		encodingName = toolrun.DefaultEncodingName()
	}
	decoder, err := toolrun.NewDecoder(encodingName)
	if err != nil {
		return err
	}

	var cache schedule.FingerprintCache
	if !noCache {
		if c, cacheErr := histcache.Open("texflow"); cacheErr == nil {
			cache = c
		}
	}

	req := schedule.Request{
		Document:       document,
		Processor:      processor,
		BibTool:        bibTool,
		IndexTool:      indexTool,
		OutputName:     outputName,
		MaxPasses:      maxPasses,
		MaxDiagnostics: maxDiagnostics,
		Runner:         toolrun.ExecRunner{Decoder: decoder},
		Cache:          cache,
		// The .log file is written in the same encoding as the tool
		// streams; read it through the same decoder.
		ReadLog: decoder.ReadFile,
	}

	useTUI := formatValue == "pretty" && shouldUseTUI(uiModeValue)
	var outcome schedule.Outcome
	if useTUI {
		title := fmt.Sprintf("texflow compile %s", filepath.Base(document))
		outcome, err = runScheduleWithUI(cmd.Context(), title, req)
	} else {
		sched, newErr := schedule.New(req)
		if newErr != nil {
			return newErr
		}
		outcome, err = sched.Run(cmd.Context())
	}
	if err != nil {
		return err
	}

	opts := report.Options{Quiet: quiet, Color: colorOn}
	if formatValue == "json" {
		if jsonErr := report.JSON(os.Stdout, outcome, opts); jsonErr != nil {
			return jsonErr
		}
	} else {
		report.Pretty(os.Stdout, outcome, opts)
	}
	if timings {
		printScheduleTimings(os.Stdout, outcome.Timings)
	}

	switch outcome.State {
	case schedule.StateFailed:
		os.Exit(1)
	case schedule.StateLimitExceeded:
		os.Exit(2)
	}
	return nil
}

func readColorMode(value string) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return isTerminal(os.Stdout), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

func init() {
	compileCmd.Flags().StringP("processor", "p", "", "typesetting processor (default pdflatex)")
	compileCmd.Flags().StringP("bib", "b", "", "bibliography tool (default guessed from auxiliary files)")
	compileCmd.Flags().StringP("index", "i", "", "index tool (default guessed from auxiliary files)")
	compileCmd.Flags().StringP("output", "o", "", "rename the produced PDF")
	compileCmd.Flags().String("encoding", "", "tool output encoding (default from LC_ALL)")
	compileCmd.Flags().Int("max-passes", 0, fmt.Sprintf("processor pass ceiling (default %d)", schedule.DefaultMaxPasses))
	compileCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	compileCmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
	compileCmd.Flags().Bool("no-cache", false, "ignore the fingerprint cache")
}
