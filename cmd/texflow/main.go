package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"texflow/internal/schedule"
	"texflow/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "texflow",
	Short: "LaTeX compilation driver",
	Long:  `Texflow drives a LaTeX document to a stable PDF: it re-runs the processor, bibliography and index tools until the cross-references settle.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress per-diagnostic output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", schedule.DefaultMaxDiagnostics, "maximum number of diagnostics to collect per pass")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
