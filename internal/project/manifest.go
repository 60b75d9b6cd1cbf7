// Package project locates and parses texflow.toml, the per-project manifest
// that fixes the document, tool choices, and compile defaults so the CLI can
// be invoked bare from anywhere inside the project tree.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file the walk-up search looks for.
const ManifestName = "texflow.toml"

// Manifest is a parsed texflow.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the TOML structure of texflow.toml.
type Config struct {
	Document DocumentConfig `toml:"document"`
	Compile  CompileConfig  `toml:"compile"`
}

// DocumentConfig names the main document and the tools that process it.
type DocumentConfig struct {
	Main      string `toml:"main"`
	Processor string `toml:"processor"`
	Bib       string `toml:"bib"`
	Index     string `toml:"index"`
	Output    string `toml:"output"`
}

// CompileConfig carries compile-loop defaults. Zero values mean "unset";
// command-line flags win over the manifest either way.
type CompileConfig struct {
	MaxPasses int    `toml:"max_passes"`
	Encoding  string `toml:"encoding"`
	Quiet     bool   `toml:"quiet"`
}

// FindManifest walks up from startDir to locate texflow.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and parses the nearest manifest above startDir. ok is false
// when no manifest exists, which is not an error: the CLI falls back to
// flags and defaults.
func Load(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := parseConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func parseConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("document") {
		return Config{}, fmt.Errorf("%s: missing [document]", path)
	}
	if !meta.IsDefined("document", "main") || strings.TrimSpace(cfg.Document.Main) == "" {
		return Config{}, fmt.Errorf("%s: missing [document].main", path)
	}
	if cfg.Compile.MaxPasses < 0 {
		return Config{}, fmt.Errorf("%s: [compile].max_passes must be positive", path)
	}
	return cfg, nil
}

// MainPath returns the absolute path of the main document.
func (m *Manifest) MainPath() string {
	return filepath.Join(m.Root, filepath.FromSlash(strings.TrimSpace(m.Config.Document.Main)))
}
