// Package auxscan probes the auxiliary files a typesetter run leaves behind
// (.aux, .bcf, .idx) to corroborate the control signals found in its output:
// which bibliography or index tool applies, which units it should process,
// and a fingerprint of the relevant directives so an unchanged run is not
// repeated.
package auxscan

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Bib and index directive forms. Only these lines feed tool selection and
// fingerprints; everything else in an aux file is churn.
var (
	reBibDirective = regexp.MustCompile(`\\bibdata\{.*?\}|\\bibstyle\{.*?\}|\\citation\{.*?\}`)
	reIndexEntry   = regexp.MustCompile(`\\indexentry(?:\[[^]]+\])?\{.*\}\{.*\}`)
	reTaggedEntry  = regexp.MustCompile(`(?m)^\s*\\indexentry\[[^]]+\]`)
	reUntagged     = regexp.MustCompile(`(?m)^\s*\\indexentry\{`)
)

// Tool names the prober can recommend.
const (
	ToolBibtex     = "bibtex"
	ToolBiber      = "biber"
	ToolMakeindex  = "makeindex"
	ToolSplitindex = "splitindex"
)

// Prober inspects the working directory of one document.
type Prober struct {
	dir  string
	base string
}

// NewProber returns a prober for the given main document file
// (e.g. "./thesis.tex").
func NewProber(texfile string) *Prober {
	dir := filepath.Dir(texfile)
	name := filepath.Base(texfile)
	return &Prober{
		dir:  dir,
		base: strings.TrimSuffix(name, filepath.Ext(name)),
	}
}

// Base returns the document's base name without suffix.
func (p *Prober) Base() string { return p.base }

func (p *Prober) path(name string) string {
	return filepath.Join(p.dir, name)
}

func (p *Prober) read(name string) (string, bool) {
	data, err := os.ReadFile(p.path(name))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// GuessBibTool recommends a bibliography tool:
//
//  1. a .bcf next to the document means biber;
//  2. otherwise any .aux carrying \bibdata/\bibstyle/\citation means bibtex;
//  3. otherwise there is nothing to process and "" is returned.
func (p *Prober) GuessBibTool() string {
	if _, err := os.Stat(p.path(p.base + ".bcf")); err == nil {
		return ToolBiber
	}
	for _, aux := range p.auxFiles() {
		if txt, ok := p.read(aux); ok && reBibDirective.MatchString(txt) {
			return ToolBibtex
		}
	}
	return ""
}

// BibUnits returns the stems the bibliography tool should be invoked on:
// the .bcf for biber, every directive-carrying .aux for bibtex.
func (p *Prober) BibUnits(tool string) []string {
	switch tool {
	case ToolBiber:
		if _, err := os.Stat(p.path(p.base + ".bcf")); err == nil {
			return []string{p.base}
		}
		return nil
	case ToolBibtex:
		var units []string
		for _, aux := range p.auxFiles() {
			if txt, ok := p.read(aux); ok && reBibDirective.MatchString(txt) {
				units = append(units, strings.TrimSuffix(aux, ".aux"))
			}
		}
		return units
	}
	return nil
}

// FingerprintBib digests the bib directives the tool would consume. Cosmetic
// aux churn does not move the fingerprint; changed citations do.
func (p *Prober) FingerprintBib(tool string) Digest {
	switch tool {
	case ToolBiber:
		if txt, ok := p.read(p.base + ".bcf"); ok {
			return digestBytes([]byte(txt))
		}
	case ToolBibtex:
		var contents strings.Builder
		for _, aux := range p.auxFiles() {
			txt, ok := p.read(aux)
			if !ok {
				continue
			}
			for _, m := range reBibDirective.FindAllString(txt, -1) {
				contents.WriteString(m)
				contents.WriteByte('\n')
			}
		}
		if contents.Len() > 0 {
			return digestBytes([]byte(contents.String()))
		}
	}
	return Digest{}
}

// GuessIndexTool recommends an index tool:
//
//  1. a single <base>.idx with tagged \indexentry[...] lines means
//     splitindex;
//  2. untagged entries only mean makeindex;
//  3. several <base>-*.idx files with untagged entries mean makeindex;
//  4. otherwise "", meaning no indices required.
func (p *Prober) GuessIndexTool() string {
	split := p.splitIdxFiles()
	if txt, ok := p.read(p.base + ".idx"); ok {
		if reTaggedEntry.MatchString(txt) {
			return ToolSplitindex
		}
		if reUntagged.MatchString(txt) && len(split) == 0 {
			return ToolMakeindex
		}
	}
	for _, f := range split {
		if txt, ok := p.read(f); ok && reUntagged.MatchString(txt) {
			return ToolMakeindex
		}
	}
	return ""
}

// IndexUnits returns the stems the index tool should be invoked on.
func (p *Prober) IndexUnits(tool string) []string {
	switch tool {
	case ToolSplitindex:
		if _, err := os.Stat(p.path(p.base + ".idx")); err == nil {
			return []string{p.base}
		}
	case ToolMakeindex:
		split := p.splitIdxFiles()
		if txt, ok := p.read(p.base + ".idx"); ok {
			if reUntagged.MatchString(txt) && len(split) == 0 {
				return []string{p.base}
			}
		}
		var units []string
		for _, f := range split {
			if txt, ok := p.read(f); ok && reUntagged.MatchString(txt) {
				units = append(units, strings.TrimSuffix(f, ".idx"))
			}
		}
		return units
	}
	return nil
}

// FingerprintIndex digests the \indexentry directives of the named index
// target (e.g. "thesis" or "thesis-keywords").
func (p *Prober) FingerprintIndex(name string) Digest {
	txt, ok := p.read(name + ".idx")
	if !ok {
		return Digest{}
	}
	var contents strings.Builder
	for _, m := range reIndexEntry.FindAllString(txt, -1) {
		contents.WriteString(m)
		contents.WriteByte('\n')
	}
	if contents.Len() == 0 {
		return Digest{}
	}
	return digestBytes([]byte(contents.String()))
}

// auxFiles lists the *.aux files in the document directory, sorted by the
// glob, so fingerprints are deterministic.
func (p *Prober) auxFiles() []string {
	matches, err := filepath.Glob(filepath.Join(p.dir, "*.aux"))
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Base(m))
	}
	return out
}

// splitIdxFiles lists <base>-*.idx files, the layout splitindex produces.
func (p *Prober) splitIdxFiles() []string {
	matches, err := filepath.Glob(filepath.Join(p.dir, p.base+"-*.idx"))
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Base(m))
	}
	return out
}
