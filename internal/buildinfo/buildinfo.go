// Package buildinfo describes how voice-translator-pro is built, versioned
// and exposed: its package descriptor, declared requirements and the
// modules linked into the running binary.
package buildinfo

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"slices"
	"strings"
)

//go:embed requirements.txt
var requirements string

var declared = mustParseRequirements(requirements)

// Set at link time with -ldflags "-X .../buildinfo.Commit=...".
var (
	Version   = "1.0.0"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// MinGoVersion is the oldest toolchain the module builds with.
const MinGoVersion = "go1.25"

// Command is the console entry point.
const Command = "voice-translator"

// Descriptor is the package metadata of the product.
type Descriptor struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Author      string            `json:"author"`
	AuthorEmail string            `json:"authorEmail"`
	Description string            `json:"description"`
	URL         string            `json:"url"`
	ProjectURLs map[string]string `json:"projectUrls"`
	Classifiers []string          `json:"classifiers"`
	RequiresGo  string            `json:"requiresGo"`
	GoVersion   string            `json:"goVersion"`
	Requires    []string          `json:"requires"`
	DevTools    map[string]string `json:"devTools"`
	EntryPoints map[string]string `json:"entryPoints"`
	Commit      string            `json:"commit"`
	BuildTime   string            `json:"buildTime"`
}

// Module is one module linked into the binary.
type Module struct {
	Path    string `json:"path"`
	Version string `json:"version"`
	Sum     string `json:"sum,omitempty"`
	Replace string `json:"replace,omitempty"`
}

// Describe returns the descriptor of this build.
func Describe() Descriptor {
	return Descriptor{
		Name:        "voice-translator-pro",
		Version:     Version,
		Author:      "Voice Translator Team",
		AuthorEmail: "team@voice-translator-pro.com",
		Description: "Advanced web application for voice and text translation supporting more than 100 languages",
		URL:         "https://github.com/voicetranslatorpro/voice-translator-pro",
		ProjectURLs: map[string]string{
			"Bug Reports":   "https://github.com/voicetranslatorpro/voice-translator-pro/issues",
			"Source":        "https://github.com/voicetranslatorpro/voice-translator-pro",
			"Documentation": "https://github.com/voicetranslatorpro/voice-translator-pro/blob/main/README.md",
		},
		Classifiers: []string{
			"Development Status :: 4 - Beta",
			"Intended Audience :: End Users/Desktop",
			"Intended Audience :: Developers",
			"License :: OSI Approved :: MIT License",
			"Operating System :: OS Independent",
			"Programming Language :: Go",
			"Programming Language :: Go :: 1.25",
			"Topic :: Communications",
			"Topic :: Multimedia :: Sound/Audio :: Speech",
			"Topic :: Text Processing :: Linguistic",
			"Topic :: Internet :: WWW/HTTP :: Dynamic Content",
		},
		RequiresGo: ">=" + MinGoVersion,
		GoVersion:  runtime.Version(),
		Requires:   slices.Clone(declared),
		DevTools: map[string]string{
			"test":     "github.com/cucumber/godog",
			"coverage": "github.com/k1LoW/octocov",
			"format":   "github.com/golangci/golangci-lint/v2 fmt",
			"lint":     "github.com/golangci/golangci-lint/v2",
			"docs":     "golang.org/x/pkgsite",
			"metrics":  "github.com/prometheus/client_golang",
			"logging":  "github.com/charmbracelet/log",
		},
		EntryPoints: map[string]string{
			Command: "github.com/voicetranslatorpro/voice-translator-pro/cmd/voice-translator",
		},
		Commit:    Commit,
		BuildTime: BuildTime,
	}
}

func mustParseRequirements(data string) []string {
	reqs, err := ParseRequirements(strings.NewReader(data))
	if err != nil {
		panic(fmt.Errorf("embedded requirements.txt: %w", err))
	}
	return reqs
}

// ParseRequirements returns the non-blank, non-comment lines of r, trimmed.
// A line is a comment when its first byte is '#'.
func ParseRequirements(r io.Reader) ([]string, error) {
	var out []string

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading requirements: %w", err)
	}

	return out, nil
}

// Modules lists the main module and its dependencies as linked into the
// running binary. It returns nil when build info is unavailable.
func Modules() []Module {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}

	out := make([]Module, 0, len(info.Deps)+1)
	out = append(out, Module{Path: info.Main.Path, Version: info.Main.Version, Sum: info.Main.Sum})

	for _, d := range info.Deps {
		m := Module{Path: d.Path, Version: d.Version, Sum: d.Sum}
		if d.Replace != nil {
			m.Replace = d.Replace.Path + " " + d.Replace.Version
		}
		out = append(out, m)
	}

	return out
}
