package domain

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// AutoDetect is the pseudo source language that asks providers to detect the language.
const AutoDetect = "auto"

// DefaultSpeechLocale is used for languages without a dedicated speech locale.
const DefaultSpeechLocale = "en-US"

//go:embed languages.yaml
var languagesYAML []byte

// Language is one entry of the language catalog.
type Language struct {
	Code   string `yaml:"code"   json:"code"`
	Name   string `yaml:"name"   json:"name"`
	Native string `yaml:"native" json:"nativeName"`
	RTL    bool   `yaml:"rtl"    json:"rtl"`
	Speech string `yaml:"speech" json:"speechLocale,omitempty"`
}

// SpeechLocale returns the locale used for speech synthesis.
func (l Language) SpeechLocale() string {
	if l.Speech == "" {
		return DefaultSpeechLocale
	}

	return l.Speech
}

// Catalog is the parsed language catalog.
type Catalog struct {
	Default   string     `yaml:"default"`
	Fallback  string     `yaml:"fallback"`
	Languages []Language `yaml:"languages"`

	byCode map[string]Language
}

// ParseCatalog decodes a YAML language catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing language catalog: %w", err)
	}

	c.byCode = make(map[string]Language, len(c.Languages))
	for _, l := range c.Languages {
		code := strings.ToLower(strings.TrimSpace(l.Code))
		if code == "" {
			return nil, fmt.Errorf("parsing language catalog: entry %q has no code", l.Name)
		}
		if _, dup := c.byCode[code]; dup {
			return nil, fmt.Errorf("parsing language catalog: duplicate code %q", code)
		}
		l.Code = code
		c.byCode[code] = l
	}

	return &c, nil
}

// Lookup returns the language for a code, case-insensitively.
func (c *Catalog) Lookup(code string) (Language, bool) {
	l, ok := c.byCode[strings.ToLower(strings.TrimSpace(code))]
	return l, ok
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := ParseCatalog(languagesYAML)
	if err != nil {
		panic(err)
	}
	return c
})

// Languages returns the supported languages sorted by code.
func Languages() []Language {
	out := slices.Clone(defaultCatalog().Languages)
	slices.SortFunc(out, func(a, b Language) int { return strings.Compare(a.Code, b.Code) })
	return out
}

// LookupLanguage finds a supported language by code.
func LookupLanguage(code string) (Language, bool) {
	return defaultCatalog().Lookup(code)
}

// IsSupported reports whether code is in the catalog. "auto" is not a language.
func IsSupported(code string) bool {
	_, ok := LookupLanguage(code)
	return ok
}

// EnglishName returns the English name of a language, or the code itself when unknown.
func EnglishName(code string) string {
	if l, ok := LookupLanguage(code); ok {
		return l.Name
	}
	return code
}

// LanguageName returns the native name of a language, or the code itself when unknown.
func LanguageName(code string) string {
	if l, ok := LookupLanguage(code); ok {
		return l.Native
	}
	return code
}

// ValidateSource checks a source language. "auto" is accepted.
func ValidateSource(code string) error {
	if strings.EqualFold(code, AutoDetect) {
		return nil
	}
	if _, ok := LookupLanguage(code); !ok {
		return fmt.Errorf("%w: source %q", ErrUnsupportedLanguage, code)
	}
	return nil
}

// ValidateTarget checks a target language. "auto" is never a valid target.
func ValidateTarget(code string) error {
	if strings.EqualFold(code, AutoDetect) {
		return NewValidationError("targetLang", "target language cannot be auto")
	}
	if _, ok := LookupLanguage(code); !ok {
		return fmt.Errorf("%w: target %q", ErrUnsupportedLanguage, code)
	}
	return nil
}
