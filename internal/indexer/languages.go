package indexer

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Language describes an indexable source language
type Language struct {
	Name       string
	Extensions []string
	Grammar    *sitter.Language
}

// LanguageDetector detects the indexed language from file paths
type LanguageDetector struct {
	languages map[string]*Language
	extMap    map[string]string // extension -> language name
}

// NewLanguageDetector creates a detector for Python sources
func NewLanguageDetector() *LanguageDetector {
	languages := map[string]*Language{
		"python": {
			Name:       "python",
			Extensions: []string{".py"},
			Grammar:    python.GetLanguage(),
		},
	}

	extMap := make(map[string]string)
	for name, lang := range languages {
		for _, ext := range lang.Extensions {
			extMap[ext] = name
		}
	}

	return &LanguageDetector{
		languages: languages,
		extMap:    extMap,
	}
}

// Detect detects the language from a file path. Extensions match exactly.
func (ld *LanguageDetector) Detect(filePath string) (*Language, bool) {
	ext := filepath.Ext(filePath)
	if ext == "" {
		return nil, false
	}

	langName, ok := ld.extMap[ext]
	if !ok {
		return nil, false
	}

	lang, ok := ld.languages[langName]
	return lang, ok
}

// IsSupported returns true if the file extension is indexed
func (ld *LanguageDetector) IsSupported(filePath string) bool {
	_, ok := ld.Detect(filePath)
	return ok
}

// GetLanguage returns a language by name
func (ld *LanguageDetector) GetLanguage(name string) (*Language, bool) {
	lang, ok := ld.languages[strings.ToLower(name)]
	return lang, ok
}
