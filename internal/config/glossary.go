package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Glossary 是预定义翻译表：源文本（去除首尾空白后）到译文的精确映射
type Glossary struct {
	SourceLang   string            `toml:"source_lang"`
	TargetLang   string            `toml:"target_lang"`
	Translations map[string]string `toml:"translations"`
}

func NewGlossary(sourceLang, targetLang string, translations map[string]string) *Glossary {
	return &Glossary{
		SourceLang:   sourceLang,
		TargetLang:   targetLang,
		Translations: translations,
	}
}

// Lookup 查找 text 的预定义译文
func (g *Glossary) Lookup(text string) (string, bool) {
	if g == nil {
		return "", false
	}
	v, ok := g.Translations[strings.TrimSpace(text)]
	return v, ok
}

func LoadGlossary(path string) (*Glossary, error) {
	// check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("glossary file not found: %s", path)
	}

	// load toml file
	glossary := &Glossary{}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read glossary file: %w", err)
	}
	if err := toml.Unmarshal(content, glossary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal glossary: %w", err)
	}
	if glossary.SourceLang == "" || glossary.TargetLang == "" {
		return nil, fmt.Errorf("glossary file is missing source_lang or target_lang")
	}
	if glossary.Translations == nil {
		glossary.Translations = map[string]string{}
	}
	return glossary, nil
}
