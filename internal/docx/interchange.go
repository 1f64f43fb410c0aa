package docx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// TranslatedUnit is one record of the translated units file. Only the id
// (or count_src) and the translated value are required.
type TranslatedUnit struct {
	ID         *int     `json:"id,omitempty"`
	CountSrc   *int     `json:"count_src,omitempty"`
	Type       UnitType `json:"type,omitempty"`
	Translated *string  `json:"translated,omitempty"`
}

// NewTranslatedUnit builds a record for a source unit. value is expected in
// sentinel-escaped form.
func NewTranslatedUnit(u TextUnit, value string) TranslatedUnit {
	return TranslatedUnit{
		ID:         intPtr(u.ID),
		CountSrc:   intPtr(u.ID),
		Type:       u.Type(),
		Translated: &value,
	}
}

// Key returns the lookup key: the id, falling back to count_src.
func (t TranslatedUnit) Key() (string, bool) {
	switch {
	case t.ID != nil:
		return strconv.Itoa(*t.ID), true
	case t.CountSrc != nil:
		return strconv.Itoa(*t.CountSrc), true
	}
	return "", false
}

// TranslationMap indexes translated values by string id. Records without a
// translated value are skipped; on duplicate ids the last one wins.
func TranslationMap(units []TranslatedUnit) map[string]string {
	m := make(map[string]string, len(units))
	for _, t := range units {
		key, ok := t.Key()
		if !ok || t.Translated == nil {
			continue
		}
		m[key] = *t.Translated
	}
	return m
}

// WriteUnits persists source units as an indented JSON array.
func WriteUnits(path string, units []TextUnit) error {
	if units == nil {
		units = []TextUnit{}
	}
	return writeJSON(path, units)
}

// ReadUnits loads source units.
func ReadUnits(path string) ([]TextUnit, error) {
	var units []TextUnit
	if err := readJSON(path, &units); err != nil {
		return nil, err
	}
	return units, nil
}

// WriteTranslated persists translated units.
func WriteTranslated(path string, units []TranslatedUnit) error {
	if units == nil {
		units = []TranslatedUnit{}
	}
	return writeJSON(path, units)
}

// ReadTranslated loads translated units.
func ReadTranslated(path string) ([]TranslatedUnit, error) {
	var units []TranslatedUnit
	if err := readJSON(path, &units); err != nil {
		return nil, err
	}
	return units, nil
}

// Restructure normalizes translator output against the source units: the
// result holds exactly one {id, count_src, type, translated} record per
// source unit that has a translation, in source order.
func Restructure(original []TextUnit, translated []TranslatedUnit) []TranslatedUnit {
	byID := TranslationMap(translated)
	out := make([]TranslatedUnit, 0, len(original))
	for _, u := range original {
		value, ok := byID[strconv.Itoa(u.ID)]
		if !ok {
			continue
		}
		out = append(out, NewTranslatedUnit(u, value))
	}
	return out
}

// RestructureFile applies Restructure to the translated units file in place.
func RestructureFile(originalPath, translatedPath string) error {
	original, err := ReadUnits(originalPath)
	if err != nil {
		return err
	}
	translated, err := ReadTranslated(translatedPath)
	if err != nil {
		return err
	}
	return WriteTranslated(translatedPath, Restructure(original, translated))
}

func writeJSON(path string, v interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
