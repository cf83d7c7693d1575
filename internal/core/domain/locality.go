package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Трансформер убирает диакритику: "Vlorë" -> "Vlore", "Durrës" -> "Durres".
// Названия локаций приходят из разных источников то с диакритикой, то без.
var localityTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeLocality приводит название локации к каноническому виду
// для ключей кэша и справочных таблиц (нижний регистр, без диакритики).
func NormalizeLocality(locality string) string {
	lowered := strings.ToLower(strings.TrimSpace(locality))
	normalized, _, err := transform.String(localityTransformer, lowered)
	if err != nil {
		return lowered
	}
	return normalized
}
