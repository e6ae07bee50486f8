package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FlexibleTime gère plusieurs formats de dates pour les dates de bascule tarifaire.
// Toutes les dates sont interprétées en UTC.
type FlexibleTime struct {
	time.Time
}

var flexibleLayouts = []string{
	time.RFC3339Nano,      // "2026-03-31T23:59:59.5Z"
	time.RFC3339,          // "2026-03-31T23:59:59Z"
	"2006-01-02T15:04:05", // "2026-03-31T23:59:59"
	"2006-01-02T15:04",    // "2026-03-31T23:59"
	"2006-01-02",          // "2026-03-31" (fin de journée)
}

// ParseFlexibleTime parse une date dans l'un des formats acceptés
func ParseFlexibleTime(s string) (FlexibleTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FlexibleTime{}, nil
	}

	for _, layout := range flexibleLayouts {
		parsed, err := time.ParseInLocation(layout, s, time.UTC)
		if err != nil {
			continue
		}
		// Une date seule désigne la dernière seconde de la journée
		if layout == "2006-01-02" {
			parsed = parsed.Add(24*time.Hour - time.Second)
		}
		return FlexibleTime{Time: parsed.UTC()}, nil
	}

	return FlexibleTime{}, fmt.Errorf("format de date invalide: %s", s)
}

// UnmarshalJSON implémente le unmarshaler pour accepter plusieurs formats de dates
func (ft *FlexibleTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "null" {
		ft.Time = time.Time{}
		return nil
	}
	parsed, err := ParseFlexibleTime(s)
	if err != nil {
		return err
	}
	*ft = parsed
	return nil
}

// MarshalJSON retourne la date au format RFC3339 en UTC
func (ft FlexibleTime) MarshalJSON() ([]byte, error) {
	if ft.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ft.Time.UTC().Format(time.RFC3339))
}

// UnmarshalYAML accepte les mêmes formats dans le fichier de tarifs
func (ft *FlexibleTime) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("date attendue ligne %d", node.Line)
	}
	if node.Tag == "!!null" {
		ft.Time = time.Time{}
		return nil
	}
	parsed, err := ParseFlexibleTime(node.Value)
	if err != nil {
		return fmt.Errorf("ligne %d: %w", node.Line, err)
	}
	*ft = parsed
	return nil
}
