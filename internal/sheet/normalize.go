package sheet

import (
	"encoding/json"
	"fmt"
)

// Format identifies which of the two known external JSON layouts a sheet
// file uses.
type Format int

const (
	// FormatCurrent is the flat layout the web app exports today
	// (stress_fisico / pontos_destino at top level).
	FormatCurrent Format = iota
	// FormatLegacy is the older layout with a nested stress object and
	// fate_points counters.
	FormatLegacy
)

// DetectFormat decides the layout by the presence of distinguishing fields,
// never by trial and error. A nested "stress" object or "fate_points"
// counter marks the legacy layout.
func DetectFormat(raw []byte) (Format, error) {
	var probe struct {
		Stress     json.RawMessage `json:"stress"`
		FatePoints json.RawMessage `json:"fate_points"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return FormatCurrent, fmt.Errorf("parse sheet json: %w", err)
	}
	if probe.Stress != nil || probe.FatePoints != nil {
		return FormatLegacy, nil
	}
	return FormatCurrent, nil
}

// Normalize maps external sheet JSON onto the canonical CharacterSheet.
// Every absent field is filled with a safe default; malformed JSON returns
// an error and no partial sheet.
func Normalize(raw []byte) (CharacterSheet, error) {
	format, err := DetectFormat(raw)
	if err != nil {
		return CharacterSheet{}, err
	}

	var s CharacterSheet
	switch format {
	case FormatLegacy:
		s, err = parseLegacy(raw)
	default:
		s, err = parseCurrent(raw)
	}
	if err != nil {
		return CharacterSheet{}, err
	}

	applyDefaults(&s)
	return s, nil
}

func parseCurrent(raw []byte) (CharacterSheet, error) {
	var s CharacterSheet
	if err := json.Unmarshal(raw, &s); err != nil {
		return CharacterSheet{}, fmt.Errorf("parse sheet json: %w", err)
	}

	// Zero destiny points is a legitimate value; only an absent field
	// falls back to the default.
	var probe struct {
		DestinyPoints *int `json:"pontos_destino"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && probe.DestinyPoints == nil {
		s.DestinyPoints = -1 // mark absent for applyDefaults
	}
	return s, nil
}

// legacySheet is the older export layout: English field aliases, a nested
// stress object and fate_points counters.
type legacySheet struct {
	Name           string        `json:"nome"`
	NameAlias      string        `json:"name"`
	Drive          string        `json:"drive"`
	Aspects        []Aspect      `json:"aspectos"`
	Skills         []Skill       `json:"habilidades"`
	Maneuvers      []Maneuver    `json:"manobras"`
	SkillManeuvers []Maneuver    `json:"manobras_habilidade"`
	Stress         *legacyStress `json:"stress"`
	Consequences   []Consequence `json:"consequencias"`
	FatePoints     *int          `json:"fate_points"`
	FatePointsMax  *int          `json:"fate_points_max"`
	Gifts          []Gift        `json:"dons"`
	Notes          string        `json:"notes"`
	NotesAlias     string        `json:"notas"`
	AvatarURL      string        `json:"avatar_url"`
}

type legacyStress struct {
	Physical []bool `json:"fisico"`
	Mental   []bool `json:"mental"`
}

func parseLegacy(raw []byte) (CharacterSheet, error) {
	var l legacySheet
	if err := json.Unmarshal(raw, &l); err != nil {
		return CharacterSheet{}, fmt.Errorf("parse sheet json: %w", err)
	}

	s := CharacterSheet{
		Name:           firstNonEmpty(l.Name, l.NameAlias),
		Drive:          l.Drive,
		Aspects:        l.Aspects,
		Skills:         l.Skills,
		Maneuvers:      l.Maneuvers,
		SkillManeuvers: l.SkillManeuvers,
		Consequences:   l.Consequences,
		Gifts:          l.Gifts,
		Notes:          firstNonEmpty(l.NotesAlias, l.Notes),
		AvatarURL:      l.AvatarURL,
	}
	if l.Stress != nil {
		s.PhysicalStress = l.Stress.Physical
		s.MentalStress = l.Stress.Mental
	}
	if l.FatePoints != nil {
		s.DestinyPoints = *l.FatePoints
	} else {
		s.DestinyPoints = -1 // mark absent for applyDefaults
	}
	if l.FatePointsMax != nil {
		s.DestinyPointsMax = *l.FatePointsMax
	}
	return s, nil
}

func applyDefaults(s *CharacterSheet) {
	if s.Name == "" {
		s.Name = "Personagem"
	}
	if s.Aspects == nil {
		s.Aspects = []Aspect{}
	}
	if s.Skills == nil {
		s.Skills = []Skill{}
	}
	if s.Maneuvers == nil {
		s.Maneuvers = []Maneuver{}
	}
	if s.SkillManeuvers == nil {
		s.SkillManeuvers = []Maneuver{}
	}
	if len(s.PhysicalStress) == 0 {
		s.PhysicalStress = defaultStressTrack()
	}
	if len(s.MentalStress) == 0 {
		s.MentalStress = defaultStressTrack()
	}
	if len(s.Consequences) == 0 {
		s.Consequences = defaultConsequences()
	}
	if s.DestinyPointsMax <= 0 {
		s.DestinyPointsMax = 3
	}
	if s.DestinyPoints < 0 {
		s.DestinyPoints = 3
	}
	if s.Gifts == nil {
		s.Gifts = []Gift{}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
