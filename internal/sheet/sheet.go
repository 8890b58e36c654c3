// Package sheet holds the canonical character sheet model and the
// normalizer that maps the two known external JSON layouts onto it.
// JSON tags keep the original Portuguese wire format so sheets exported
// from the web app import unchanged.
package sheet

// Aspect is a typed descriptive tag (Conceito, Drama, Trampo, Sonhos, ...).
type Aspect struct {
	Kind        string `json:"tipo"`
	Description string `json:"descricao"`
}

// Skill is a named ability with an integer level. Levels may be negative.
type Skill struct {
	Name  string `json:"nome"`
	Level int    `json:"nivel"`
}

// Maneuver is a stunt, either flat or linked to a skill.
type Maneuver struct {
	ID          string `json:"id"`
	Name        string `json:"nome"`
	Description string `json:"descricao,omitempty"`
}

// Consequence is one of the three fixed-severity slots.
type Consequence struct {
	Severity    string `json:"nivel"`
	Description string `json:"descricao"`
}

// Gift is a supernatural edge with an optional category, essence cost and level.
type Gift struct {
	ID          string `json:"id"`
	Name        string `json:"nome"`
	Description string `json:"descricao"`
	Category    string `json:"categoria,omitempty"`
	EssenceCost *int   `json:"custo_essencia,omitempty"`
	Level       *int   `json:"nivel,omitempty"`
}

// CharacterSheet is the canonical sheet shape shared over the room channel.
type CharacterSheet struct {
	Name             string        `json:"nome"`
	Drive            string        `json:"drive,omitempty"`
	Aspects          []Aspect      `json:"aspectos"`
	Skills           []Skill       `json:"habilidades"`
	Maneuvers        []Maneuver    `json:"manobras"`
	SkillManeuvers   []Maneuver    `json:"manobras_habilidade"`
	PhysicalStress   []bool        `json:"stress_fisico"`
	MentalStress     []bool        `json:"stress_mental"`
	Consequences     []Consequence `json:"consequencias"`
	DestinyPoints    int           `json:"pontos_destino"`
	DestinyPointsMax int           `json:"pontos_destino_max"`
	Gifts            []Gift        `json:"dons"`
	Notes            string        `json:"notas,omitempty"`
	AvatarURL        string        `json:"avatar_url,omitempty"`
}

// destinyOverflow is how far above the configured maximum the counter may
// climb before adjustments clamp.
const destinyOverflow = 5

// AdjustDestiny moves the destiny point counter by delta, clamped to
// [0, max+overflow].
func (s *CharacterSheet) AdjustDestiny(delta int) {
	ceiling := s.DestinyPointsMax + destinyOverflow
	v := s.DestinyPoints + delta
	if v < 0 {
		v = 0
	}
	if v > ceiling {
		v = ceiling
	}
	s.DestinyPoints = v
}

func defaultStressTrack() []bool {
	return make([]bool, 4)
}

func defaultConsequences() []Consequence {
	return []Consequence{
		{Severity: "Suave (2)"},
		{Severity: "Moderada (4)"},
		{Severity: "Grave (6)"},
	}
}
