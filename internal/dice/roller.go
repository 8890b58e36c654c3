package dice

import (
	"fmt"
	"math/rand/v2"
)

// Type identifies which roll mechanic produced a Result.
type Type string

const (
	TypeFate      Type = "fate"
	TypeAdvantage Type = "advantage"
	TypeD4        Type = "d4"
	TypeD6        Type = "d6"
	TypeD8        Type = "d8"
	TypeD10       Type = "d10"
	TypeD12       Type = "d12"
	TypeD20       Type = "d20"
)

// Result is the outcome of a single roll. Total is pre-computed and always
// equals sum(Dice) + BonusDie + Modifier.
type Result struct {
	Dice        []int  `json:"dice"`
	BonusDie    *int   `json:"bonusDie,omitempty"`
	Total       int    `json:"total"`
	Modifier    int    `json:"modifier"`
	Type        Type   `json:"diceType"`
	Description string `json:"description,omitempty"`
}

// DefaultDescription returns the human label for the roll mechanic, used as
// chat content when the roller gave no description of their own.
func (r Result) DefaultDescription() string {
	switch r.Type {
	case TypeFate:
		return "4dF"
	case TypeAdvantage:
		return "3dF + 1d6 (Vantagem)"
	default:
		return fmt.Sprintf("%dd%d", len(r.Dice), sidesOf(r.Type))
	}
}

// Fate rolls 4dF: four independent draws from {-1, 0, +1}.
func Fate(modifier int, description string) Result {
	dice := fateDraws(4)
	return Result{
		Dice:        dice,
		Total:       sum(dice) + modifier,
		Modifier:    modifier,
		Type:        TypeFate,
		Description: description,
	}
}

// Advantage rolls 3dF plus a d6 bonus die.
func Advantage(modifier int, description string) Result {
	dice := fateDraws(3)
	bonus := rand.IntN(6) + 1
	return Result{
		Dice:        dice,
		BonusDie:    &bonus,
		Total:       sum(dice) + bonus + modifier,
		Modifier:    modifier,
		Type:        TypeAdvantage,
		Description: description,
	}
}

// Roll performs a conventional count-d-sides roll. Sides must be one of the
// supported die sizes (4, 6, 8, 10, 12, 20); count must be at least 1.
func Roll(sides, count, modifier int, description string) (Result, error) {
	t, ok := typeForSides(sides)
	if !ok {
		return Result{}, fmt.Errorf("unsupported die: d%d", sides)
	}
	if count < 1 {
		return Result{}, fmt.Errorf("invalid dice count: %d", count)
	}

	dice := make([]int, count)
	for i := range dice {
		dice[i] = rand.IntN(sides) + 1
	}
	return Result{
		Dice:        dice,
		Total:       sum(dice) + modifier,
		Modifier:    modifier,
		Type:        t,
		Description: description,
	}, nil
}

func fateDraws(n int) []int {
	dice := make([]int, n)
	for i := range dice {
		dice[i] = rand.IntN(3) - 1
	}
	return dice
}

func typeForSides(sides int) (Type, bool) {
	switch sides {
	case 4:
		return TypeD4, true
	case 6:
		return TypeD6, true
	case 8:
		return TypeD8, true
	case 10:
		return TypeD10, true
	case 12:
		return TypeD12, true
	case 20:
		return TypeD20, true
	}
	return "", false
}

func sidesOf(t Type) int {
	switch t {
	case TypeD4:
		return 4
	case TypeD6:
		return 6
	case TypeD8:
		return 8
	case TypeD10:
		return 10
	case TypeD12:
		return 12
	case TypeD20:
		return 20
	}
	return 0
}

func sum(dice []int) int {
	total := 0
	for _, d := range dice {
		total += d
	}
	return total
}
