package contracts

import (
	"fmt"
	"math"
)

// Archetype is a named investor profile that determines how the three axis
// scores are blended into a final score.
type Archetype string

const (
	// ArchetypeIncomeBuilder favors dividend income above everything else.
	ArchetypeIncomeBuilder Archetype = "income_builder"
	// ArchetypeValueHunter favors cheap valuations.
	ArchetypeValueHunter Archetype = "value_hunter"
	// ArchetypePatientPartner is the balanced long-term profile and the
	// default for users without a configured archetype.
	ArchetypePatientPartner Archetype = "patient_partner"
)

// Valid reports whether the archetype is a known profile.
func (a Archetype) Valid() bool {
	switch a {
	case ArchetypeIncomeBuilder, ArchetypeValueHunter, ArchetypePatientPartner:
		return true
	}
	return false
}

// AxisWeights defines how much each axis contributes to the final score.
// A valid triple sums to exactly 1.0.
type AxisWeights struct {
	Value   float64 `yaml:"value" json:"value"`
	Income  float64 `yaml:"income" json:"income"`
	Quality float64 `yaml:"quality" json:"quality"`
}

// Sum returns the total of the three weights.
func (w AxisWeights) Sum() float64 {
	return w.Value + w.Income + w.Quality
}

// Validate checks that the weights form a proper convex combination.
func (w AxisWeights) Validate() error {
	if w.Value < 0 || w.Income < 0 || w.Quality < 0 {
		return fmt.Errorf("axis weights must be non-negative: %+v", w)
	}
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("axis weights must sum to 1.0, got %.6f", w.Sum())
	}
	return nil
}

// WeightTable maps every archetype to its weight triple.
type WeightTable map[Archetype]AxisWeights

// DefaultWeightTable returns the built-in archetype weights.
func DefaultWeightTable() WeightTable {
	return WeightTable{
		ArchetypeIncomeBuilder:  {Value: 0.2, Income: 0.6, Quality: 0.2},
		ArchetypeValueHunter:    {Value: 0.6, Income: 0.2, Quality: 0.2},
		ArchetypePatientPartner: {Value: 0.4, Income: 0.3, Quality: 0.3},
	}
}

// Validate checks that the table covers every archetype and that each
// triple sums to 1.0. Called at startup so a malformed table fails fast
// instead of silently skewing scores.
func (t WeightTable) Validate() error {
	for _, a := range []Archetype{ArchetypeIncomeBuilder, ArchetypeValueHunter, ArchetypePatientPartner} {
		w, ok := t[a]
		if !ok {
			return fmt.Errorf("weight table missing archetype %q", a)
		}
		if err := w.Validate(); err != nil {
			return fmt.Errorf("archetype %q: %w", a, err)
		}
	}
	return nil
}

// WeightsFor returns the weights for an archetype. Unknown or empty
// archetypes fall back to the patient partner profile.
func (t WeightTable) WeightsFor(a Archetype) AxisWeights {
	if w, ok := t[a]; ok {
		return w
	}
	return t[ArchetypePatientPartner]
}
