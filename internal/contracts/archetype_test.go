package contracts

import (
	"math"
	"testing"
)

func TestDefaultWeightTable(t *testing.T) {
	table := DefaultWeightTable()

	if err := table.Validate(); err != nil {
		t.Fatalf("default table invalid: %v", err)
	}

	// Each triple must sum to exactly 1.0.
	for archetype, w := range table {
		if math.Abs(w.Sum()-1.0) > 1e-12 {
			t.Errorf("%s weights sum to %v, want 1.0", archetype, w.Sum())
		}
	}

	// Profile intent: income builder leans on income, value hunter on value.
	if table[ArchetypeIncomeBuilder].Income != 0.6 {
		t.Errorf("income builder income weight = %v, want 0.6", table[ArchetypeIncomeBuilder].Income)
	}
	if table[ArchetypeValueHunter].Value != 0.6 {
		t.Errorf("value hunter value weight = %v, want 0.6", table[ArchetypeValueHunter].Value)
	}
}

func TestWeightTable_WeightsFor_Fallback(t *testing.T) {
	table := DefaultWeightTable()

	patient := table[ArchetypePatientPartner]

	if got := table.WeightsFor("unknown_profile"); got != patient {
		t.Errorf("unknown archetype should fall back to patient partner, got %+v", got)
	}
	if got := table.WeightsFor(""); got != patient {
		t.Errorf("empty archetype should fall back to patient partner, got %+v", got)
	}
	if got := table.WeightsFor(ArchetypeValueHunter); got != table[ArchetypeValueHunter] {
		t.Errorf("known archetype should return its own weights, got %+v", got)
	}
}

func TestWeightTable_Validate(t *testing.T) {
	tests := []struct {
		name    string
		table   WeightTable
		wantErr bool
	}{
		{
			name:    "default is valid",
			table:   DefaultWeightTable(),
			wantErr: false,
		},
		{
			name: "missing archetype",
			table: WeightTable{
				ArchetypeIncomeBuilder: {Value: 0.2, Income: 0.6, Quality: 0.2},
			},
			wantErr: true,
		},
		{
			name: "bad sum",
			table: WeightTable{
				ArchetypeIncomeBuilder:  {Value: 0.3, Income: 0.6, Quality: 0.2},
				ArchetypeValueHunter:    {Value: 0.6, Income: 0.2, Quality: 0.2},
				ArchetypePatientPartner: {Value: 0.4, Income: 0.3, Quality: 0.3},
			},
			wantErr: true,
		},
		{
			name: "negative weight",
			table: WeightTable{
				ArchetypeIncomeBuilder:  {Value: -0.2, Income: 1.0, Quality: 0.2},
				ArchetypeValueHunter:    {Value: 0.6, Income: 0.2, Quality: 0.2},
				ArchetypePatientPartner: {Value: 0.4, Income: 0.3, Quality: 0.3},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestArchetype_Valid(t *testing.T) {
	valid := []Archetype{ArchetypeIncomeBuilder, ArchetypeValueHunter, ArchetypePatientPartner}
	for _, a := range valid {
		if !a.Valid() {
			t.Errorf("%s should be valid", a)
		}
	}

	if Archetype("day_trader").Valid() {
		t.Error("unknown archetype should not be valid")
	}
}
