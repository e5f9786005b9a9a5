package inspection

import (
	"strings"
	"testing"
)

func TestBatchComposition(t *testing.T) {
	tests := []struct {
		name     string
		lacquers []Lacquer
		want     string
	}{
		{"empty list", nil, ""},
		{"single complete row", []Lacquer{{ID: 1, Name: "Clear Extn", Weight: "5"}}, "Clear Extn 5"},
		{
			"rows missing name or weight are skipped",
			[]Lacquer{
				{ID: 1, Name: "Clear Extn", Weight: "5"},
				{ID: 2, Name: "Red Dye"},
				{ID: 3, Weight: "2"},
				{ID: 4, Name: "Hardener", Weight: "1.5"},
			},
			"Clear Extn 5 Hardener 1.5",
		},
		{
			"row order preserved",
			[]Lacquer{
				{ID: 2, Name: "B", Weight: "2"},
				{ID: 1, Name: "A", Weight: "1"},
			},
			"B 2 A 1",
		},
		{"all incomplete", []Lacquer{{ID: 1, Name: "x"}, {ID: 2, Weight: "1"}}, ""},
	}

	for _, tt := range tests {
		if got := BatchComposition(tt.lacquers); got != tt.want {
			t.Errorf("%s: BatchComposition = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSetLacquerFieldRecomputesComposition(t *testing.T) {
	f := NewTemplate()

	if err := f.SetLacquerField(0, "weight", "5"); err != nil {
		t.Fatalf("SetLacquerField: %v", err)
	}
	if got := f.compositionRow(t).Observation; got != "Clear Extn 5" {
		t.Errorf("composition after first edit = %q", got)
	}

	if err := f.SetLacquerField(1, "weight", "200"); err != nil {
		t.Fatalf("SetLacquerField: %v", err)
	}
	if got := f.compositionRow(t).Observation; got != "Clear Extn 5 Red Dye 200" {
		t.Errorf("composition after second edit = %q", got)
	}

	// Emptying a field removes the row from the derived value.
	if err := f.SetLacquerField(0, "weight", ""); err != nil {
		t.Fatalf("SetLacquerField: %v", err)
	}
	if got := f.compositionRow(t).Observation; got != "Red Dye 200" {
		t.Errorf("composition after emptying weight = %q", got)
	}

	// batchNo edits still resync but do not change the derived value.
	if err := f.SetLacquerField(1, "batchNo", "B-77"); err != nil {
		t.Fatalf("SetLacquerField: %v", err)
	}
	if got := f.compositionRow(t).Observation; got != "Red Dye 200" {
		t.Errorf("composition after batchNo edit = %q", got)
	}
}

func (f *InspectionForm) compositionRow(t *testing.T) Characteristic {
	t.Helper()
	for _, c := range f.Characteristics {
		if c.Name == BatchCompositionName {
			return c
		}
	}
	t.Fatal("no Batch Composition characteristic")
	return Characteristic{}
}

func TestSyncBatchCompositionIdempotent(t *testing.T) {
	f := NewTemplate()
	f.Lacquers[0].Weight = "5"
	f.SyncBatchComposition()
	first := f.compositionRow(t).Observation
	f.SyncBatchComposition()
	if second := f.compositionRow(t).Observation; second != first {
		t.Errorf("resync changed value: %q -> %q", first, second)
	}
}

func TestAddLacquerRow(t *testing.T) {
	f := NewTemplate()
	row := f.AddLacquerRow()
	if row.ID != 9 {
		t.Errorf("new row id = %d, want 9", row.ID)
	}
	if len(f.Lacquers) != 9 {
		t.Errorf("len(lacquers) = %d, want 9", len(f.Lacquers))
	}
	if row.Name != "" || row.Weight != "" || row.BatchNo != "" || row.ExpiryDate != "" {
		t.Errorf("new row not empty: %+v", row)
	}

	empty := &InspectionForm{}
	if got := empty.AddLacquerRow(); got.ID != 1 {
		t.Errorf("first row id = %d, want 1", got.ID)
	}

	// Ids follow the maximum, not the length.
	gapped := &InspectionForm{Lacquers: LacquerList{{ID: 7}}}
	if got := gapped.AddLacquerRow(); got.ID != 8 {
		t.Errorf("row id after max 7 = %d, want 8", got.ID)
	}
}

func TestSetField(t *testing.T) {
	f := NewTemplate()
	if err := f.SetField("documentNo", "AGI/QA/F/012"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if f.DocumentNo != "AGI/QA/F/012" {
		t.Errorf("documentNo = %q", f.DocumentNo)
	}
	if err := f.SetField("noSuchField", "x"); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestSetCharacteristicField(t *testing.T) {
	f := NewTemplate()
	if err := f.SetCharacteristicField(5, "bodyThickness", "18 microns"); err != nil {
		t.Fatalf("SetCharacteristicField: %v", err)
	}
	if f.Characteristics[5].BodyThickness != "18 microns" {
		t.Errorf("bodyThickness = %q", f.Characteristics[5].BodyThickness)
	}
	if err := f.SetCharacteristicField(0, "thickness", "x"); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestSignatureToken(t *testing.T) {
	tests := []struct{ name, want string }{
		{"John Smith", "signed_by_john_smith"},
		{"ALICE", "signed_by_alice"},
		{"a  b", "signed_by_a__b"},
		{"", "signed_by_"},
	}
	for _, tt := range tests {
		if got := SignatureToken(tt.name); got != tt.want {
			t.Errorf("SignatureToken(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestLacquerUnit(t *testing.T) {
	if got := (Lacquer{Name: "Clear Extn"}).Unit(); got != "kg" {
		t.Errorf("Clear Extn unit = %q, want kg", got)
	}
	if got := (Lacquer{Name: "Red Dye"}).Unit(); got != "gm" {
		t.Errorf("Red Dye unit = %q, want gm", got)
	}
}

func TestNewTemplate(t *testing.T) {
	f := NewTemplate()
	if f.Status != FormStatusDraft {
		t.Errorf("status = %s, want DRAFT", f.Status)
	}
	if len(f.Lacquers) != 8 {
		t.Errorf("len(lacquers) = %d, want 8", len(f.Lacquers))
	}
	if len(f.Characteristics) != 9 {
		t.Errorf("len(characteristics) = %d, want 9", len(f.Characteristics))
	}
	if f.Lacquers[0].Name != "Clear Extn" || f.Lacquers[7].Name != "" {
		t.Errorf("unexpected lacquer seed: %+v", f.Lacquers)
	}
	if f.Characteristics[8].Name != BatchCompositionName {
		t.Errorf("characteristic 9 = %q", f.Characteristics[8].Name)
	}
	if !strings.Contains(f.SampleSize, "Nos.") {
		t.Errorf("sampleSize = %q", f.SampleSize)
	}
	if f.IssueDate == "" || f.ReviewedDate <= f.IssueDate {
		t.Errorf("review date %q must follow issue date %q", f.ReviewedDate, f.IssueDate)
	}
}
