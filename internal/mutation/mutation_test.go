package mutation

import (
	"errors"
	"testing"

	"github.com/verte-zerg/ddgheat/internal/model"
)

func TestParseCode(t *testing.T) {
	m, err := ParseCode("A_E_0_C")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.WildType != "A" || m.Chain != "E" || m.Position != 0 || m.Mutant != "C" {
		t.Fatalf("unexpected fields: %+v", m)
	}
	if m.Label() != "A0_E" {
		t.Fatalf("unexpected label %q", m.Label())
	}
}

func TestParseCodeKeepsPositionText(t *testing.T) {
	padded, err := ParseCode("A_E_01_D")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	plain, err := ParseCode("A_E_1_D")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if padded.Position != 1 || plain.Position != 1 {
		t.Fatalf("expected numeric position 1, got %d and %d", padded.Position, plain.Position)
	}
	if padded.Label() != "A01_E" || plain.Label() != "A1_E" {
		t.Fatalf("unexpected labels %q and %q", padded.Label(), plain.Label())
	}
}

func TestParseCarriesMissingValues(t *testing.T) {
	rows := []model.Row{
		{Line: 2, Code: "A_E_1_D", DDG: -1.0},
		{Line: 3, Code: "A_E_2_D", Missing: true},
	}
	res, err := Parse(rows, NewExclusionSet(DefaultExclude))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Mutations) != 2 || res.Mutations[0].Missing || !res.Mutations[1].Missing {
		t.Fatalf("unexpected mutations: %+v", res.Mutations)
	}
}

func TestParseCodeMalformed(t *testing.T) {
	for _, code := range []string{"", "A_E_1", "AE1D", "A_E_x_D"} {
		if _, err := ParseCode(code); !errors.Is(err, ErrMalformedCode) {
			t.Fatalf("code %q: expected ErrMalformedCode, got %v", code, err)
		}
	}
}

func TestParseExcludesResidues(t *testing.T) {
	rows := []model.Row{
		{Line: 2, Code: "A_E_1_D", DDG: -1.0},
		{Line: 3, Code: "A_E_1_C", DDG: 2.0},
		{Line: 4, Code: "A_E_1_G", DDG: 2.0},
		{Line: 5, Code: "A_E_1_P", DDG: 2.0},
		{Line: 6, Code: "B_E_2_D", DDG: 0.5},
	}
	res, err := Parse(rows, NewExclusionSet(DefaultExclude))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Excluded != 3 {
		t.Fatalf("expected 3 excluded, got %d", res.Excluded)
	}
	for _, m := range res.Mutations {
		if m.Mutant == "C" || m.Mutant == "G" || m.Mutant == "P" {
			t.Fatalf("excluded residue leaked: %+v", m)
		}
	}
	if len(res.Mutations) != 2 {
		t.Fatalf("expected 2 mutations, got %d", len(res.Mutations))
	}
}

func TestParseEmptyExclusionKeepsAll(t *testing.T) {
	rows := []model.Row{{Line: 2, Code: "A_E_1_C", DDG: 2.0}}
	res, err := Parse(rows, NewExclusionSet(""))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Mutations) != 1 || res.Excluded != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestParseReportsLine(t *testing.T) {
	_, err := Parse([]model.Row{{Line: 9, Code: "bad"}}, NewExclusionSet(DefaultExclude))
	if !errors.Is(err, ErrMalformedCode) {
		t.Fatalf("expected ErrMalformedCode, got %v", err)
	}
	if err.Error() != `line 9: invalid mutation code "bad": expected WT_CHAIN_POS_MUT` {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestNewExclusionSetAcceptsSeparators(t *testing.T) {
	set := NewExclusionSet("C, G,P")
	if len(set) != 3 || !set.Contains("G") {
		t.Fatalf("unexpected set: %v", set)
	}
}
