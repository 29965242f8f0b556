package domain

import (
	"errors"
	"testing"
)

func tile(ref, number, symbol, name, mass string) TileNode {
	return TileNode{Ref: ref, Attrs: map[string]string{
		AttrNumber:   number,
		AttrSymbol:   symbol,
		AttrName:     name,
		AttrMass:     mass,
		AttrCategory: "nonmetal",
	}}
}

func TestCollectElementsKeepsSurfaceOrder(t *testing.T) {
	nodes := []TileNode{
		tile("el-He", "2", "He", "Helium", "4.003"),
		tile("el-H", "1", "H", "Hydrogen", "1.008"),
		tile("el-Po", "84", "Po", "Polonium", "[209]"),
	}
	nodes[0].Attrs[AttrColumn] = "18"
	nodes[0].Attrs[AttrRow] = "1"

	entries, err := CollectElements(nodes)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Symbol != "He" || entries[1].Symbol != "H" || entries[2].Symbol != "Po" {
		t.Fatalf("unexpected order: %+v", entries)
	}
	if entries[0].Column != 18 || entries[0].Row != 1 {
		t.Fatalf("expected layout 18/1, got %d/%d", entries[0].Column, entries[0].Row)
	}
	if entries[2].Mass != "[209]" {
		t.Fatalf("expected bracketed mass kept verbatim, got %q", entries[2].Mass)
	}
}

func TestCollectElementsRejectsMalformedTiles(t *testing.T) {
	cases := map[string]TileNode{
		"missing ref":    tile("", "1", "H", "Hydrogen", "1.008"),
		"missing name":   tile("el-H", "1", "H", "", "1.008"),
		"bad number":     tile("el-H", "one", "H", "Hydrogen", "1.008"),
		"zero number":    tile("el-H", "0", "H", "Hydrogen", "1.008"),
		"bad mass":       tile("el-H", "1", "H", "Hydrogen", "light"),
		"negative mass":  tile("el-H", "1", "H", "Hydrogen", "-1"),
		"missing symbol": tile("el-H", "1", "", "Hydrogen", "1.008"),
	}
	for name, node := range cases {
		if _, err := CollectElements([]TileNode{node}); !errors.Is(err, ErrInvalidTile) {
			t.Fatalf("%s: expected ErrInvalidTile, got %v", name, err)
		}
	}

	bad := tile("el-H", "1", "H", "Hydrogen", "1.008")
	bad.Attrs[AttrRow] = "x"
	if _, err := CollectElements([]TileNode{bad}); !errors.Is(err, ErrInvalidTile) {
		t.Fatalf("expected ErrInvalidTile for bad row, got %v", err)
	}
}

func TestCollectElementsRejectsDuplicates(t *testing.T) {
	cases := map[string][]TileNode{
		"number": {tile("el-H", "1", "H", "Hydrogen", "1.008"), tile("el-X", "1", "X", "Other", "2")},
		"symbol": {tile("el-H", "1", "H", "Hydrogen", "1.008"), tile("el-X", "2", "H", "Other", "2")},
		"ref":    {tile("el-H", "1", "H", "Hydrogen", "1.008"), tile("el-H", "2", "He", "Helium", "4")},
	}
	for name, nodes := range cases {
		if _, err := CollectElements(nodes); !errors.Is(err, ErrDuplicateTile) {
			t.Fatalf("%s: expected ErrDuplicateTile, got %v", name, err)
		}
	}
}

func TestCollectElementsRejectsEmptySurface(t *testing.T) {
	if _, err := CollectElements(nil); !errors.Is(err, ErrEmptyRegistry) {
		t.Fatalf("expected ErrEmptyRegistry, got %v", err)
	}
}

func TestLabelsWithDefaults(t *testing.T) {
	l := Labels{StartQuiz: "Quiz starten"}.WithDefaults()
	if l.StartQuiz != "Quiz starten" {
		t.Fatalf("expected custom label kept, got %q", l.StartQuiz)
	}
	if l.EndQuiz != DefaultLabels().EndQuiz || l.Reset != DefaultLabels().Reset {
		t.Fatalf("expected defaults filled in, got %+v", l)
	}
}
