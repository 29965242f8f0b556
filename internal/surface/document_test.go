package surface

import (
	"bytes"
	"strings"
	"testing"

	"periodic-table-service/internal/domain"
	"periodic-table-service/web"
)

func TestLoadDocumentReadsTilesAndSlots(t *testing.T) {
	html := `<html><body>
<div class="element nonmetal" id="el-H" data-number="1" data-symbol="H" data-name="Hydrogen" data-mass="1.008" data-category="nonmetal" data-col="1" data-row="1">H</div>
<div class="element noble-gas" data-number="2" data-symbol="He" data-name="Helium" data-mass=" 4.003 " data-category="noble-gas">He</div>
<span id="quiz-target"></span>
<div id="unrelated"></div>
</body></html>`

	doc, err := LoadDocument(strings.NewReader(html))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Tiles) != 2 {
		t.Fatalf("expected 2 tiles, got %d", len(doc.Tiles))
	}
	if doc.Tiles[0].Ref != "el-H" || doc.Tiles[0].Attrs[domain.AttrRow] != "1" {
		t.Fatalf("unexpected first tile %+v", doc.Tiles[0])
	}
	if doc.Tiles[1].Ref != "el-He" {
		t.Fatalf("expected ref derived from symbol, got %q", doc.Tiles[1].Ref)
	}
	if doc.Tiles[1].Attrs[domain.AttrMass] != "4.003" {
		t.Fatalf("expected trimmed mass, got %q", doc.Tiles[1].Attrs[domain.AttrMass])
	}
	if _, ok := doc.Tiles[1].Attrs[domain.AttrColumn]; ok {
		t.Fatalf("expected absent attribute to stay absent")
	}
	if len(doc.Slots) != 1 || doc.Slots[0] != domain.SlotQuizTarget {
		t.Fatalf("expected only quiz-target slot, got %v", doc.Slots)
	}
}

func TestEmbeddedDocumentIsComplete(t *testing.T) {
	raw, err := web.Document()
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	doc, err := LoadDocument(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	elements, err := domain.CollectElements(doc.Tiles)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(elements) != 118 {
		t.Fatalf("expected 118 elements, got %d", len(elements))
	}
	if len(doc.Slots) != len(domain.AllSlots()) {
		t.Fatalf("expected every slot present, got %v", doc.Slots)
	}
	for _, e := range elements {
		if e.Column < 1 || e.Column > 18 || e.Row < 1 {
			t.Fatalf("element %s has no layout position", e.Symbol)
		}
	}
}
