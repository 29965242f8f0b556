package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"periodic-table-service/internal/domain"
)

// TileSelector matches element tiles in the presentation document.
const TileSelector = ".element"

var tileAttrs = []string{
	domain.AttrNumber,
	domain.AttrSymbol,
	domain.AttrName,
	domain.AttrMass,
	domain.AttrCategory,
	domain.AttrColumn,
	domain.AttrRow,
}

// Document is what the controller needs from a presentation document: its
// tiles and the display slots it actually contains.
type Document struct {
	Tiles []domain.TileNode
	Slots []domain.Slot
}

// LoadDocument scans an HTML document for element tiles and display slots.
func LoadDocument(r io.Reader) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Document{}, fmt.Errorf("parse document: %w", err)
	}

	var out Document
	doc.Find(TileSelector).Each(func(_ int, sel *goquery.Selection) {
		node := domain.TileNode{Attrs: make(map[string]string, len(tileAttrs))}
		for _, name := range tileAttrs {
			if v, ok := sel.Attr("data-" + name); ok {
				node.Attrs[name] = strings.TrimSpace(v)
			}
		}
		if id, ok := sel.Attr("id"); ok && strings.TrimSpace(id) != "" {
			node.Ref = strings.TrimSpace(id)
		} else if sym := node.Attrs[domain.AttrSymbol]; sym != "" {
			node.Ref = "el-" + sym
		}
		out.Tiles = append(out.Tiles, node)
	})

	for _, slot := range domain.AllSlots() {
		if doc.Find("#"+string(slot)).Length() > 0 {
			out.Slots = append(out.Slots, slot)
		}
	}
	return out, nil
}
