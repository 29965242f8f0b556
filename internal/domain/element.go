package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Tile attribute names as exposed by the presentation surface.
const (
	AttrNumber   = "number"
	AttrSymbol   = "symbol"
	AttrName     = "name"
	AttrMass     = "mass"
	AttrCategory = "category"
	AttrColumn   = "col"
	AttrRow      = "row"
)

// TileNode is one addressable tile as read from the presentation surface.
// Attributes are untyped; CollectElements turns them into ElementEntry values.
type TileNode struct {
	Ref   string
	Attrs map[string]string
}

// ElementEntry is the validated, read-only record behind a tile.
type ElementEntry struct {
	Number   int    `json:"number"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Mass     string `json:"mass"`
	Category string `json:"category"`
	Ref      string `json:"ref"`
	Column   int    `json:"col,omitempty"` // table layout position, 0 when unknown
	Row      int    `json:"row,omitempty"`
}

// NewElementEntry validates a single tile.
func NewElementEntry(node TileNode) (ElementEntry, error) {
	if strings.TrimSpace(node.Ref) == "" {
		return ElementEntry{}, fmt.Errorf("%w: tile without reference", ErrInvalidTile)
	}
	attr := func(key string) (string, error) {
		v := strings.TrimSpace(node.Attrs[key])
		if v == "" {
			return "", fmt.Errorf("%w: tile %q missing %s", ErrInvalidTile, node.Ref, key)
		}
		return v, nil
	}

	rawNumber, err := attr(AttrNumber)
	if err != nil {
		return ElementEntry{}, err
	}
	number, err := strconv.Atoi(rawNumber)
	if err != nil || number <= 0 {
		return ElementEntry{}, fmt.Errorf("%w: tile %q has number %q", ErrInvalidTile, node.Ref, rawNumber)
	}

	entry := ElementEntry{Number: number, Ref: node.Ref}
	if entry.Symbol, err = attr(AttrSymbol); err != nil {
		return ElementEntry{}, err
	}
	if entry.Name, err = attr(AttrName); err != nil {
		return ElementEntry{}, err
	}
	if entry.Mass, err = attr(AttrMass); err != nil {
		return ElementEntry{}, err
	}
	if !validMass(entry.Mass) {
		return ElementEntry{}, fmt.Errorf("%w: tile %q has mass %q", ErrInvalidTile, node.Ref, entry.Mass)
	}
	if entry.Category, err = attr(AttrCategory); err != nil {
		return ElementEntry{}, err
	}

	if entry.Column, err = optionalInt(node, AttrColumn); err != nil {
		return ElementEntry{}, err
	}
	if entry.Row, err = optionalInt(node, AttrRow); err != nil {
		return ElementEntry{}, err
	}
	return entry, nil
}

// CollectElements validates every tile and builds the registry, ordered as the
// surface lists them. It fails on the first malformed or duplicated tile.
func CollectElements(nodes []TileNode) ([]ElementEntry, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptyRegistry
	}
	entries := make([]ElementEntry, 0, len(nodes))
	numbers := make(map[int]struct{}, len(nodes))
	symbols := make(map[string]struct{}, len(nodes))
	refs := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		entry, err := NewElementEntry(node)
		if err != nil {
			return nil, err
		}
		if _, ok := numbers[entry.Number]; ok {
			return nil, fmt.Errorf("%w: number %d", ErrDuplicateTile, entry.Number)
		}
		if _, ok := symbols[entry.Symbol]; ok {
			return nil, fmt.Errorf("%w: symbol %s", ErrDuplicateTile, entry.Symbol)
		}
		if _, ok := refs[entry.Ref]; ok {
			return nil, fmt.Errorf("%w: ref %s", ErrDuplicateTile, entry.Ref)
		}
		numbers[entry.Number] = struct{}{}
		symbols[entry.Symbol] = struct{}{}
		refs[entry.Ref] = struct{}{}
		entries = append(entries, entry)
	}
	return entries, nil
}

// validMass accepts plain decimals and the bracketed form used for the most
// stable isotope of synthetic elements, e.g. "[209]".
func validMass(raw string) bool {
	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		raw = raw[1 : len(raw)-1]
	}
	v, err := strconv.ParseFloat(raw, 64)
	return err == nil && v > 0
}

func optionalInt(node TileNode, key string) (int, error) {
	raw := strings.TrimSpace(node.Attrs[key])
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: tile %q has %s %q", ErrInvalidTile, node.Ref, key, raw)
	}
	return v, nil
}
