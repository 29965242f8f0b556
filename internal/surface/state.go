package surface

import (
	"sort"
	"sync"

	"periodic-table-service/internal/domain"
)

// Patch operations.
const (
	OpText    = "text"
	OpStyle   = "style"
	OpVisible = "visible"
	OpMarker  = "marker"
)

// Patch is one effective change to the surface.
type Patch struct {
	Op     string `json:"op"`
	Target string `json:"target"`
	Value  string `json:"value,omitempty"`
	On     bool   `json:"on,omitempty"`
}

// Snapshot is the complete surface state, sent to hosts that attach late.
type Snapshot struct {
	Texts   map[string]string   `json:"texts"`
	Styles  map[string]string   `json:"styles"`
	Visible map[string]bool     `json:"visible"`
	Markers map[string][]string `json:"markers"`
}

// State is an in-memory presentation surface. Writes to slots the document
// does not contain are dropped; writes that change nothing produce no patch.
type State struct {
	mu      sync.Mutex
	tiles   []domain.TileNode
	tileSet map[string]struct{}
	slots   map[domain.Slot]struct{}
	texts   map[domain.Slot]string
	styles  map[domain.Slot]string
	visible map[domain.Slot]bool
	markers map[string]map[domain.Marker]struct{}

	pending []Patch
	changed chan struct{}
}

// NewState builds a surface state over a loaded document.
func NewState(doc Document) *State {
	s := &State{
		tiles:   doc.Tiles,
		tileSet: make(map[string]struct{}, len(doc.Tiles)),
		slots:   make(map[domain.Slot]struct{}, len(doc.Slots)),
		texts:   make(map[domain.Slot]string),
		styles:  make(map[domain.Slot]string),
		visible: make(map[domain.Slot]bool),
		markers: make(map[string]map[domain.Marker]struct{}),
		changed: make(chan struct{}, 1),
	}
	for _, t := range doc.Tiles {
		s.tileSet[t.Ref] = struct{}{}
	}
	for _, slot := range doc.Slots {
		s.slots[slot] = struct{}{}
	}
	return s
}

// Tiles returns a copy of the document tiles.
func (s *State) Tiles() []domain.TileNode {
	out := make([]domain.TileNode, len(s.tiles))
	for i, t := range s.tiles {
		attrs := make(map[string]string, len(t.Attrs))
		for k, v := range t.Attrs {
			attrs[k] = v
		}
		out[i] = domain.TileNode{Ref: t.Ref, Attrs: attrs}
	}
	return out
}

func (s *State) SetText(slot domain.Slot, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSlot(slot) {
		return
	}
	if cur, ok := s.texts[slot]; ok && cur == text {
		return
	}
	s.texts[slot] = text
	s.recordLocked(Patch{Op: OpText, Target: string(slot), Value: text})
}

func (s *State) SetStyle(slot domain.Slot, style string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSlot(slot) {
		return
	}
	if cur, ok := s.styles[slot]; ok && cur == style {
		return
	}
	s.styles[slot] = style
	s.recordLocked(Patch{Op: OpStyle, Target: string(slot), Value: style})
}

func (s *State) SetVisible(slot domain.Slot, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSlot(slot) {
		return
	}
	if cur, ok := s.visible[slot]; ok && cur == visible {
		return
	}
	s.visible[slot] = visible
	s.recordLocked(Patch{Op: OpVisible, Target: string(slot), On: visible})
}

func (s *State) SetMarker(ref string, marker domain.Marker, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tileSet[ref]; !ok {
		return
	}
	set := s.markers[ref]
	_, has := set[marker]
	if has == on {
		return
	}
	if on {
		if set == nil {
			set = make(map[domain.Marker]struct{})
			s.markers[ref] = set
		}
		set[marker] = struct{}{}
	} else {
		delete(set, marker)
	}
	s.recordLocked(Patch{Op: OpMarker, Target: ref, Value: string(marker), On: on})
}

// Text returns the current text of a slot.
func (s *State) Text(slot domain.Slot) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.texts[slot]
	return v, ok
}

// Style returns the current style class of a slot.
func (s *State) Style(slot domain.Slot) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.styles[slot]
}

// Visible reports whether a slot is shown.
func (s *State) Visible(slot domain.Slot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible[slot]
}

// HasMarker reports whether a tile carries a marker.
func (s *State) HasMarker(ref string, marker domain.Marker) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.markers[ref][marker]
	return ok
}

// Marked returns the sorted refs of tiles carrying a marker.
func (s *State) Marked(marker domain.Marker) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var refs []string
	for ref, set := range s.markers {
		if _, ok := set[marker]; ok {
			refs = append(refs, ref)
		}
	}
	sort.Strings(refs)
	return refs
}

// Changes signals that patches are waiting to be flushed.
func (s *State) Changes() <-chan struct{} {
	return s.changed
}

// Flush returns and clears the pending patches.
func (s *State) Flush() []Patch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

// Snapshot returns the full state and clears the pending patches, which the
// snapshot already contains.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Texts:   make(map[string]string, len(s.texts)),
		Styles:  make(map[string]string, len(s.styles)),
		Visible: make(map[string]bool, len(s.visible)),
		Markers: make(map[string][]string, len(s.markers)),
	}
	for k, v := range s.texts {
		snap.Texts[string(k)] = v
	}
	for k, v := range s.styles {
		snap.Styles[string(k)] = v
	}
	for k, v := range s.visible {
		snap.Visible[string(k)] = v
	}
	for ref, set := range s.markers {
		if len(set) == 0 {
			continue
		}
		list := make([]string, 0, len(set))
		for m := range set {
			list = append(list, string(m))
		}
		sort.Strings(list)
		snap.Markers[ref] = list
	}
	s.pending = nil
	return snap
}

func (s *State) hasSlot(slot domain.Slot) bool {
	_, ok := s.slots[slot]
	return ok
}

func (s *State) recordLocked(p Patch) {
	s.pending = append(s.pending, p)
	select {
	case s.changed <- struct{}{}:
	default:
	}
}
