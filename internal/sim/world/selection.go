package world

// SelectionKind tags what the presentation layer is inspecting.
type SelectionKind uint8

const (
	SelNone SelectionKind = iota
	SelUnit
	SelResource
	SelSatellite
)

func (k SelectionKind) String() string {
	switch k {
	case SelUnit:
		return "unit"
	case SelResource:
		return "resource"
	case SelSatellite:
		return "satellite"
	default:
		return "none"
	}
}

// Selection has no effect on the simulation.
type Selection struct {
	Kind SelectionKind `json:"kind"`
	ID   ID            `json:"id,omitempty"`
}

// Hit radius is draw size times this modifier.
const hoverSizeModifier = 0.7

// Select sets the selection if the entity exists; otherwise the selection is cleared.
func (w *World) Select(sel Selection) {
	if !w.exists(sel) {
		sel = Selection{}
	}
	w.selection = sel
}

// SelectAt hit-tests units, then resources, then satellites. The last hit wins,
// matching drawing order. A click on empty space keeps the current selection.
func (w *World) SelectAt(x, y float64) bool {
	at := Vec2{X: x, Y: y}
	var hit Selection
	for _, p := range w.players {
		for _, u := range p.units {
			if at.Within(u.pos, u.DrawSize()*hoverSizeModifier) {
				hit = Selection{Kind: SelUnit, ID: u.id}
			}
		}
	}
	for _, r := range w.resources {
		if at.Within(r.pos, r.DrawSize()*hoverSizeModifier) {
			hit = Selection{Kind: SelResource, ID: r.id}
		}
	}
	for _, s := range w.satellites {
		if at.Within(s.pos, s.DrawSize()*hoverSizeModifier) {
			hit = Selection{Kind: SelSatellite, ID: s.id}
		}
	}
	if hit.Kind == SelNone {
		return false
	}
	w.selection = hit
	return true
}

// Selected returns the current selection, resolved against the live entities.
func (w *World) Selected() Selection {
	if !w.exists(w.selection) {
		return Selection{}
	}
	return w.selection
}

func (w *World) SelectedUnit() *Unit {
	if w.selection.Kind != SelUnit {
		return nil
	}
	return w.Unit(w.selection.ID)
}

func (w *World) SelectedResource() *Resource {
	if w.selection.Kind != SelResource {
		return nil
	}
	return w.Resource(w.selection.ID)
}

func (w *World) SelectedSatellite() *Satellite {
	if w.selection.Kind != SelSatellite {
		return nil
	}
	return w.Satellite(w.selection.ID)
}

func (w *World) exists(sel Selection) bool {
	switch sel.Kind {
	case SelUnit:
		return w.Unit(sel.ID) != nil
	case SelResource:
		return w.Resource(sel.ID) != nil
	case SelSatellite:
		return w.Satellite(sel.ID) != nil
	}
	return false
}

func (w *World) clearSelection(kind SelectionKind, id ID) {
	if w.selection.Kind == kind && w.selection.ID == id {
		w.selection = Selection{}
	}
}
