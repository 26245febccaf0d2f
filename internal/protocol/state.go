package protocol

// STATE (server -> client). One frame per publish interval.
type StateMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	RunID           string  `json:"run_id"`
	Seed            uint64  `json:"seed"`
	Tick            uint64  `json:"tick"`
	Elapsed         float64 `json:"elapsed"`
	Running         bool    `json:"running"`
	Finished        bool    `json:"finished"`
	Speed           float64 `json:"speed"`

	Board     Board         `json:"board"`
	Outcome   *OutcomeState `json:"outcome,omitempty"`
	Selection *SelectionRef `json:"selection,omitempty"`

	Players    []PlayerState    `json:"players"`
	Resources  []ResourceState  `json:"resources"`
	Satellites []SatelliteState `json:"satellites"`
}

type Board struct {
	Width  [2]float64 `json:"width"`
	Height [2]float64 `json:"height"`
}

type OutcomeState struct {
	Reason      string `json:"reason"`
	WinnerID    uint64 `json:"winner_id,omitempty"`
	WinnerColor string `json:"winner_color,omitempty"`
	Tick        uint64 `json:"tick"`
}

type SelectionRef struct {
	Kind string `json:"kind"`
	ID   uint64 `json:"id"`
}

type PlayerState struct {
	ID        uint64      `json:"id"`
	Name      string      `json:"name"`
	Color     string      `json:"color"`
	Neutral   bool        `json:"neutral,omitempty"`
	Alive     bool        `json:"alive"`
	Resources [3]int      `json:"resources"`
	Collected [3]int      `json:"collected"`
	Units     []UnitState `json:"units"`
}

type UnitState struct {
	ID         uint64     `json:"id"`
	Kind       string     `json:"kind"`
	Pos        [2]float64 `json:"pos"`
	Heading    float64    `json:"heading"`
	Health     float64    `json:"health"`
	MaxHealth  float64    `json:"max_health"`
	Action     string     `json:"action"`
	CargoType  string     `json:"cargo_type,omitempty"`
	Cargo      int        `json:"cargo,omitempty"`
	Reloading  bool       `json:"reloading,omitempty"`
	Satellites int        `json:"satellites,omitempty"`
	Scans      *UnitScans `json:"scans,omitempty"`
}

// UnitScans mirrors a unit's latest sensor refresh. Frames are the raw ranging bytes.
type UnitScans struct {
	Units     []ScanHit `json:"units"`
	Resources []ScanHit `json:"resources"`
	Frames    [][]byte  `json:"frames,omitempty"`
}

type ScanHit struct {
	ID       uint64  `json:"id"`
	Heading  float64 `json:"heading"`
	Distance float64 `json:"distance"`
}

type ResourceState struct {
	ID      uint64     `json:"id"`
	Type    string     `json:"type"`
	Amount  int        `json:"amount"`
	Pos     [2]float64 `json:"pos"`
	Heading float64    `json:"heading"`
}

type SatelliteState struct {
	ID      uint64     `json:"id"`
	Pos     [2]float64 `json:"pos"`
	Heading float64    `json:"heading"`
	Speed   float64    `json:"speed"`
	Faulty  bool       `json:"faulty,omitempty"`
}
