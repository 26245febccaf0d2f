package protocol

import "fmt"

// Frame encodings a viewer may subscribe with.
const (
	EncodingJSON    = "json"
	EncodingMsgpack = "msgpack"
)

// SUBSCRIBE (client -> server). First message on the observer connection; may be
// re-sent to change settings.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Encoding        string `json:"encoding,omitempty"`
	// Scans attaches per-unit sensor results to every unit in STATE frames.
	Scans bool `json:"scans,omitempty"`
}

// Control operations.
const (
	OpPause    = "pause"
	OpResume   = "resume"
	OpToggle   = "toggle"
	OpReset    = "reset"
	OpSpeed    = "speed"
	OpSelect   = "select"
	OpSelectAt = "select_at"
)

// CONTROL (client -> server)
type ControlMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Op              string  `json:"op"`
	Speed           float64 `json:"speed,omitempty"`
	Kind            string  `json:"kind,omitempty"` // unit | resource | satellite | none
	ID              uint64  `json:"id,omitempty"`
	X               float64 `json:"x,omitempty"`
	Y               float64 `json:"y,omitempty"`
}

// Validate checks the fields each op needs. It returns an error code and message.
func (m ControlMsg) Validate() (string, error) {
	switch m.Op {
	case OpPause, OpResume, OpToggle, OpReset, OpSelectAt:
		return "", nil
	case OpSpeed:
		if m.Speed <= 0 {
			return ErrBadRequest, fmt.Errorf("speed must be positive, got %v", m.Speed)
		}
		return "", nil
	case OpSelect:
		switch m.Kind {
		case "none", "unit", "resource", "satellite":
			return "", nil
		}
		return ErrBadRequest, fmt.Errorf("unknown selection kind %q", m.Kind)
	default:
		return ErrUnknownOp, fmt.Errorf("unknown op %q", m.Op)
	}
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}

func NewError(code string, err error) ErrorMsg {
	m := ErrorMsg{Type: TypeError, ProtocolVersion: Version, Code: code}
	if err != nil {
		m.Message = err.Error()
	}
	return m
}

// HTTP response for GET /v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string   `json:"protocol_version"`
	Encodings       []string `json:"encodings"`
	Board           Board    `json:"board"`
	Players         int      `json:"players"`
	UpdateTimeStep  float64  `json:"update_time_step"`
	MinSpeed        float64  `json:"min_speed"`
	MaxSpeed        float64  `json:"max_speed"`
}
