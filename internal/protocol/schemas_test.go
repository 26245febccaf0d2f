package protocol_test

import (
	"encoding/json"
	"testing"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	valid := map[string][]string{
		protocol.SchemaSubscribe: {
			`{"type":"SUBSCRIBE","protocol_version":"1.0"}`,
			`{"type":"SUBSCRIBE","protocol_version":"1.0","encoding":"msgpack","scans":true}`,
		},
		protocol.SchemaControl: {
			`{"type":"CONTROL","protocol_version":"1.0","op":"pause"}`,
			`{"type":"CONTROL","protocol_version":"1.0","op":"speed","speed":2.5}`,
			`{"type":"CONTROL","protocol_version":"1.0","op":"select","kind":"unit","id":7}`,
			`{"type":"CONTROL","protocol_version":"1.0","op":"select_at","x":-10.5,"y":3}`,
		},
	}
	for name, samples := range valid {
		for _, s := range samples {
			if err := protocol.ValidateJSON(name, []byte(s)); err != nil {
				t.Fatalf("%s rejected %s: %v", name, s, err)
			}
		}
	}

	invalid := map[string][]string{
		protocol.SchemaSubscribe: {
			`{"type":"SUBSCRIBE"}`,
			`{"type":"SUBSCRIBE","protocol_version":"1.0","encoding":"xml"}`,
			`{"type":"HELLO","protocol_version":"1.0"}`,
		},
		protocol.SchemaControl: {
			`{"type":"CONTROL","protocol_version":"1.0","op":"jump"}`,
			`{"type":"CONTROL","protocol_version":"1.0","op":"speed"}`,
			`{"type":"CONTROL","protocol_version":"1.0","op":"speed","speed":0}`,
			`{"type":"CONTROL","protocol_version":"1.0","op":"select"}`,
			`{"type":"CONTROL","protocol_version":"1.0","op":"pause","extra":1}`,
		},
	}
	for name, samples := range invalid {
		for _, s := range samples {
			if err := protocol.ValidateJSON(name, []byte(s)); err == nil {
				t.Fatalf("%s accepted %s", name, s)
			}
		}
	}
}

func sampleState() protocol.StateMsg {
	return protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		RunID:           "8f0e2c1a-0000-4000-8000-000000000001",
		Seed:            42,
		Tick:            12,
		Elapsed:         0.12,
		Running:         true,
		Speed:           1,
		Board:           protocol.Board{Width: [2]float64{-100, 100}, Height: [2]float64{-100, 100}},
		Selection:       &protocol.SelectionRef{Kind: "unit", ID: 2},
		Players: []protocol.PlayerState{{
			ID:        1,
			Name:      "Player 1",
			Color:     "#4c72b0",
			Alive:     true,
			Resources: [3]int{10, 10, 10},
			Units: []protocol.UnitState{{
				ID: 2, Kind: "Headquarters", Pos: [2]float64{3, 4}, Heading: 1,
				Health: 300, MaxHealth: 300, Action: "None",
			}},
		}},
		Resources:  []protocol.ResourceState{{ID: 3, Type: "Coil", Amount: 40, Pos: [2]float64{30, 40}, Heading: 2}},
		Satellites: []protocol.SatelliteState{{ID: 9, Pos: [2]float64{0, 100}, Heading: 3.1, Speed: 8.2, Faulty: true}},
	}
}

func TestSchemas_StateMessageConforms(t *testing.T) {
	b, err := json.Marshal(sampleState())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := protocol.ValidateJSON(protocol.SchemaState, b); err != nil {
		t.Fatalf("state frame rejected: %v\n%s", err, b)
	}

	bad := sampleState()
	bad.Players[0].Units[0].Heading = 7
	b, _ = json.Marshal(bad)
	if err := protocol.ValidateJSON(protocol.SchemaState, b); err == nil {
		t.Fatalf("unwrapped heading accepted")
	}
}

func TestCodec_MsgpackUsesJSONNames(t *testing.T) {
	in := sampleState()
	b, err := protocol.Marshal(protocol.EncodingMsgpack, in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var generic map[string]any
	if err := protocol.Unmarshal(protocol.EncodingMsgpack, b, &generic); err != nil {
		t.Fatalf("unmarshal generic: %v", err)
	}
	if generic["protocol_version"] != protocol.Version || generic["type"] != protocol.TypeState {
		t.Fatalf("keys not json-named: %v", generic)
	}

	var out protocol.StateMsg
	if err := protocol.Unmarshal(protocol.EncodingMsgpack, b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Tick != in.Tick || out.Satellites[0].Faulty != true || out.Players[0].Units[0].Kind != "Headquarters" {
		t.Fatalf("round trip lost data: %+v", out)
	}

	if _, err := protocol.Marshal("xml", in); err == nil {
		t.Fatalf("unknown encoding accepted")
	}
	if enc, err := protocol.NormalizeEncoding(""); err != nil || enc != protocol.EncodingJSON {
		t.Fatalf("default encoding %q %v", enc, err)
	}
}

func TestControlValidate(t *testing.T) {
	cases := []struct {
		msg  protocol.ControlMsg
		code string
	}{
		{protocol.ControlMsg{Op: protocol.OpPause}, ""},
		{protocol.ControlMsg{Op: protocol.OpSpeed, Speed: 3}, ""},
		{protocol.ControlMsg{Op: protocol.OpSpeed}, protocol.ErrBadRequest},
		{protocol.ControlMsg{Op: protocol.OpSelect, Kind: "unit", ID: 1}, ""},
		{protocol.ControlMsg{Op: protocol.OpSelect, Kind: "tree"}, protocol.ErrBadRequest},
		{protocol.ControlMsg{Op: "fly"}, protocol.ErrUnknownOp},
	}
	for _, c := range cases {
		code, err := c.msg.Validate()
		if code != c.code || (code == "") != (err == nil) {
			t.Fatalf("%+v: code=%q err=%v want %q", c.msg, code, err, c.code)
		}
	}
}
