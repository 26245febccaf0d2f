package tuning

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Resource type order used by every per-type array below.
const (
	Capacitor = iota
	Coil
	Resistor
	ResourceTypes
)

// SpeedOfLight converts receiver clock offsets into distance errors.
const SpeedOfLight = 299_792_458.0

//go:embed tuning.schema.json
var schemaJSON string

type Tuning struct {
	Game        Game        `yaml:"game" json:"game"`
	Units       Units       `yaml:"units" json:"units"`
	Costs       Costs       `yaml:"costs" json:"costs"`
	Positioning Positioning `yaml:"positioning" json:"positioning"`
	Resources   Resources   `yaml:"resources" json:"resources"`
}

type Game struct {
	NumPlayers   int        `yaml:"num_players" json:"num_players"`
	BoardWidth   [2]float64 `yaml:"board_width" json:"board_width"`
	BoardHeight  [2]float64 `yaml:"board_height" json:"board_height"`
	NeutralUnits int        `yaml:"neutral_units" json:"neutral_units"`

	EnablePvP                 bool `yaml:"enable_pvp" json:"enable_pvp"`
	EnableHeadingPrecision    bool `yaml:"enable_heading_precision" json:"enable_heading_precision"`
	EnableDistanceClockOffset bool `yaml:"enable_distance_clock_offset" json:"enable_distance_clock_offset"`

	// Heading error window in degrees (applied as +-half).
	HeadingErrorDeg float64 `yaml:"heading_error_deg" json:"heading_error_deg"`
	// Clock offset stddev given as the equivalent distance in metres.
	ClockOffsetStddevM float64 `yaml:"clock_offset_stddev_m" json:"clock_offset_stddev_m"`

	UpdateTimeStep float64 `yaml:"update_time_step" json:"update_time_step"`

	Seed    uint64 `yaml:"seed" json:"seed"`
	UseSeed bool   `yaml:"use_seed" json:"use_seed"`
}

type Attributes struct {
	Health        float64 `yaml:"health" json:"health"`
	Speed         float64 `yaml:"speed" json:"speed"`
	ScanRange     float64 `yaml:"scan_range" json:"scan_range"`
	CollectRange  float64 `yaml:"collect_range" json:"collect_range"`
	ContainerSize int     `yaml:"container_size" json:"container_size"`
	AttackPower   int     `yaml:"attack_power" json:"attack_power"`
	AttackRange   float64 `yaml:"attack_range" json:"attack_range"`
}

type HQ struct {
	Health      float64 `yaml:"health" json:"health"`
	ScanRange   float64 `yaml:"scan_range" json:"scan_range"`
	AttackPower int     `yaml:"attack_power" json:"attack_power"`
	AttackRange float64 `yaml:"attack_range" json:"attack_range"`
	HealRange   float64 `yaml:"heal_range" json:"heal_range"`
	HealAmount  float64 `yaml:"heal_amount" json:"heal_amount"`
}

type Virus struct {
	Health       float64 `yaml:"health" json:"health"`
	Speed        float64 `yaml:"speed" json:"speed"`
	ScanRange    float64 `yaml:"scan_range" json:"scan_range"`
	AttackPower  int     `yaml:"attack_power" json:"attack_power"`
	AttackRange  float64 `yaml:"attack_range" json:"attack_range"`
	Regeneration float64 `yaml:"regeneration" json:"regeneration"`
	FleeTime     float64 `yaml:"flee_time" json:"flee_time"`
}

type Units struct {
	Base  Attributes `yaml:"base" json:"base"`
	Max   Attributes `yaml:"max" json:"max"`
	HQ    HQ         `yaml:"hq" json:"hq"`
	Virus Virus      `yaml:"virus" json:"virus"`

	AttackBlockTime       float64 `yaml:"attack_block_time" json:"attack_block_time"`
	CarrySpeedPenalty     float64 `yaml:"carry_speed_penalty" json:"carry_speed_penalty"`
	SpawnRingRadius       float64 `yaml:"spawn_ring_radius" json:"spawn_ring_radius"`
	AttributeJitterStddev float64 `yaml:"attribute_jitter" json:"attribute_jitter"`
	HealthJitter          float64 `yaml:"health_jitter" json:"health_jitter"`
}

type PerType [ResourceTypes]int

type Costs struct {
	Robot         PerType `yaml:"robot" json:"robot"`
	HealthPerCost int     `yaml:"health_per_cost" json:"health_per_cost"`

	PerHealth        PerType `yaml:"per_health" json:"per_health"`
	PerSpeed         PerType `yaml:"per_speed" json:"per_speed"`
	PerScanRange     PerType `yaml:"per_scan_range" json:"per_scan_range"`
	PerCollectRange  PerType `yaml:"per_collect_range" json:"per_collect_range"`
	PerContainerSize PerType `yaml:"per_container_size" json:"per_container_size"`
	PerAttackPower   PerType `yaml:"per_attack_power" json:"per_attack_power"`
	PerAttackRange   PerType `yaml:"per_attack_range" json:"per_attack_range"`
}

type Positioning struct {
	NumSatellites   int     `yaml:"num_satellites" json:"num_satellites"`
	VisibilityRange float64 `yaml:"visibility_range" json:"visibility_range"`
	// Percent chances.
	ChanceRngBytes int     `yaml:"chance_rng_bytes" json:"chance_rng_bytes"`
	ChanceFaulty   int     `yaml:"chance_faulty" json:"chance_faulty"`
	MaxFillerBytes int     `yaml:"max_filler_bytes" json:"max_filler_bytes"`
	SatelliteSpeed float64 `yaml:"satellite_speed" json:"satellite_speed"`
}

type Range [2]float64

type Resources struct {
	MinDistanceToHQ        float64 `yaml:"min_distance_to_hq" json:"min_distance_to_hq"`
	MinDistanceToHQLimited float64 `yaml:"min_distance_to_hq_limited" json:"min_distance_to_hq_limited"`
	AllowedCloseToHQ       int     `yaml:"allowed_close_to_hq" json:"allowed_close_to_hq"`
	MinDistanceToResource  float64 `yaml:"min_distance_to_resource" json:"min_distance_to_resource"`
	ReservedCorner         float64 `yaml:"reserved_corner" json:"reserved_corner"`

	Starting  PerType              `yaml:"starting" json:"starting"`
	PerEntity [ResourceTypes]Range `yaml:"per_entity" json:"per_entity"`
	Total     [ResourceTypes]Range `yaml:"total" json:"total"`
}

// Defaults mirrors the stock challenge settings.
func Defaults() Tuning {
	return Tuning{
		Game: Game{
			NumPlayers:         1,
			BoardWidth:         [2]float64{-100, 100},
			BoardHeight:        [2]float64{-100, 100},
			HeadingErrorDeg:    10,
			ClockOffsetStddevM: 2,
			UpdateTimeStep:     1e-2,
			UseSeed:            true,
		},
		Units: Units{
			Base: Attributes{
				Health:        100,
				Speed:         4,
				ScanRange:     10,
				CollectRange:  5,
				ContainerSize: 2,
				AttackPower:   5,
				AttackRange:   5,
			},
			Max: Attributes{
				Health:        100,
				Speed:         8,
				ScanRange:     20,
				CollectRange:  10,
				ContainerSize: 5,
				AttackPower:   15,
				AttackRange:   10,
			},
			HQ: HQ{
				Health:      300,
				ScanRange:   15,
				AttackPower: 10,
				AttackRange: 8,
				HealRange:   3,
				HealAmount:  1,
			},
			Virus: Virus{
				Health:       200,
				Speed:        3,
				ScanRange:    11,
				AttackPower:  7,
				AttackRange:  6,
				Regeneration: 0.5,
				FleeTime:     2,
			},
			AttackBlockTime:       1,
			CarrySpeedPenalty:     2,
			SpawnRingRadius:       3,
			AttributeJitterStddev: 0.1,
			HealthJitter:          1,
		},
		Costs: Costs{
			Robot:            PerType{10, 10, 10},
			HealthPerCost:    5,
			PerHealth:        PerType{1, 0, 0},
			PerSpeed:         PerType{0, 0, 3},
			PerScanRange:     PerType{2, 0, 1},
			PerCollectRange:  PerType{3, 0, 2},
			PerContainerSize: PerType{3, 1, 2},
			PerAttackPower:   PerType{0, 2, 0},
			PerAttackRange:   PerType{0, 1, 0},
		},
		Positioning: Positioning{
			NumSatellites:   6,
			VisibilityRange: 100,
			ChanceRngBytes:  10,
			ChanceFaulty:    10,
			MaxFillerBytes:  10,
			SatelliteSpeed:  8,
		},
		Resources: Resources{
			MinDistanceToHQ:        20,
			MinDistanceToHQLimited: 50,
			AllowedCloseToHQ:       3,
			MinDistanceToResource:  25,
			ReservedCorner:         20,
			Starting:               PerType{40, 40, 40},
			PerEntity:              [ResourceTypes]Range{{20, 60}, {20, 60}, {20, 60}},
			Total:                  [ResourceTypes]Range{{100, 300}, {100, 300}, {100, 300}},
		},
	}
}

// HeadingError returns the heading precision window in radians.
func (t Tuning) HeadingError() float64 { return t.Game.HeadingErrorDeg * math.Pi / 180 }

// ClockOffsetStddev returns the receiver clock offset stddev in seconds.
func (t Tuning) ClockOffsetStddev() float64 { return t.Game.ClockOffsetStddevM / SpeedOfLight }

// Load reads a YAML tuning file on top of Defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	return Parse(raw)
}

// Parse decodes YAML, checks it against the embedded schema and validates ranges.
func Parse(raw []byte) (Tuning, error) {
	t := Defaults()
	if err := validateSchema(raw); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func validateSchema(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	// Round-trip through JSON so the validator sees json.Unmarshal shaped values.
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	return s.Validate(v)
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("tuning.schema.json", schemaJSON)
	})
	return schema, schemaErr
}

// Validate checks cross-field constraints the schema cannot express.
func (t Tuning) Validate() error {
	g := t.Game
	if g.NumPlayers < 1 {
		return fmt.Errorf("game.num_players must be >= 1, got %d", g.NumPlayers)
	}
	if g.BoardWidth[0] >= g.BoardWidth[1] || g.BoardHeight[0] >= g.BoardHeight[1] {
		return fmt.Errorf("board extents must be increasing")
	}
	if g.UpdateTimeStep <= 0 {
		return fmt.Errorf("game.update_time_step must be > 0")
	}
	p := t.Positioning
	if p.ChanceRngBytes < 0 || p.ChanceRngBytes > 100 || p.ChanceFaulty < 0 || p.ChanceFaulty > 100 {
		return fmt.Errorf("positioning chances must be within [0, 100]")
	}
	if p.MaxFillerBytes < 0 {
		return fmt.Errorf("positioning.max_filler_bytes must be >= 0")
	}
	for i := 0; i < ResourceTypes; i++ {
		pe := t.Resources.PerEntity[i]
		if pe[0] <= 0 || pe[0] > pe[1] {
			return fmt.Errorf("resources.per_entity[%d] must satisfy 0 < min <= max", i)
		}
		if tot := t.Resources.Total[i]; tot[0] > tot[1] {
			return fmt.Errorf("resources.total[%d] must satisfy min <= max", i)
		}
	}
	return nil
}
