package world

import (
	"fmt"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/tuning"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world/logic/mathx"
)

// ID is a global entity id. Ids are unique within one run and never zero,
// except for the neutral player which always has id 0.
type ID uint64

const NeutralPlayerID ID = 0

type Vec2 = mathx.Vec2

type Kind uint8

const (
	KindRobot Kind = iota
	KindHeadquarters
	KindVirus
)

type kindTraits struct {
	name     string
	drawSize float64
	hq       bool
	mobile   bool
	economy  bool
}

var traits = [...]kindTraits{
	KindRobot:        {name: "Robot", drawSize: 1.5, mobile: true, economy: true},
	KindHeadquarters: {name: "Headquarters", drawSize: 2.5, hq: true},
	KindVirus:        {name: "Virus", drawSize: 3.0, mobile: true},
}

func (k Kind) String() string {
	if int(k) < len(traits) {
		return traits[k].name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

type Action uint8

const (
	ActionNone Action = iota
	ActionMove
	ActionAttack
	ActionCollectResource
	ActionDropOffResourcesAtHQ
	ActionDiscardResources
)

var actionNames = [...]string{"None", "Move", "Attack", "CollectResource", "DropOffResourcesAtHQ", "DiscardResources"}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", a)
}

type ResourceType uint8

const (
	Capacitor ResourceType = tuning.Capacitor
	Coil      ResourceType = tuning.Coil
	Resistor  ResourceType = tuning.Resistor

	ResourceTypeCount = tuning.ResourceTypes
)

var resourceNames = [ResourceTypeCount]string{"Capacitor", "Coil", "Resistor"}

// Draw sizes used for hit-testing.
var resourceSizes = [ResourceTypeCount]float64{3, 5, 3}

func (t ResourceType) String() string {
	if int(t) < ResourceTypeCount {
		return resourceNames[t]
	}
	return fmt.Sprintf("ResourceType(%d)", t)
}

// Amounts holds one count per resource type.
type Amounts [ResourceTypeCount]int

func (a Amounts) Sum() int {
	s := 0
	for _, v := range a {
		s += v
	}
	return s
}

type Color struct {
	R uint8 `json:"r" msgpack:"r"`
	G uint8 `json:"g" msgpack:"g"`
	B uint8 `json:"b" msgpack:"b"`
	A uint8 `json:"a" msgpack:"a"`
}

func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

var neutralColor = Color{224, 224, 224, 255}

// Player palette; player p gets entry (5-p) mod len.
var playerPalette = [...]Color{
	{0x00, 0x1c, 0x7f, 0xff},
	{0xb1, 0x40, 0x0d, 0xff},
	{0x12, 0x71, 0x1c, 0xff},
	{0x8c, 0x08, 0x00, 0xff},
	{0x59, 0x1e, 0x71, 0xff},
	{0x59, 0x2f, 0x0d, 0xff},
	{0xa2, 0x35, 0x82, 0xff},
	{0x3c, 0x3c, 0x3c, 0xff},
	{0xb8, 0x85, 0x0a, 0xff},
	{0x00, 0x63, 0x74, 0xff},
}

func playerColor(p int) Color {
	n := len(playerPalette)
	return playerPalette[((5-p)%n+n)%n]
}

// Cargo is what a robot currently carries.
type Cargo struct {
	Type   ResourceType `json:"type"`
	Amount int          `json:"amount"`
}

// AttributeModifiers are the upgrades bought on top of the base robot when spawning.
// Negative values are treated as zero.
type AttributeModifiers struct {
	Health        int `json:"health,omitempty"`
	Speed         int `json:"speed,omitempty"`
	ScanRange     int `json:"scan_range,omitempty"`
	CollectRange  int `json:"collect_range,omitempty"`
	ContainerSize int `json:"container_size,omitempty"`
	AttackPower   int `json:"attack_power,omitempty"`
	AttackRange   int `json:"attack_range,omitempty"`
}

func (m AttributeModifiers) normalized() AttributeModifiers {
	nz := func(v int) int { return max(v, 0) }
	return AttributeModifiers{
		Health:        nz(m.Health),
		Speed:         nz(m.Speed),
		ScanRange:     nz(m.ScanRange),
		CollectRange:  nz(m.CollectRange),
		ContainerSize: nz(m.ContainerSize),
		AttackPower:   nz(m.AttackPower),
		AttackRange:   nz(m.AttackRange),
	}
}

// Cost is the robot base cost plus every modifier times its per-type price.
func (m AttributeModifiers) Cost(c tuning.Costs) Amounts {
	m = m.normalized()
	var out Amounts
	for t := 0; t < ResourceTypeCount; t++ {
		out[t] = c.Robot[t] +
			m.Health*c.PerHealth[t] +
			m.Speed*c.PerSpeed[t] +
			m.ScanRange*c.PerScanRange[t] +
			m.CollectRange*c.PerCollectRange[t] +
			m.ContainerSize*c.PerContainerSize[t] +
			m.AttackPower*c.PerAttackPower[t] +
			m.AttackRange*c.PerAttackRange[t]
	}
	return out
}

// UnitScan is one unit seen by a scan.
type UnitScan struct {
	PlayerID ID      `json:"player_id"`
	UnitID   ID      `json:"unit_id"`
	Heading  float64 `json:"heading"`
	Distance float64 `json:"distance"`
	Health   float64 `json:"health"`
	IsHQ     bool    `json:"is_hq"`
}

// ResourceScan is one resource seen by a scan.
type ResourceScan struct {
	ResourceID ID           `json:"resource_id"`
	Heading    float64      `json:"heading"`
	Distance   float64      `json:"distance"`
	Type       ResourceType `json:"type"`
	Amount     int          `json:"amount"`
}
