// Package structures provides the closed set of buildable structures and the
// capability traits that govern deposits, production, scanning, unit
// construction, and space-port travel.
package structures

import (
	"fmt"

	"github.com/talgya/eos/internal/resource"
	"github.com/talgya/eos/internal/world"
)

// ID is a unique identifier for a structure, assigned in creation order.
type ID uint64

// Kind enumerates structure variants.
type Kind uint8

const (
	KindCollector Kind = iota
	KindFactory
	KindSettlement
	KindFuelPump
	KindScanner
	KindSpacePort
)

var kindNames = map[Kind]string{
	KindCollector:  "Collector",
	KindFactory:    "Factory",
	KindSettlement: "Settlement",
	KindFuelPump:   "FuelPump",
	KindScanner:    "Scanner",
	KindSpacePort:  "SpacePort",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind resolves a kind name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// MarshalText lets kinds appear by name in JSON and YAML.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, ok := ParseKind(string(b))
	if !ok {
		return fmt.Errorf("unknown structure kind %q", b)
	}
	*k = parsed
	return nil
}

// Capabilities are orthogonal traits. They are fixed per kind.
type Capabilities struct {
	CollectionPoint bool `json:"collection_point"` // Accepts deposits
	Producer        bool `json:"producer"`         // Yields resources each turn
	Scanner         bool `json:"scanner"`          // Reveals spaces to its owner
}

// CapabilitiesOf returns the traits carried by a kind.
func CapabilitiesOf(k Kind) Capabilities {
	switch k {
	case KindCollector:
		return Capabilities{Producer: true}
	case KindFactory:
		return Capabilities{CollectionPoint: true}
	case KindSettlement:
		return Capabilities{CollectionPoint: true}
	case KindFuelPump:
		return Capabilities{Producer: true}
	case KindScanner:
		return Capabilities{Scanner: true}
	case KindSpacePort:
		return Capabilities{CollectionPoint: true}
	default:
		return Capabilities{}
	}
}

// Structure is a building located on exactly one space. Structures are never
// destroyed.
type Structure struct {
	ID           ID                 `json:"id"`
	Kind         Kind               `json:"kind"`
	Recipe       string             `json:"recipe"`
	Name         string             `json:"name"`
	Space        world.SpaceID      `json:"space_id"`
	Owner        string             `json:"owner,omitempty"` // Empty = system-owned
	Inventory    resource.Inventory `json:"inventory"`
	Capabilities Capabilities       `json:"capabilities"`
	BuiltTurn    uint64             `json:"built_turn"`

	// Factory
	Cooldown int `json:"cooldown,omitempty"`

	// SpacePort
	Network     string `json:"network,omitempty"`
	TravelCost  int    `json:"travel_cost,omitempty"`
	Operational bool   `json:"operational"`
}

// Params carries the recipe-level settings a new structure starts with.
type Params struct {
	Recipe     string
	Network    string
	TravelCost int
}

// New creates a structure of kind k on a space.
func New(id ID, k Kind, space world.SpaceID, owner string, p Params) *Structure {
	s := &Structure{
		ID:           id,
		Kind:         k,
		Recipe:       p.Recipe,
		Name:         displayName(k),
		Space:        space,
		Owner:        owner,
		Inventory:    resource.Inventory{},
		Capabilities: CapabilitiesOf(k),
		Operational:  true,
	}
	if s.Recipe == "" {
		s.Recipe = k.String()
	}
	if k == KindSpacePort {
		s.Network = p.Network
		s.TravelCost = p.TravelCost
	}
	return s
}

func displayName(k Kind) string {
	switch k {
	case KindFuelPump:
		return "Fuel Pump"
	case KindSpacePort:
		return "Space Port"
	default:
		return k.String()
	}
}

// IsCollectionPoint reports whether the structure accepts deposits.
func (s *Structure) IsCollectionPoint() bool {
	return s.Capabilities.CollectionPoint
}

// IsSpacePort reports whether the structure is a space port that can route
// travel. A non-operational port does not route at all.
func (s *Structure) IsSpacePort() bool {
	return s.Kind == KindSpacePort && s.Operational
}
