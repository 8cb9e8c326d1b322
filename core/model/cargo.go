package model

import "fmt"

// CargoKind tags the Cargo variant.
type CargoKind int

const (
	CargoEmpty CargoKind = iota
	CargoSingle
	CargoPaired
)

func (k CargoKind) String() string {
	switch k {
	case CargoEmpty:
		return "empty"
	case CargoSingle:
		return "single"
	case CargoPaired:
		return "paired"
	default:
		return "unknown"
	}
}

// Cargo is what a trip carries: nothing, one shipment, or two half-size
// shipments combined into a full load. Use the constructors.
type Cargo struct {
	Kind      CargoKind `json:"kind"`
	Shipments []int     `json:"shipments,omitempty"`
}

// EmptyCargo is the cargo of a rebalancing trip.
func EmptyCargo() Cargo { return Cargo{Kind: CargoEmpty} }

// SingleCargo carries one shipment.
func SingleCargo(ref int) Cargo { return Cargo{Kind: CargoSingle, Shipments: []int{ref}} }

// PairedCargo carries two half-size shipments.
func PairedCargo(a, b int) Cargo { return Cargo{Kind: CargoPaired, Shipments: []int{a, b}} }

// Refs returns the carried shipment indices.
func (c Cargo) Refs() []int { return c.Shipments }

// Carries reports whether ref is part of the cargo.
func (c Cargo) Carries(ref int) bool {
	for _, r := range c.Shipments {
		if r == ref {
			return true
		}
	}
	return false
}

func (c Cargo) String() string {
	switch c.Kind {
	case CargoSingle:
		return fmt.Sprintf("single(%d)", c.Shipments[0])
	case CargoPaired:
		return fmt.Sprintf("paired(%d,%d)", c.Shipments[0], c.Shipments[1])
	default:
		return "empty"
	}
}

// MarshalText encodes the kind by name.
func (k CargoKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes "empty", "single" or "paired".
func (k *CargoKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "empty":
		*k = CargoEmpty
	case "single":
		*k = CargoSingle
	case "paired":
		*k = CargoPaired
	default:
		return fmt.Errorf("unknown cargo kind %q", string(b))
	}
	return nil
}
