package model

import (
	"fmt"
	"strings"
)

// Node identifies one of the two terminals joined by the corridor.
type Node int

const (
	NodeA Node = iota
	NodeB
)

// Nodes lists both terminals in a stable order.
var Nodes = [2]Node{NodeA, NodeB}

// Opposite returns the other end of the corridor.
func (n Node) Opposite() Node {
	if n == NodeA {
		return NodeB
	}
	return NodeA
}

func (n Node) String() string {
	switch n {
	case NodeA:
		return "A"
	case NodeB:
		return "B"
	default:
		return "unknown"
	}
}

// Direction is the travel direction of a shipment. DirectionNone marks
// synthetic padding events that carry no cargo.
type Direction int

const (
	DirectionNone Direction = iota
	ToNodeA
	ToNodeB
)

// Directions lists the two real directions in a stable order.
var Directions = [2]Direction{ToNodeA, ToNodeB}

// Toward returns the direction whose destination is n.
func Toward(n Node) Direction {
	if n == NodeA {
		return ToNodeA
	}
	return ToNodeB
}

// Destination returns the node a shipment in this direction is delivered to.
func (d Direction) Destination() Node {
	if d == ToNodeA {
		return NodeA
	}
	return NodeB
}

// Origin returns the node a shipment in this direction departs from.
func (d Direction) Origin() Node { return d.Destination().Opposite() }

// Real reports whether the direction carries cargo.
func (d Direction) Real() bool { return d == ToNodeA || d == ToNodeB }

func (d Direction) String() string {
	switch d {
	case ToNodeA:
		return "to_a"
	case ToNodeB:
		return "to_b"
	default:
		return "none"
	}
}

// ParseDirection accepts "to_a", "a", "to_b", "b" and "none" in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "to_a", "a", "toa", "node_a":
		return ToNodeA, nil
	case "to_b", "b", "tob", "node_b":
		return ToNodeB, nil
	case "none", "", "padding":
		return DirectionNone, nil
	default:
		return DirectionNone, fmt.Errorf("unknown direction %q", s)
	}
}

// Location is where a vehicle currently is.
type Location int

const (
	LocationNodeA Location = iota
	LocationNodeB
	LocationInTransit
)

// At returns the idle location for node n.
func At(n Node) Location {
	if n == NodeA {
		return LocationNodeA
	}
	return LocationNodeB
}

func (l Location) String() string {
	switch l {
	case LocationNodeA:
		return "A"
	case LocationNodeB:
		return "B"
	case LocationInTransit:
		return "transit"
	default:
		return "unknown"
	}
}

// DirectionCounts holds one count per real direction.
type DirectionCounts struct {
	ToA int `json:"to_a"`
	ToB int `json:"to_b"`
}

// Get returns the count for d. DirectionNone always counts zero.
func (c DirectionCounts) Get(d Direction) int {
	switch d {
	case ToNodeA:
		return c.ToA
	case ToNodeB:
		return c.ToB
	default:
		return 0
	}
}

// Inc adds one to the count for d.
func (c *DirectionCounts) Inc(d Direction) {
	switch d {
	case ToNodeA:
		c.ToA++
	case ToNodeB:
		c.ToB++
	}
}

// MarshalText encodes the node as "A" or "B".
func (n Node) MarshalText() ([]byte, error) { return []byte(n.String()), nil }

// UnmarshalText decodes "A" or "B".
func (n *Node) UnmarshalText(b []byte) error {
	switch strings.ToUpper(strings.TrimSpace(string(b))) {
	case "A":
		*n = NodeA
	case "B":
		*n = NodeB
	default:
		return fmt.Errorf("unknown node %q", string(b))
	}
	return nil
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText decodes a direction with ParseDirection.
func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
