// Package dispatch runs the shuttle simulation: one step per shipment
// arriving at its origin node, deciding which pending shipments leave, which
// movers carry them, which half loads travel together and when empty movers
// are sent across to where demand builds up.
//
// A Simulation owns every piece of state of one run. Independent runs share
// nothing and may execute in parallel.
package dispatch
