// internal/core/domain/conservation.go
package domain

// UnitCensus counts units per battery kind across every pool that can hold
// them. Used to check that operations only relocate units: for any key,
// central + stores + in-flight shipment reservations stays constant except
// for purchases (which add) and sales (which remove permanently).
type UnitCensus map[StockKey]int

// TallyUnits sums stock lines and the reservations of non-terminal
// shipments into a census. Lines of terminal shipments are excluded: a
// completed shipment's units already live in a store pool, a cancelled
// one's are back in central.
func TallyUnits(lines []StockLine, shipments []Shipment) UnitCensus {
	census := make(UnitCensus)
	for i := range lines {
		key := StockKey{Brand: lines[i].Brand, Rating: lines[i].Rating}
		census[key] += lines[i].Quantity
	}
	for i := range shipments {
		if shipments[i].Status.Terminal() {
			continue
		}
		for j := range shipments[i].Lines {
			l := &shipments[i].Lines[j]
			census[StockKey{Brand: l.Brand, Rating: l.Rating}] += l.Quantity
		}
	}
	return census
}

// Equal reports whether two censuses agree on every key, treating absent
// keys as zero.
func (c UnitCensus) Equal(other UnitCensus) bool {
	for key, n := range c {
		if other[key] != n {
			return false
		}
	}
	for key, n := range other {
		if c[key] != n {
			return false
		}
	}
	return true
}
