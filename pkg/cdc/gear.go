package cdc

// gearTable is the 256-entry randomized lookup table driving the Gear
// rolling hash used by FastCDC to pick chunk boundaries. Entries are
// generated once at package init from a fixed seed via SplitMix64 so
// the table is deterministic across builds and platforms without
// hand-maintaining 256 literal constants.
var gearTable [256]uint64

func init() {
	var state uint64 = 0x9e3779b97f4a7c15
	for i := range gearTable {
		state += 0x9e3779b97f4a7c15
		z := state
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		z = z ^ (z >> 31)
		gearTable[i] = z
	}
}
