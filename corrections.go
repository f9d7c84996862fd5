package main

import "fmt"

const PolicyNeighborAverage = "neighbor_average"

// Correction replaces one implausible measurement. Corrections are never
// applied unless configured.
type Correction struct {
	Variant Variant `yaml:"variant" validate:"required,oneof=flat normalized"`
	Query   string  `yaml:"query" validate:"required"`
	Dataset string  `yaml:"dataset" validate:"required"`
	Policy  string  `yaml:"policy" validate:"required,oneof=neighbor_average"`
}

func (c Correction) String() string {
	return fmt.Sprintf("%v %v/%v (%v)", c.Variant, c.Dataset, c.Query, c.Policy)
}

// ApplyCorrections rewrites snapshot in place. keys lists the dataset keys in
// ascending size order and defines what a neighbor is. Corrections that cannot
// be applied are skipped with a warning.
func ApplyCorrections(variant Variant, snapshot Snapshot, keys []string, corrections []Correction) {
	for _, correction := range corrections {
		if correction.Variant != variant {
			continue
		}
		switch correction.Policy {
		case PolicyNeighborAverage:
			applyNeighborAverage(snapshot, keys, correction)
		default:
			Logger.Warnf("skip correction %v: unknown policy", correction)
		}
	}
}

func applyNeighborAverage(snapshot Snapshot, keys []string, correction Correction) {
	position := -1
	for i, key := range keys {
		if key == correction.Dataset {
			position = i
		}
	}
	if position <= 0 || position >= len(keys)-1 {
		Logger.Warnf("skip correction %v: dataset has no neighbors on both sides", correction)
		return
	}
	current, ok := snapshot[correction.Dataset][correction.Query]
	if !ok {
		Logger.Warnf("skip correction %v: no measurement to correct", correction)
		return
	}
	before, okBefore := snapshot[keys[position-1]][correction.Query]
	after, okAfter := snapshot[keys[position+1]][correction.Query]
	if !okBefore || !okAfter || before.Failed() || after.Failed() {
		Logger.Warnf("skip correction %v: neighbor measurements are missing or failed", correction)
		return
	}

	corrected := Elapsed((before.Seconds + after.Seconds) / 2)
	snapshot[correction.Dataset][correction.Query] = corrected
	Logger.Warnf("corrected %v: %v -> %v", correction, current, corrected)
}
