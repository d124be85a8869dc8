package dataset

import (
	"math"

	"github.com/nvandessel/defense-datagen/internal/constants"
)

// ClampMin returns v, or lo if v is below it.
func ClampMin(v, lo float64) float64 {
	return math.Max(lo, v)
}

// ClampMax returns v, or hi if v is above it.
func ClampMax(v, hi float64) float64 {
	return math.Min(hi, v)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return ClampMax(ClampMin(v, lo), hi)
}

// Bound describes the range a clamped field must stay within.
type Bound struct {
	Field  string
	Min    float64
	Max    float64
	HasMin bool
	HasMax bool
}

// Contains reports whether v satisfies the bound.
func (b Bound) Contains(v float64) bool {
	if b.HasMin && v < b.Min {
		return false
	}
	if b.HasMax && v > b.Max {
		return false
	}
	return true
}

func atLeast(field string, lo float64) Bound {
	return Bound{Field: field, Min: lo, HasMin: true}
}

func between(field string, lo, hi float64) Bound {
	return Bound{Field: field, Min: lo, Max: hi, HasMin: true, HasMax: true}
}

// Bounds maps each dataset name to its clamped or range-sampled fields.
// Uniform draws are listed with their sampling range.
var Bounds = map[string][]Bound{
	constants.PerformanceComparison: {
		atLeast("FPR_Percent", 0),
		atLeast("MTTD_Seconds", 1),
		atLeast("MTTR_Seconds", 5),
		between("CSR_Percent", 0, 100),
	},
	constants.ScenarioPerformance: {
		between("Response_Time", 10, 120),
		between("Success_Rate", 0, 100),
	},
	constants.CoordinationMetrics: nil,
	constants.ScalabilityData: {
		between("CPU_Usage_Percent", 20, 90),
		between("Throughput_Events_Per_Second", 1000, 10000),
	},
	constants.AdversarialRobustness: {
		between("Robustness_Score", 0.6, 1.0),
		between("Adaptation_Time_Minutes", 1, 30),
		between("Attack_Success_Rate", 0.1, 0.8),
	},
	constants.ComplianceData: nil,
}

// CheckBounds returns an error naming the first record whose field falls outside its bound.
func CheckBounds(d Dataset) error {
	for _, b := range Bounds[d.Name] {
		for i, r := range d.Records {
			v, ok := r.Float(b.Field)
			if !ok {
				continue
			}
			if !b.Contains(v) {
				return &BoundError{Dataset: d.Name, Record: i, Bound: b, Value: v}
			}
		}
	}
	return nil
}
