package dataset

import "fmt"

// BoundError reports a field value outside its declared range.
type BoundError struct {
	Dataset string
	Record  int
	Bound   Bound
	Value   float64
}

func (e *BoundError) Error() string {
	return fmt.Sprintf("%s record %d: %s = %v outside bound", e.Dataset, e.Record, e.Bound.Field, e.Value)
}

// ConfigError reports an incomplete baseline table.
type ConfigError struct {
	Dataset string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s config: %s", e.Dataset, e.Reason)
}
