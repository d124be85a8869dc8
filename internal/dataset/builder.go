package dataset

import (
	"fmt"
	"time"

	"github.com/nvandessel/defense-datagen/internal/randsrc"
)

// Descriptor is the static manifest metadata for a dataset.
// ListKey names the categorical list ("metrics", "scenarios", ...); List is a []string or []int.
type Descriptor struct {
	Description string
	ListKey     string
	List        any
}

// Builder produces one dataset from a shared random stream.
type Builder interface {
	// Name returns the dataset name, which is also the base of its file names.
	Name() string

	// Expected returns the declared record count: label-set sizes times trials.
	Expected() int

	// Validate checks that the baseline table covers every label.
	Validate() error

	// Describe returns the manifest metadata.
	Describe() Descriptor

	// Build draws every record in label then trial order.
	Build(src *randsrc.Source) Dataset
}

// Options tunes the default builders.
type Options struct {
	// ReferenceTime anchors compliance timestamps. Zero means time.Now at build time.
	ReferenceTime time.Time
}

// Defaults returns the six builders with their baseline tables, in generation order.
func Defaults(opts Options) []Builder {
	compliance := DefaultCompliance()
	compliance.ReferenceTime = opts.ReferenceTime

	return []Builder{
		DefaultPerformance(),
		DefaultScenario(),
		DefaultCoordination(),
		DefaultScalability(),
		DefaultAdversarial(),
		compliance,
	}
}

// BuildAll validates and builds each builder in order against src.
// The produced record count must equal Expected.
func BuildAll(builders []Builder, src *randsrc.Source) ([]Dataset, error) {
	out := make([]Dataset, 0, len(builders))
	for _, b := range builders {
		if err := b.Validate(); err != nil {
			return nil, err
		}
		ds := b.Build(src)
		if ds.Len() != b.Expected() {
			return nil, fmt.Errorf("%s: built %d records, expected %d", b.Name(), ds.Len(), b.Expected())
		}
		out = append(out, ds)
	}
	return out, nil
}

// checkSeries verifies that every label in keys has a series of length n.
func checkSeries(name string, keys []string, series map[string][]float64, n int) error {
	for _, k := range keys {
		s, ok := series[k]
		if !ok {
			return &ConfigError{Dataset: name, Reason: fmt.Sprintf("no baseline for %q", k)}
		}
		if len(s) != n {
			return &ConfigError{Dataset: name, Reason: fmt.Sprintf("baseline for %q has %d values, want %d", k, len(s), n)}
		}
	}
	return nil
}

func checkTrials(name string, trials int) error {
	if trials < 0 {
		return &ConfigError{Dataset: name, Reason: fmt.Sprintf("negative trial count %d", trials)}
	}
	return nil
}
