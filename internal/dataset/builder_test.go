package dataset

import (
	"errors"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/nvandessel/defense-datagen/internal/constants"
	"github.com/nvandessel/defense-datagen/internal/randsrc"
)

var testRef = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func buildDefaults(t *testing.T, seed uint64) []Dataset {
	t.Helper()
	datasets, err := BuildAll(Defaults(Options{ReferenceTime: testRef}), randsrc.New(seed))
	if err != nil {
		t.Fatalf("BuildAll failed: %v", err)
	}
	return datasets
}

func TestDefaultCounts(t *testing.T) {
	want := map[string]int{
		constants.PerformanceComparison: 600,
		constants.ScenarioPerformance:   1500,
		constants.CoordinationMetrics:   120,
		constants.ScalabilityData:       360,
		constants.AdversarialRobustness: 300,
		constants.ComplianceData:        240,
	}

	builders := Defaults(Options{ReferenceTime: testRef})
	if len(builders) != constants.TotalDatasets {
		t.Fatalf("Defaults returned %d builders, want %d", len(builders), constants.TotalDatasets)
	}

	src := randsrc.New(constants.DefaultSeed)
	total := 0
	for i, b := range builders {
		if b.Name() != constants.DatasetNames[i] {
			t.Errorf("builder %d name = %q, want %q", i, b.Name(), constants.DatasetNames[i])
		}
		if b.Expected() != want[b.Name()] {
			t.Errorf("%s Expected() = %d, want %d", b.Name(), b.Expected(), want[b.Name()])
		}
		ds := b.Build(src)
		if ds.Len() != b.Expected() {
			t.Errorf("%s built %d records, Expected() = %d", b.Name(), ds.Len(), b.Expected())
		}
		total += ds.Len()
	}

	if total != 3120 {
		t.Errorf("total records = %d, want 3120", total)
	}
}

func TestDefaultColumns(t *testing.T) {
	for _, ds := range buildDefaults(t, constants.DefaultSeed) {
		t.Run(ds.Name, func(t *testing.T) {
			if got := ds.Columns(); !slices.Equal(got, Columns[ds.Name]) {
				t.Errorf("Columns() = %v, want %v", got, Columns[ds.Name])
			}
			if err := ds.CheckShape(); err != nil {
				t.Errorf("CheckShape() = %v", err)
			}
		})
	}

	want := []string{"Method", "Trial", "TDR_Percent", "FPR_Percent", "MTTD_Seconds", "MTTR_Seconds", "CSR_Percent"}
	if !slices.Equal(Columns[constants.PerformanceComparison], want) {
		t.Errorf("performance columns = %v, want %v", Columns[constants.PerformanceComparison], want)
	}
}

func TestDefaultBounds(t *testing.T) {
	// Several seeds to exercise the clamps on the tails.
	for _, seed := range []uint64{1, 42, 1337} {
		for _, ds := range buildDefaults(t, seed) {
			if err := CheckBounds(ds); err != nil {
				t.Errorf("seed %d: %v", seed, err)
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	a := buildDefaults(t, constants.DefaultSeed)
	b := buildDefaults(t, constants.DefaultSeed)
	if !reflect.DeepEqual(a, b) {
		t.Error("two builds with the same seed differ")
	}

	c := buildDefaults(t, constants.DefaultSeed+1)
	if reflect.DeepEqual(a, c) {
		t.Error("builds with different seeds are identical")
	}
}

func TestTrialOrdering(t *testing.T) {
	ds := buildDefaults(t, constants.DefaultSeed)[1] // scenario_performance

	first := ds.Records[0]
	if v, _ := first.Get("Scenario"); v != "APT" {
		t.Errorf("first Scenario = %v, want APT", v)
	}
	if v, _ := first.Get("Method"); v != "Rule_Based" {
		t.Errorf("first Method = %v, want Rule_Based", v)
	}
	if v, _ := first.Get("Trial"); v != 1 {
		t.Errorf("first Trial = %v, want 1", v)
	}

	// Trial 50 of Rule_Based is followed by trial 1 of the next method in the same scenario.
	next := ds.Records[50]
	if v, _ := next.Get("Method"); v != "Single_Agent_PPO" {
		t.Errorf("record 50 Method = %v, want Single_Agent_PPO", v)
	}
	if v, _ := next.Get("Scenario"); v != "APT" {
		t.Errorf("record 50 Scenario = %v, want APT", v)
	}

	last := ds.Records[ds.Len()-1]
	if v, _ := last.Get("Scenario"); v != "Multi_Vector" {
		t.Errorf("last Scenario = %v, want Multi_Vector", v)
	}
	if v, _ := last.Get("Trial"); v != 50 {
		t.Errorf("last Trial = %v, want 50", v)
	}
}

func TestSubstitutedTable(t *testing.T) {
	p := &Performance{
		Methods:   []string{"A", "B"},
		Baselines: map[string]PerformanceBaseline{"A": {TDR: 50}, "B": {TDR: 60, CSR: 99.9}},
		Trials:    3,
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	ds := p.Build(randsrc.New(1))
	if ds.Len() != 6 || p.Expected() != 6 {
		t.Fatalf("Len() = %d, Expected() = %d, want 6", ds.Len(), p.Expected())
	}
	// Zero baselines sit on the lower clamps.
	for _, r := range ds.Records[:3] {
		if v, _ := r.Float("MTTD_Seconds"); v < 1 {
			t.Errorf("MTTD_Seconds = %v, want >= 1", v)
		}
		if v, _ := r.Float("MTTR_Seconds"); v < 5 {
			t.Errorf("MTTR_Seconds = %v, want >= 5", v)
		}
	}
	if err := CheckBounds(ds); err != nil {
		t.Error(err)
	}
}

func TestZeroTrials(t *testing.T) {
	s := DefaultScenario()
	s.Trials = 0
	ds := s.Build(randsrc.New(1))
	if ds.Len() != 0 || s.Expected() != 0 {
		t.Errorf("Len() = %d, Expected() = %d, want 0", ds.Len(), s.Expected())
	}
	if ds.Columns() != nil {
		t.Errorf("Columns() = %v, want nil", ds.Columns())
	}
}

func TestValidate(t *testing.T) {
	missing := DefaultPerformance()
	delete(missing.Baselines, "H_MAPPO_Ours")

	short := DefaultScenario()
	short.Baselines["APT_only"] = []float64{1}
	short.Methods = append(short.Methods, "APT_only")

	noSizes := DefaultCoordination()
	noSizes.NetworkSizes = nil

	negative := DefaultAdversarial()
	negative.Trials = -1

	tests := []struct {
		name string
		b    Builder
	}{
		{"missing method baseline", missing},
		{"series length mismatch", short},
		{"no network sizes", noSizes},
		{"negative trials", negative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.b.Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if _, err := BuildAll([]Builder{tt.b}, randsrc.New(1)); err == nil {
				t.Error("BuildAll accepted an invalid config")
			}
		})
	}
}

func TestComplianceTimestamps(t *testing.T) {
	c := DefaultCompliance()
	c.ReferenceTime = testRef
	ds := c.Build(randsrc.New(42))

	oldest := testRef.Add(-MaxTimestampAgeDays * 24 * time.Hour)
	for i, r := range ds.Records {
		v, _ := r.Get("Timestamp")
		ts, err := time.Parse(constants.TimestampSecondsLayout, v.(string))
		if err != nil {
			t.Fatalf("record %d: bad timestamp %q: %v", i, v, err)
		}
		if ts.After(testRef) || ts.Before(oldest) {
			t.Errorf("record %d: timestamp %v outside [%v, %v]", i, ts, oldest, testRef)
		}
		if !ts.Truncate(24 * time.Hour).Add(12 * time.Hour).Equal(ts) {
			t.Errorf("record %d: timestamp %v not a whole-day offset from reference", i, ts)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		b       Builder
		listKey string
		listLen int
	}{
		{DefaultPerformance(), "metrics", 5},
		{DefaultScenario(), "scenarios", 5},
		{DefaultCoordination(), "metrics", 3},
		{DefaultScalability(), "network_sizes", 6},
		{DefaultAdversarial(), "adaptation_levels", 4},
		{DefaultCompliance(), "categories", 4},
	}

	for _, tt := range tests {
		t.Run(tt.b.Name(), func(t *testing.T) {
			d := tt.b.Describe()
			if d.Description == "" {
				t.Error("empty description")
			}
			if d.ListKey != tt.listKey {
				t.Errorf("ListKey = %q, want %q", d.ListKey, tt.listKey)
			}
			n := reflect.ValueOf(d.List).Len()
			if n != tt.listLen {
				t.Errorf("len(List) = %d, want %d", n, tt.listLen)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"whole second", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), "2025-06-01T12:00:00"},
		{"microseconds", time.Date(2025, 6, 1, 12, 0, 0, 123456000, time.UTC), "2025-06-01T12:00:00.123456"},
		{"trailing zero micros", time.Date(2025, 6, 1, 12, 0, 0, 500000000, time.UTC), "2025-06-01T12:00:00.500000"},
		{"sub-microsecond only", time.Date(2025, 6, 1, 12, 0, 0, 999, time.UTC), "2025-06-01T12:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimestamp(tt.in); got != tt.want {
				t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDaysBeforeAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("no tzdata: %v", err)
	}
	// DST began 2025-03-09; ten exact days back from noon lands at 11:00 local.
	ref := time.Date(2025, 3, 15, 12, 0, 0, 0, loc)
	got := daysBefore(ref, 10)
	if ref.Sub(got) != 240*time.Hour {
		t.Errorf("elapsed = %v, want 240h", ref.Sub(got))
	}
	if got.Hour() != 11 {
		t.Errorf("hour = %d, want 11", got.Hour())
	}
}
