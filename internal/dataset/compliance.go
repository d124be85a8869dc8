package dataset

import (
	"time"

	"github.com/nvandessel/defense-datagen/internal/constants"
	"github.com/nvandessel/defense-datagen/internal/randsrc"
)

// MaxTimestampAgeDays bounds how far before the reference time a compliance sample may be stamped.
const MaxTimestampAgeDays = 30

// Compliance builds governance compliance scores.
// Baselines maps a method to one score per entry in Categories.
type Compliance struct {
	Methods    []string
	Categories []string
	Baselines  map[string][]float64
	Trials     int

	// ReferenceTime anchors the Timestamp column. Zero means time.Now at build time.
	ReferenceTime time.Time
}

// DefaultCompliance returns three methods by four categories at 20 trials each.
func DefaultCompliance() *Compliance {
	return &Compliance{
		Methods:    []string{"Standard_MAPPO", "TFP_Baseline", "H_MAPPO_Ours"},
		Categories: []string{"Policy_Compliance", "Audit_Completeness", "Human_Escalation_Rate", "Response_Time_Compliance"},
		Baselines: map[string][]float64{
			"Standard_MAPPO": {94.2, 96.8, 18.7, 89.3},
			"TFP_Baseline":   {95.8, 97.2, 15.4, 91.7},
			"H_MAPPO_Ours":   {98.7, 99.2, 12.3, 96.8},
		},
		Trials: 20,
	}
}

func (c *Compliance) Name() string { return constants.ComplianceData }

func (c *Compliance) Expected() int { return len(c.Methods) * len(c.Categories) * c.Trials }

func (c *Compliance) Validate() error {
	if err := checkSeries(c.Name(), c.Methods, c.Baselines, len(c.Categories)); err != nil {
		return err
	}
	return checkTrials(c.Name(), c.Trials)
}

func (c *Compliance) Describe() Descriptor {
	return Descriptor{
		Description: "Governance compliance metrics (Figure 2)",
		ListKey:     "categories",
		List:        append([]string(nil), c.Categories...),
	}
}

// Build stamps each sample a whole number of days (0 to 30 inclusive) before the reference time.
func (c *Compliance) Build(src *randsrc.Source) Dataset {
	ref := c.ReferenceTime
	if ref.IsZero() {
		ref = time.Now()
	}

	records := make([]Record, 0, c.Expected())
	for _, method := range c.Methods {
		scores := c.Baselines[method]
		for i, category := range c.Categories {
			for trial := 1; trial <= c.Trials; trial++ {
				score := scores[i] + src.Gauss(0, 1.0)
				age := src.IntN(MaxTimestampAgeDays + 1)
				records = append(records, Record{
					{"Method", method},
					{"Compliance_Category", category},
					{"Trial", trial},
					{"Score_Percent", score},
					{"Timestamp", FormatTimestamp(daysBefore(ref, age))},
				})
			}
		}
	}
	return Dataset{Name: c.Name(), Records: records}
}
