package dataset

import (
	"github.com/nvandessel/defense-datagen/internal/constants"
	"github.com/nvandessel/defense-datagen/internal/randsrc"
)

// Scalability builds computational cost per network size.
// Baselines maps a method to one computation time (seconds) per entry in NetworkSizes.
type Scalability struct {
	Methods      []string
	NetworkSizes []int
	Baselines    map[string][]float64
	Trials       int
}

// DefaultScalability returns three methods by six network sizes at 20 trials each.
func DefaultScalability() *Scalability {
	return &Scalability{
		Methods:      []string{"Single_Agent_PPO", "Standard_MAPPO", "H_MAPPO_Ours"},
		NetworkSizes: []int{100, 200, 500, 1000, 2000, 5000},
		Baselines: map[string][]float64{
			"Single_Agent_PPO": {2.3, 9.2, 58.4, 234.7, 941.2, 5847.3},
			"Standard_MAPPO":   {3.1, 8.7, 42.1, 189.3, 756.8, 4523.2},
			"H_MAPPO_Ours":     {2.8, 6.4, 24.7, 78.2, 198.7, 743.1},
		},
		Trials: 20,
	}
}

func (s *Scalability) Name() string { return constants.ScalabilityData }

func (s *Scalability) Expected() int { return len(s.Methods) * len(s.NetworkSizes) * s.Trials }

func (s *Scalability) Validate() error {
	if err := checkSeries(s.Name(), s.Methods, s.Baselines, len(s.NetworkSizes)); err != nil {
		return err
	}
	return checkTrials(s.Name(), s.Trials)
}

func (s *Scalability) Describe() Descriptor {
	return Descriptor{
		Description: "Computational efficiency across network sizes (Figure 3)",
		ListKey:     "network_sizes",
		List:        append([]int(nil), s.NetworkSizes...),
	}
}

// Build draws time noise proportional to the baseline (10%) and memory
// proportional to network size.
func (s *Scalability) Build(src *randsrc.Source) Dataset {
	records := make([]Record, 0, s.Expected())
	for _, method := range s.Methods {
		times := s.Baselines[method]
		for i, size := range s.NetworkSizes {
			baseTime := times[i]
			n := float64(size)
			for trial := 1; trial <= s.Trials; trial++ {
				records = append(records, Record{
					{"Method", method},
					{"Network_Size", size},
					{"Trial", trial},
					{"Computational_Time_Seconds", baseTime + src.Gauss(0, baseTime*0.1)},
					{"Memory_Usage_GB", n*0.005 + src.Gauss(0, n*0.001)},
					{"CPU_Usage_Percent", src.Uniform(20, 90)},
					{"Throughput_Events_Per_Second", src.Uniform(1000, 10000)},
				})
			}
		}
	}
	return Dataset{Name: s.Name(), Records: records}
}
