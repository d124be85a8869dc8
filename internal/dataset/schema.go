package dataset

import "github.com/nvandessel/defense-datagen/internal/constants"

// Columns lists each default dataset's header, in field order.
// Readers of finished runs check files against it.
var Columns = map[string][]string{
	constants.PerformanceComparison: {"Method", "Trial", "TDR_Percent", "FPR_Percent", "MTTD_Seconds", "MTTR_Seconds", "CSR_Percent"},
	constants.ScenarioPerformance:   {"Scenario", "Method", "Trial", "Detection_Rate", "Response_Time", "Success_Rate"},
	constants.CoordinationMetrics:   {"Method", "Trial", "Coordination_Efficiency", "Resource_Utilization", "Scalability_Index", "Communication_Overhead", "Network_Size"},
	constants.ScalabilityData:       {"Method", "Network_Size", "Trial", "Computational_Time_Seconds", "Memory_Usage_GB", "CPU_Usage_Percent", "Throughput_Events_Per_Second"},
	constants.AdversarialRobustness: {"Method", "Adaptation_Level", "Trial", "Detection_Rate_Percent", "Robustness_Score", "Adaptation_Time_Minutes", "Attack_Success_Rate"},
	constants.ComplianceData:        {"Method", "Compliance_Category", "Trial", "Score_Percent", "Timestamp"},
}
