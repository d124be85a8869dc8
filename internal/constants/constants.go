// Package constants provides named constants used throughout the defense-datagen codebase.
// This centralizes magic numbers and fixed file names.
package constants

// Generation constants
const (
	// DefaultSeed is the fixed seed for the shared random stream.
	// Every run with this seed and the same generator algorithm produces identical tables.
	DefaultSeed = 42

	// TotalDatasets is the number of datasets declared in the manifest.
	TotalDatasets = 6

	// PaperReference is recorded in the manifest's generation info block.
	PaperReference = "Agentic AI for e-Governance: A Multi-Agent Reinforcement Learning Framework for Autonomous Cyber Defense"
)

// Dataset names, in generation order.
const (
	PerformanceComparison = "performance_comparison"
	ScenarioPerformance   = "scenario_performance"
	CoordinationMetrics   = "coordination_metrics"
	ScalabilityData       = "scalability_data"
	AdversarialRobustness = "adversarial_robustness"
	ComplianceData        = "compliance_data"
)

// DatasetNames lists every dataset in the order the pipeline builds them.
var DatasetNames = []string{
	PerformanceComparison,
	ScenarioPerformance,
	CoordinationMetrics,
	ScalabilityData,
	AdversarialRobustness,
	ComplianceData,
}

// Output file names
const (
	// ManifestFile is the name of the JSON manifest written after all tables.
	ManifestFile = "data_summary.json"

	// WorkbookFile is the name of the optional XLSX workbook.
	WorkbookFile = "datasets.xlsx"

	// EventsFile is the JSONL run-event log written at debug level and above.
	EventsFile = "events.jsonl"

	// CSVExt and ArrowExt are appended to a dataset name to form its file name.
	CSVExt   = ".csv"
	ArrowExt = ".arrow"
)

// Formatting constants
const (
	// TimestampLayout matches an ISO-8601 local timestamp with microseconds.
	TimestampLayout = "2006-01-02T15:04:05.000000"

	// TimestampSecondsLayout is TimestampLayout without the fraction, used
	// when the microseconds are zero. Parsing with it also accepts a fraction.
	TimestampSecondsLayout = "2006-01-02T15:04:05"

	// RuleWidth is the width of the "=" separator in progress output.
	RuleWidth = 50
)
