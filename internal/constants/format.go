package constants

// Format is an output format for generated datasets.
type Format string

const (
	// FormatCSV writes one delimited table per dataset. Always enabled.
	FormatCSV Format = "csv"

	// FormatXLSX writes a single workbook with one sheet per dataset.
	FormatXLSX Format = "xlsx"

	// FormatArrow writes one Arrow IPC file per dataset.
	FormatArrow Format = "arrow"
)

// Valid returns true if the format is a recognized value.
func (f Format) Valid() bool {
	switch f {
	case FormatCSV, FormatXLSX, FormatArrow:
		return true
	}
	return false
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}
