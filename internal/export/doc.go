// Package export writes datasets to disk: delimited tables, an XLSX workbook,
// and Arrow IPC files.
//
// Every writer takes its column order from the dataset's first record and
// rejects records whose fields differ. Empty datasets are skipped rather
// than written as header-only or invalid files.
package export
