// Package exporter renders dashboard views as files.
//
// WorkbookWriter produces an XLSX workbook with a Summary sheet and one sheet
// per view ("Daily Orders", "Best Performing", "Worst Performing" and
// "Best Recommendation"), each with a native Excel chart. CSVWriter writes a
// single view, or every view into a directory, optionally prefixed with a
// UTF-8 BOM for Excel.
//
// Example usage:
//
//	w := exporter.NewWorkbookWriter(logger)
//	err := w.Write(file, dashboard)
//
//	c := exporter.NewCSVWriter(true, logger)
//	paths, err := c.WriteDir("reports", "dashboard", dashboard)
package exporter
