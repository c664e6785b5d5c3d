// Package exporter writes analysis artifacts to disk.
//
// This package contains two main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, UTF-8 BOM for Excel compatibility, and export of the encoded
// feature table.
//
// ReportWriter: Renders the attrition report workbook with the employee
// display table, the risk ranking and the top attrition drivers.
//
// Example usage:
//
//	writer := exporter.NewReportWriter("output", logger)
//	path, err := writer.Write(ctx, &exporter.Report{
//		Profiles: result.Profiles,
//		Ranking:  ranking,
//		Drivers:  global.Features,
//		Base:     global.Base,
//	})
package exporter
