// Package core provides the tabular cleaning and conversion pipeline.
//
// Each uploaded file goes through one synchronous pass:
//
//  1. Load: detect the format from the extension and parse CSV or XLSX into a [Table]
//  2. Clean: optionally drop duplicate rows, then optionally fill missing numbers
//     with the column mean
//  3. Project: keep the selected columns in the selected order
//  4. Visualize: optionally build a [BarChart] of the first two numeric columns
//  5. Export: on demand, serialize to CSV or Excel bytes
//
// Stages are pure functions over [Table]. [Process] composes them for one file
// and [Service.ProcessBatch] runs every file of an upload in order.
//
// # Error Handling
//
// Failures are typed: [FormatError], [ParseError], [SerializationError].
// They are caught per file, so one bad file never stops a batch. [MapError]
// turns any of them into a user-facing message with a support code:
//
//   - FILE001-FILE006: upload and parsing problems
//   - XLS001: unreadable workbook
//   - EXP001: export failed
//   - COL001: unknown column in a projection
//   - UPL002-UPL005: busy, cancelled or timed out
package core
