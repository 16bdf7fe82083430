// Package core provides the ingestion pipeline for job feeds.
//
// This package turns raw CSV text into normalized [Job] values, independent
// of any UI or transport layer. It can be used by web handlers, CLI tools,
// or tests without modification.
//
// # Pipeline
//
//  1. [SanitizeReader] strips a byte order mark and repairs invalid UTF-8
//  2. [Parser.Parse] tokenizes the header row and maps each header to a
//     canonical field through [NormalizeHeader]
//  3. Each data row is handed to [RowValidator.ValidateRow], which applies the
//     field normalizers ([NormalizeJobType], [ParseSalary], [ParseURL], ...)
//     and the row rules
//  4. Accepted rows become Jobs; rejected rows become "Row N: message"
//     entries in [ParsedCSVResult.Errors]
//
// A bad row never aborts the batch. Only input the tokenizer cannot read at
// all yields a [*ParseError].
//
// # Leniency
//
// Malformed optional values are not errors. An unknown job type becomes
// Full-time, an unknown level becomes Mid, bad URLs and salaries are dropped
// and unparsable dates read as "posted now".
//
// # Error Handling
//
// Load failures are typed ([*FetchError], [*ParseError]) and row failures are
// [ValidationError]. [MapError] converts any of them to a [UserMessage] with
// a support code.
package core
