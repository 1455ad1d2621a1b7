// Package writers turns generated data into serialized outputs.
//
// Design:
//   • TSV cells are pre-formatted strings; writers only sanitize and join.
//   • Run summaries go through a format registry (text, json) and use the
//     pkg/api (v1) wire types for JSON.
//   • Generation stays output-agnostic; the app layer picks the format.
package writers
