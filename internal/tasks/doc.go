// Package tasks runs multi-request operations on top of the services client with real-time progress reporting.
//
// # Thread Export
//
// [ThreadExporter.Export] gathers the whole discussion under a work:
//   - walks [services.Work.Comments] page by page
//   - for each comment, drains [services.Comment.Replies] (no request when the embedded list is complete)
//   - stops early at [ExportOpts.MaxComments]
//
// Requests are strictly sequential; the client's rate limiter paces them.
// A failure returns the partial [models.Thread] together with the error.
//
// # Progress Reporting
//
// Updates use select with default to prevent blocking.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
package tasks
