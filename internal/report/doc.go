// Package report renders classification results.
//
// Three writers share the Writer interface:
//   - TextWriter: colored terminal output, one verdict per URL
//   - JSONWriter: a single JSON document with a summary and every result
//   - MarkdownWriter: a shareable document with tables and a mermaid chart
package report
