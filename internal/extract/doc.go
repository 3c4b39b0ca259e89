// Package extract derives clean narrative text from the templated bulletin markup.
//
// The work happens in three independent passes so each can be tested with literal inputs:
//
//   - Structure parses the markup, drops non-content subtrees, picks the content region and
//     returns its headings and paragraphs in document order.
//   - StripMetadata removes the leading run of byline, dateline and press-tag paragraphs.
//   - Clean removes citation markers, the satellite image credit and the trailing link dump
//     from the joined text.
//
// Derive chains the three passes for one raw document.
package extract
