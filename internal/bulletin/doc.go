// Package bulletin defines the core types and ports shared by the acquisition and extraction pipelines.
//
// Acquisition walks a date range, guesses candidate addresses for each date, and stores the first page
// that fetches successfully as a Report. Extraction later turns every Report into an ExtractedText by
// stripping templated markup and boilerplate. Stores, fetchers, and clocks are injected through the
// interfaces declared here so each stage can run against in-memory fakes.
package bulletin
