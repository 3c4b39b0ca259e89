// Package main hosts the bulletin-crawler entrypoint.
//
// Architecture overview:
//   - Acquisition: `acquire [start] [end]` walks the date range in ascending order. For each date the candidate
//     generator yields ten addresses (five naming templates, each with and without the year), and the Colly-based
//     fetcher tries them in order under a per-host token bucket. The first page that answers 200 is upserted into
//     the report store keyed by date; the rest are not tried. A jittered pause separates consecutive dates.
//   - Extraction: `extract` lists every stored report, skips dates that already have text, and runs the goquery
//     structural pass, the leading-metadata stripper and the regex cleaner. Results, including empty ones, are
//     written once per date to the text store and optionally exported as text files plus a manifest.
//   - `run` chains both; `candidates [date]` prints the addresses for a date without touching the network.
//
// Operational notes:
//   - Failures are per item. A date whose candidates all fail, or a document that cannot be parsed, is logged and
//     counted; the process still exits 0. A store that cannot be opened at startup exits non-zero before any fetch.
//   - Cancellation (SIGINT/SIGTERM) is honored between dates during acquisition and between documents during
//     extraction. Each fetch is bounded by http.timeout_seconds.
//   - Two overlapping acquisition runs on the same store race per date; the later write wins.
//
// Quick checklist:
//   - Configure via YAML (--config) or env vars: BULLETIN_STORE_DRIVER (postgres|sqlite|memory),
//     BULLETIN_STORE_DSN, BULLETIN_HTTP_TIMEOUT_SECONDS, BULLETIN_EXPORT_DIR, BULLETIN_EXTRACT_WORKERS,
//     BULLETIN_METRICS_TEXTFILE. Flags --dsn, --database, --input-collection and --output-collection win over both.
//   - Run locally: go run ./cmd/bulletin-crawler --driver sqlite --dsn bulletins.db run 2025-03-01 2025-03-07
package main
