// Package pipeline orchestrates the batch forecasting run: ingest, clean,
// aggregate, feature engineering, model training, price recommendation and
// the elasticity diagnostic. Stages execute sequentially with bounded
// retries; each stage persists its CSV artifact so a later run (or the
// standalone command-line tools) can resume from disk.
package pipeline
