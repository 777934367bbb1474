package duckdb

import "github.com/tinytelemetry/carbondash/internal/model"

// Type aliases re-export the model interfaces the Store satisfies.
type SchemaQuerier = model.SchemaQuerier
type DatasetWriter = model.DatasetWriter

var (
	_ SchemaQuerier = (*Store)(nil)
	_ DatasetWriter = (*Store)(nil)
)
