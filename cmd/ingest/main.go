// cmd/ingest/main.go — runs the pipeline once for a local CSV file, without
// Redis or object storage. Useful for backfills and local debugging.
// Usage: go run ./cmd/ingest path/to/pricelist.csv
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pricefeed/internal/config"
	"pricefeed/internal/etl"
	"pricefeed/internal/infra"
	"pricefeed/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: ingest <file.csv>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read file")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx := context.Background()

	if err := infra.NewAwakener(db, cfg.DBWakeAttempts, time.Second).Ensure(ctx); err != nil {
		log.Fatal().Err(err).Msg("store unreachable")
	}

	rs, err := etl.ParseCSV(data)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse csv")
	}

	synonyms, err := repository.NewReferenceRepository(db).ProviderSynonyms(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load provider synonyms")
	}

	records := etl.Normalize(rs, time.Now(), synonyms)
	if len(records) == 0 {
		log.Fatal().Msg("no data rows in input")
	}

	batch := uuid.New()
	staging := repository.NewStagingRepository(db)
	if err := staging.InsertProviders(ctx, etl.StageProviders(records, batch)); err != nil {
		log.Fatal().Err(err).Msg("failed to stage providers")
	}
	if err := staging.InsertProducts(ctx, etl.StageProducts(records, batch)); err != nil {
		log.Fatal().Err(err).Msg("failed to stage products")
	}
	if err := staging.InsertProviderProducts(ctx, etl.StageProviderProducts(records, batch)); err != nil {
		log.Fatal().Err(err).Msg("failed to stage provider products")
	}

	if err := repository.NewMergeRepository(db).MergeBatch(ctx, batch); err != nil {
		log.Fatal().Err(err).Msg("merge failed")
	}

	fmt.Printf("merged %d rows from %s (batch %s)\n", len(records), filepath.Base(path), batch)
}
