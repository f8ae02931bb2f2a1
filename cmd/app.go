package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"notebook/backend"
	"notebook/config"
	"notebook/groq"
	"notebook/highlight"
	"notebook/kv"
	"notebook/query"
	"notebook/sources"
)

// app wires the store, the pipeline service and the query service for one
// command invocation.
type app struct {
	cfg     *config.Config
	db      *sql.DB
	repo    sources.SQLiteRepo
	fetcher sources.FileFetcher
	cache   *sources.Cache
	tracker *sources.Tracker
	svc     *sources.Service
	queries *query.Service
	seg     highlight.Segmenter
	bus     *highlight.Bus
}

func openApp(ctx context.Context, observer func(sources.Snapshot)) (*app, error) {
	cfg := config.FromEnv()
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	db, err := kv.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	var seg highlight.Segmenter = highlight.PunctuationSegmenter{}
	if wide {
		seg = highlight.WideSegmenter{}
	}

	store := kv.NewStore(db)
	a := &app{
		cfg:     cfg,
		db:      db,
		repo:    sources.NewSQLiteRepo(db),
		fetcher: sources.FileFetcher{MaxBytes: max(cfg.MaxAudioBytes, cfg.MaxDocumentBytes)},
		cache:   sources.NewCache(store),
		tracker: sources.NewTracker(store),
		seg:     seg,
		bus:     highlight.NewBus(),
	}
	a.cache.Load(ctx)
	a.tracker.Load(ctx)

	ai := groq.New(cfg)
	ai.Segmenter = seg

	a.svc = sources.NewService(sources.Deps{
		Cache:       a.cache,
		Tracker:     a.tracker,
		Repo:        a.repo,
		Fetcher:     a.fetcher,
		Transcriber: ai,
		Summarizer:  ai,
		Extractor:   sources.PlainTextExtractor{},
		Observer:    observer,
	}, sources.Limits{
		MaxAudioBytes:   cfg.MaxAudioBytes,
		MinSummaryChars: cfg.MinSummaryChars,
	})

	a.queries = query.NewService(backend.New(cfg), ai, ai, query.Options{
		Segmenter:        seg,
		ChatContextLimit: cfg.ChatContextLimit,
	})
	return a, nil
}

func (a *app) close() {
	a.svc.Wait()
	a.db.Close()
}
