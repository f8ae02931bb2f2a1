package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrInFlight is returned by Run when a pipeline for the source is already
// running.
var ErrInFlight = errors.New("pipeline already running for source")

// Placeholders rendered in place of an artifact that could not be produced.
const (
	msgDownloadAudio     = "Could not process audio due to download error."
	msgTranscribeAudio   = "Error transcribing audio."
	msgSummaryNoInput    = "Could not generate summary due to transcription failure."
	msgSummaryTooShort   = "Transcript is too short or empty. Cannot generate a summary."
	msgSummaryFailed     = "Error generating summary."
	msgExtractFailed     = "Error extracting document text."
	msgExtractIncomplete = "Document text extraction did not complete."
)

type (
	Limits struct {
		MaxAudioBytes   int64
		MinSummaryChars int
	}

	Deps struct {
		Cache       *Cache
		Tracker     *Tracker
		Repo        Repo
		Fetcher     Fetcher
		Transcriber Transcriber
		Summarizer  Summarizer
		Extractor   Extractor

		// Observer receives UI-visible state for the selected source only.
		// It is called with the service lock held and must not call back
		// into the Service.
		Observer func(Snapshot)
	}

	// Service runs the per-source pipelines: fetch, transcribe and summarize
	// for audio; fetch and extract for documents.
	Service struct {
		d      Deps
		limits Limits

		mu       sync.Mutex
		running  map[string]bool
		gen      map[string]uint64
		pages    map[string]map[int]string
		selected string
		selTok   context.Context
		cancel   context.CancelFunc

		wg *sync.WaitGroup
	}
)

func NewService(d Deps, limits Limits) *Service {
	return &Service{
		d:       d,
		limits:  limits,
		running: make(map[string]bool),
		gen:     make(map[string]uint64),
		pages:   make(map[string]map[int]string),
		wg:      &sync.WaitGroup{},
	}
}

func (s *Service) Wait() {
	s.wg.Wait()
}

// Select makes src the selected source and runs its pipeline in the
// background. Switching to another source never aborts the run: its cache
// writes still land, but nothing more is published for src.
func (s *Service) Select(ctx context.Context, src Source) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.selected = src.ID
	s.selTok, s.cancel = context.WithCancel(ctx)
	runCtx := context.WithoutCancel(s.selTok)
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		stage, err := s.Run(runCtx, src)
		switch {
		case errors.Is(err, ErrInFlight):
			slog.Debug("pipeline already running", "source", src.ID)
		case err != nil:
			slog.Warn("pipeline failed", "source", src.ID, "stage", stage, "err", err)
		}
	}()
}

// Deselect clears the selection; nothing is published until the next Select.
func (s *Service) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.selected, s.selTok, s.cancel = "", nil, nil
}

// Run processes src unless it has been processed already. Collaborator
// failures are recorded as failed artifacts and leave the source unmarked so
// a later Run retries; the returned error describes the failure.
func (s *Service) Run(ctx context.Context, src Source) (Stage, error) {
	if s.cacheHit(src) {
		s.publish(src.ID, StageCacheHit)
		return StageCacheHit, nil
	}

	gen, ok := s.begin(src.ID)
	if !ok {
		return StageIdle, ErrInFlight
	}
	defer s.end(src.ID)

	log := slog.With("source", src.ID, "kind", src.Kind, "run_id", uuid.NewString())
	log.Info("pipeline started")

	var (
		stage Stage
		err   error
	)
	switch src.Kind {
	case KindAudio:
		stage, err = s.runAudio(ctx, src, gen, log)
	case KindDocument:
		stage, err = s.runDocument(ctx, src, gen, log)
	default:
		return StageError, fmt.Errorf("run %s: unknown source kind %q", src.ID, src.Kind)
	}
	if err != nil {
		return stage, fmt.Errorf("run %s: %w", src.ID, err)
	}

	log.Info("pipeline done")
	return stage, nil
}

func (s *Service) runAudio(ctx context.Context, src Source, gen uint64, log *slog.Logger) (Stage, error) {
	entry, _ := s.d.Cache.Get(src.ID)

	transcript := ""
	if entry.Transcript.OK() {
		transcript = entry.Transcript.Text
		log.Info("transcript cached, resuming at summarization")
	} else {
		s.publish(src.ID, StageFetching)
		audio, err := s.d.Fetcher.Fetch(ctx, src.Locator)
		if err != nil {
			s.fail(ctx, src.ID, gen, Fields{
				Transcript: Failed(fmt.Sprintf("Error downloading audio: %v", err)),
				Summary:    Failed(msgDownloadAudio),
			})
			return StageError, fmt.Errorf("fetching audio: %w", err)
		}
		if err := s.limits.checkAudio(audio); err != nil {
			s.fail(ctx, src.ID, gen, Fields{
				Transcript: Failed(fmt.Sprintf("Error transcribing audio: %v.", err)),
				Summary:    Failed(msgSummaryNoInput),
			})
			return StageError, err
		}

		s.publish(src.ID, StageTranscribing)
		transcript, err = s.d.Transcriber.Transcribe(ctx, audio)
		if err != nil {
			s.fail(ctx, src.ID, gen, Fields{
				Transcript: Failed(msgTranscribeAudio),
				Summary:    Failed(msgSummaryNoInput),
			})
			return StageError, fmt.Errorf("transcribing: %w", err)
		}
		if !s.write(ctx, src.ID, gen, Fields{Transcript: Ok(transcript)}) {
			return StageIdle, nil
		}
		log.Info("transcript stored", "chars", len(transcript))
	}

	if len(strings.TrimSpace(transcript)) < s.limits.MinSummaryChars {
		s.fail(ctx, src.ID, gen, Fields{Summary: Failed(msgSummaryTooShort)})
		return StageError, errors.New("transcript too short to summarize")
	}

	s.publish(src.ID, StageSummarizing)
	summary, err := s.d.Summarizer.Summarize(ctx, transcript)
	if err != nil {
		s.fail(ctx, src.ID, gen, Fields{Summary: Failed(msgSummaryFailed)})
		return StageError, fmt.Errorf("summarizing: %w", err)
	}
	if !s.write(ctx, src.ID, gen, Fields{Summary: Ok(summary)}) {
		return StageIdle, nil
	}
	s.markProcessed(ctx, src.ID, gen)

	s.publish(src.ID, StageDone)
	return StageDone, nil
}

func (s *Service) runDocument(ctx context.Context, src Source, gen uint64, log *slog.Logger) (Stage, error) {
	s.publish(src.ID, StageFetching)
	doc, err := s.d.Fetcher.Fetch(ctx, src.Locator)
	if err != nil {
		s.fail(ctx, src.ID, gen, Fields{ExtractedText: Failed(fmt.Sprintf("Error loading document: %v", err))})
		return StageError, fmt.Errorf("fetching document: %w", err)
	}

	s.publish(src.ID, StageExtracting)
	err = s.d.Extractor.Extract(ctx, doc, func(e Extraction) {
		s.report(ctx, src.ID, gen, e)
	})
	if err != nil {
		s.fail(ctx, src.ID, gen, Fields{ExtractedText: Failed(msgExtractFailed)})
		return StageError, fmt.Errorf("extracting: %w", err)
	}

	if s.deleted(src.ID, gen) {
		log.Info("source deleted during extraction, result dropped")
		return StageIdle, nil
	}
	if !s.d.Tracker.HasProcessed(src.ID) {
		s.fail(ctx, src.ID, gen, Fields{ExtractedText: Failed(msgExtractIncomplete)})
		return StageError, errors.New("extractor finished without combined text")
	}
	log.Info("document text stored")
	return StageDone, nil
}

// ReportExtraction records text reported by an external document viewer for
// the source id. Page reports accumulate; the combined report completes the
// source. Reports are accepted only while id is selected or being processed.
func (s *Service) ReportExtraction(ctx context.Context, id string, e Extraction) {
	s.mu.Lock()
	if s.selected != id && !s.running[id] {
		s.mu.Unlock()
		slog.Debug("dropping extraction report for inactive source", "source", id, "page", e.Page)
		return
	}
	gen := s.gen[id]
	s.mu.Unlock()

	s.report(ctx, id, gen, e)
}

func (s *Service) report(ctx context.Context, id string, gen uint64, e Extraction) {
	s.mu.Lock()
	if s.gen[id] != gen {
		s.mu.Unlock()
		return
	}
	// Once the combined text is stored, page reports would only shrink it.
	if !e.Combined && s.d.Tracker.HasProcessed(id) {
		s.mu.Unlock()
		slog.Debug("ignoring page report for extracted source", "source", id, "page", e.Page)
		return
	}

	var text string
	if e.Combined {
		text = e.Text
		delete(s.pages, id)
	} else {
		if s.pages[id] == nil {
			s.pages[id] = make(map[int]string)
		}
		s.pages[id][e.Page] = e.Text
		text = pagesText(s.pages[id])
	}
	s.d.Cache.Upsert(ctx, id, Fields{ExtractedText: Ok(text)})
	s.mu.Unlock()

	if e.Combined {
		s.markProcessed(ctx, id, gen)
		s.publish(id, StageDone)
		return
	}
	s.publish(id, StageExtracting)
}

// Delete removes every trace of the source. Runs still in flight for it drop
// their remaining writes.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen[id]++
	delete(s.pages, id)
	if s.selected == id {
		s.cancel()
		s.selected, s.selTok, s.cancel = "", nil, nil
	}

	s.d.Cache.Evict(ctx, id)
	s.d.Tracker.Unmark(ctx, id)

	if s.d.Repo != nil {
		if err := s.d.Repo.DeleteSource(ctx, id); err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
	}
	return nil
}

func (s *Service) cacheHit(src Source) bool {
	if !s.d.Tracker.HasProcessed(src.ID) {
		return false
	}
	e, ok := s.d.Cache.Get(src.ID)
	if !ok {
		return false
	}
	if src.Kind == KindDocument {
		return e.ExtractedText.OK()
	}
	return e.Transcript.OK() && e.Summary.OK()
}

func (s *Service) begin(id string) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running[id] {
		return 0, false
	}
	s.running[id] = true
	return s.gen[id], true
}

func (s *Service) end(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.running, id)
}

// write upserts f unless the source was deleted since the run began.
func (s *Service) write(ctx context.Context, id string, gen uint64, f Fields) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen[id] != gen {
		slog.Debug("dropping write for deleted source", "source", id)
		return false
	}
	s.d.Cache.Upsert(ctx, id, f)
	return true
}

func (s *Service) deleted(id string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.gen[id] != gen
}

func (s *Service) fail(ctx context.Context, id string, gen uint64, f Fields) {
	if s.write(ctx, id, gen, f) {
		s.publish(id, StageError)
	}
}

func (s *Service) markProcessed(ctx context.Context, id string, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen[id] != gen {
		return
	}
	s.d.Tracker.MarkProcessed(ctx, id)
}

// publish hands the current state of id to the observer if id is still the
// selected source and its selection token is live.
func (s *Service) publish(id string, stage Stage) {
	if s.d.Observer == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected != id || s.selTok == nil || s.selTok.Err() != nil {
		return
	}
	entry, _ := s.d.Cache.Get(id)
	entry.SourceID = id
	s.d.Observer(Snapshot{SourceID: id, Stage: stage, Entry: entry})
}

func (l Limits) checkAudio(audio []byte) error {
	if len(audio) == 0 {
		return errors.New("audio is empty")
	}
	if l.MaxAudioBytes > 0 && int64(len(audio)) > l.MaxAudioBytes {
		return fmt.Errorf("audio is %d bytes, limit is %d", len(audio), l.MaxAudioBytes)
	}
	return nil
}

func pagesText(pages map[int]string) string {
	nums := make([]int, 0, len(pages))
	for n := range pages {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	ordered := make([]string, 0, len(nums))
	for _, n := range nums {
		ordered = append(ordered, pages[n])
	}
	return joinPages(ordered)
}
