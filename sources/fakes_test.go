package sources

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// memStore is an in-memory Storage. When failing is set every call errors.
type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	failing bool
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

var errStorage = errors.New("storage unavailable")

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return "", false, errStorage
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errStorage
	}
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errStorage
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memStore) Scan(_ context.Context, prefix string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errStorage
	}
	res := make(map[string]string)
	for k, v := range m.data {
		if strings.HasPrefix(k, prefix) {
			res[k] = v
		}
	}
	return res, nil
}

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

type fakeFetcher struct {
	mu    sync.Mutex
	data  map[string][]byte
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, locator string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.data[locator]
	if !ok {
		return nil, errors.New("no such object")
	}
	return d, nil
}

// fakeTranscriber returns text for each call. If started is set, each call
// signals it and then waits on release.
type fakeTranscriber struct {
	mu      sync.Mutex
	text    string
	err     error
	calls   int
	started chan struct{}
	release chan struct{}
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, _ []byte) (string, error) {
	f.mu.Lock()
	f.calls++
	started, release := f.started, f.release
	text, err := f.text, f.err
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		<-release
	}
	return text, err
}

func (f *fakeTranscriber) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSummarizer struct {
	mu     sync.Mutex
	text   string
	err    error
	calls  int
	inputs []string
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.inputs = append(f.inputs, text)
	return f.text, f.err
}

func (f *fakeSummarizer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRepo struct {
	deleted []string
}

func (r *fakeRepo) DeleteSource(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	return nil
}

// snapshots collects observer calls.
type snapshots struct {
	mu   sync.Mutex
	list []Snapshot
}

func (s *snapshots) observe(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = append(s.list, snap)
}

func (s *snapshots) forSource(id string) []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []Snapshot
	for _, snap := range s.list {
		if snap.SourceID == id {
			res = append(res, snap)
		}
	}
	return res
}
