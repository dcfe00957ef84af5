package sync

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"bandsync/internal/jawbone"
	"bandsync/internal/store"
	"bandsync/internal/transform"
)

type fakeSource struct {
	pages    map[string]*jawbone.Page // keyed by cursor; "" is the first page
	details  map[string]*jawbone.Detail
	cursors  []string // cursor of every FetchPage call, in order
	pageErr  error
	blocking chan struct{} // when set, FetchPage blocks until closed
}

func (s *fakeSource) FetchPage(ctx context.Context, recordType, cursor string) (*jawbone.Page, error) {
	if s.blocking != nil {
		select {
		case <-s.blocking:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.cursors = append(s.cursors, cursor)
	if s.pageErr != nil {
		return nil, s.pageErr
	}
	page, ok := s.pages[cursor]
	if !ok {
		return nil, fmt.Errorf("no page for cursor %q", cursor)
	}
	return page, nil
}

func (s *fakeSource) FetchDetail(ctx context.Context, recordType, xid string) (*jawbone.Detail, error) {
	detail, ok := s.details[xid]
	if !ok {
		return nil, fmt.Errorf("no detail for %q", xid)
	}
	return detail, nil
}

type fakeWriter struct {
	writes [][]transform.Group
	err    error
}

func (w *fakeWriter) Write(ctx context.Context, groups []transform.Group) ([]store.Commit, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.writes = append(w.writes, groups)
	commits := make([]store.Commit, 0, len(groups))
	for _, g := range groups {
		commits = append(commits, store.Commit{Collection: g.Collection, Size: len(g.Records)})
	}
	return commits, nil
}

func heartrateItems(n int, prefix string) []jawbone.Summary {
	items := make([]jawbone.Summary, n)
	for i := range items {
		items[i] = jawbone.Summary{
			XID:     fmt.Sprintf("%s%d", prefix, i),
			Date:    20170817,
			Details: jawbone.Details{TZ: "UTC", RestingHR: 50 + i},
		}
	}
	return items
}

func newTestEngine(t *testing.T, recordType string, source Source, writer Writer) (*Engine, *CursorStore) {
	t.Helper()
	entry, err := transform.Lookup(recordType)
	if err != nil {
		t.Fatal(err)
	}
	cursors := NewCursorStore(filepath.Join(t.TempDir(), "next.json"))
	return NewEngine(recordType, entry, source, writer, cursors), cursors
}

func TestEngineTwoPageSync(t *testing.T) {
	source := &fakeSource{
		pages: map[string]*jawbone.Page{
			"":     {Items: heartrateItems(3, "a"), Next: "urlB"},
			"urlB": {Items: heartrateItems(2, "b"), Next: ""},
		},
	}
	writer := &fakeWriter{}
	engine, cursors := newTestEngine(t, "heartrates", source, writer)

	// Tick 1: three items uploaded, cursor advanced to urlB.
	done, err := engine.RunTick(context.Background())
	if err != nil {
		t.Fatalf("tick 1: %v", err)
	}
	if done {
		t.Fatal("tick 1 should not complete the sync")
	}
	if engine.State() != Ready {
		t.Fatalf("state after tick 1 = %s", engine.State())
	}
	if len(writer.writes) != 1 || len(writer.writes[0][0].Records) != 3 {
		t.Fatalf("tick 1 writes: %+v", writer.writes)
	}
	if cursor, ok, _ := cursors.Load(); !ok || cursor != "urlB" {
		t.Fatalf("persisted cursor after tick 1 = %q, want urlB", cursor)
	}

	// Tick 2: fetches from urlB, uploads two items, sync completes and the
	// cursor file is removed rather than left pointing at a consumed page.
	done, err = engine.RunTick(context.Background())
	if err != nil {
		t.Fatalf("tick 2: %v", err)
	}
	if !done {
		t.Fatal("tick 2 should complete the sync")
	}
	if len(writer.writes) != 2 || len(writer.writes[1][0].Records) != 2 {
		t.Fatalf("tick 2 writes: %+v", writer.writes)
	}
	if _, ok, _ := cursors.Load(); ok {
		t.Error("cursor file should be cleared on completion")
	}

	wantCursors := []string{"", "urlB"}
	if len(source.cursors) != 2 || source.cursors[0] != wantCursors[0] || source.cursors[1] != wantCursors[1] {
		t.Errorf("fetch cursors = %v, want %v", source.cursors, wantCursors)
	}
}

func TestEngineResumesFromPersistedCursor(t *testing.T) {
	source := &fakeSource{
		pages: map[string]*jawbone.Page{
			"urlB": {Items: heartrateItems(2, "b"), Next: ""},
		},
	}
	writer := &fakeWriter{}
	engine, cursors := newTestEngine(t, "heartrates", source, writer)
	if err := cursors.Save("urlB"); err != nil {
		t.Fatal(err)
	}

	done, err := engine.RunTick(context.Background())
	if err != nil {
		t.Fatalf("RunTick: %v", err)
	}
	if !done {
		t.Fatal("sync should complete")
	}
	if len(source.cursors) != 1 || source.cursors[0] != "urlB" {
		t.Errorf("fetch cursors = %v, want [urlB]", source.cursors)
	}
}

func TestEngineMergesDetailsByXID(t *testing.T) {
	items := []jawbone.Summary{
		{XID: "mv0", Date: 20170817, Details: jawbone.Details{
			TZs: []jawbone.TimezoneChange{{Start: 0, Name: "UTC"}},
		}},
		{XID: "mv1", Date: 20170817, Details: jawbone.Details{
			TZs: []jawbone.TimezoneChange{{Start: 0, Name: "UTC"}},
		}},
	}
	source := &fakeSource{
		pages: map[string]*jawbone.Page{"": {Items: items}},
		details: map[string]*jawbone.Detail{
			"mv0": {XID: "mv0", Ticks: []jawbone.Tick{{Time: 100, TimeCompleted: 160, Steps: 12}}},
			// Echoed xid does not match the summary it was fetched for:
			// the detail must be dropped, not merged.
			"mv1": {XID: "stray", Ticks: []jawbone.Tick{{Time: 200, TimeCompleted: 260, Steps: 34}}},
		},
	}
	writer := &fakeWriter{}
	engine, _ := newTestEngine(t, "steps", source, writer)

	done, err := engine.RunTick(context.Background())
	if err != nil {
		t.Fatalf("RunTick: %v", err)
	}
	if !done {
		t.Fatal("single page should complete the sync")
	}

	var tickGroup *transform.Group
	for i := range writer.writes[0] {
		if writer.writes[0][i].Collection == "steps" {
			tickGroup = &writer.writes[0][i]
		}
	}
	if tickGroup == nil {
		t.Fatalf("no steps group in %+v", writer.writes[0])
	}
	if len(tickGroup.Records) != 1 {
		t.Fatalf("got %d tick records, want only mv0's (mismatched detail dropped)", len(tickGroup.Records))
	}
	if tickGroup.Records[0]["id"] != "mv0-100" {
		t.Errorf("tick record id = %v", tickGroup.Records[0]["id"])
	}
}

func TestEngineDetailFetchFailureAbortsTick(t *testing.T) {
	source := &fakeSource{
		pages: map[string]*jawbone.Page{
			"": {Items: []jawbone.Summary{{XID: "mv0", Date: 20170817}}},
		},
		// no details registered: the fan-out fails
	}
	engine, _ := newTestEngine(t, "steps", source, &fakeWriter{})

	if _, err := engine.RunTick(context.Background()); err == nil {
		t.Fatal("expected tick to abort on detail fetch failure")
	}
}

func TestEngineUploadFailureKeepsCursor(t *testing.T) {
	source := &fakeSource{
		pages: map[string]*jawbone.Page{
			"": {Items: heartrateItems(1, "a"), Next: "urlB"},
		},
	}
	writer := &fakeWriter{err: errors.New("bulk write refused")}
	engine, cursors := newTestEngine(t, "heartrates", source, writer)

	_, err := engine.RunTick(context.Background())
	if err == nil {
		t.Fatal("expected upload failure to abort the tick")
	}
	// The next-cursor must not be persisted for a page that never made it
	// into the store.
	if _, ok, _ := cursors.Load(); ok {
		t.Error("cursor must not advance past a failed upload")
	}
}

func TestEngineFetchFailureReportsURL(t *testing.T) {
	source := &fakeSource{pageErr: errors.New("boom")}
	engine, cursors := newTestEngine(t, "heartrates", source, &fakeWriter{})
	if err := cursors.Save("urlQ"); err != nil {
		t.Fatal(err)
	}

	if _, err := engine.RunTick(context.Background()); err == nil {
		t.Fatal("expected fetch failure")
	}
	if engine.LastURL() != "urlQ" {
		t.Errorf("LastURL = %q, want the in-flight fetch URL", engine.LastURL())
	}
}
