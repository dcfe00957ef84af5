package sync

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"bandsync/internal/jawbone"
	"bandsync/internal/store"
	"bandsync/internal/transform"
	"bandsync/pkg/logger"
)

// Source fetches listing pages and per-record detail from the remote API.
type Source interface {
	FetchPage(ctx context.Context, recordType, cursor string) (*jawbone.Page, error)
	FetchDetail(ctx context.Context, recordType, xid string) (*jawbone.Detail, error)
}

// Writer commits transformed record groups to the document store.
type Writer interface {
	Write(ctx context.Context, groups []transform.Group) ([]store.Commit, error)
}

var stateColors = map[State]func(format string, a ...any) string{
	Fetching:   color.MagentaString,
	Processing: color.CyanString,
	Uploading:  color.BlueString,
	Ready:      color.GreenString,
}

// announce writes the state transition to the console the way operators
// watch it, colored per state.
func announce(s State) {
	fmt.Fprintf(color.Output, "%s %s\n", color.New(color.Faint).Sprint("STATE:"), stateColors[s]("%s...", s))
}

// Engine owns one record type's sync cycle: per tick it fetches a page
// (plus concurrent detail fan-out for tick-bearing types), transforms it,
// uploads the result and only then advances the persisted cursor. All
// mutable sync state lives on the instance, so engines for different
// record types do not interfere.
type Engine struct {
	machine    Machine
	source     Source
	writer     Writer
	cursors    *CursorStore
	recordType string
	entry      transform.Entry

	accum        []jawbone.Summary
	total        int
	cursor       string
	cursorLoaded bool
	next         string
	lastURL      atomic.Pointer[string]
}

func NewEngine(recordType string, entry transform.Entry, source Source, writer Writer, cursors *CursorStore) *Engine {
	return &Engine{
		source:     source,
		writer:     writer,
		cursors:    cursors,
		recordType: recordType,
		entry:      entry,
	}
}

// State reports the cycle's current phase. Safe to call from the
// scheduler's goroutine while a tick is in flight.
func (e *Engine) State() State {
	return e.machine.State()
}

// LastURL reports the page URL the most recent fetch targeted, or
// "initial" before any cursor existed. Used in stall reports.
func (e *Engine) LastURL() string {
	if url := e.lastURL.Load(); url != nil {
		return *url
	}
	return "initial"
}

// RunTick drives one full fetch-process-upload-advance cycle. It returns
// done=true when pagination is exhausted and the sync is complete. Any
// error aborts the tick; nothing in the cycle retries.
func (e *Engine) RunTick(ctx context.Context) (done bool, err error) {
	items, err := e.fetch(ctx)
	if err != nil {
		return false, err
	}
	groups, err := e.process(items)
	if err != nil {
		return false, err
	}
	if err := e.upload(ctx, groups); err != nil {
		return false, err
	}
	return e.advance()
}

func (e *Engine) fetch(ctx context.Context) ([]jawbone.Summary, error) {
	if err := e.machine.To(Fetching); err != nil {
		return nil, err
	}
	announce(Fetching)

	if !e.cursorLoaded {
		cursor, ok, err := e.cursors.Load()
		if err != nil {
			return nil, err
		}
		if ok {
			e.cursor = cursor
		}
		e.cursorLoaded = true
	}

	url := e.cursor
	if url == "" {
		url = "initial"
	}
	e.lastURL.Store(&url)
	logger.Info("Fetching %s page: %s", e.recordType, url)

	page, err := e.source.FetchPage(ctx, e.recordType, e.cursor)
	if err != nil {
		return nil, err
	}
	e.next = page.Next

	items := page.Items
	if e.entry.WithTicks && len(items) > 0 {
		if err := e.mergeDetails(ctx, items); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// mergeDetails fetches every item's high-resolution ticks concurrently and
// re-associates each detail with its summary by xid. A detail whose xid
// does not match the summary it was fetched for is dropped, not merged.
func (e *Engine) mergeDetails(ctx context.Context, items []jawbone.Summary) error {
	details := make([]*jawbone.Detail, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i := range items {
		i := i
		g.Go(func() error {
			detail, err := e.source.FetchDetail(gctx, e.recordType, items[i].XID)
			if err != nil {
				return err
			}
			details[i] = detail
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i := range items {
		if details[i].XID == items[i].XID {
			items[i].Ticks = details[i].Ticks
		} else {
			logger.Warn("Dropping detail %s: does not match summary %s", details[i].XID, items[i].XID)
		}
	}
	return nil
}

func (e *Engine) process(items []jawbone.Summary) ([]transform.Group, error) {
	if err := e.machine.To(Processing); err != nil {
		return nil, err
	}
	e.accum = append(e.accum, items...)
	e.total += len(items)
	announce(Processing)
	logger.Info("Processing batch of %d items (%d fetched in total)", len(items), e.total)
	return e.entry.Apply(e.accum)
}

func (e *Engine) upload(ctx context.Context, groups []transform.Group) error {
	if err := e.machine.To(Uploading); err != nil {
		return err
	}
	announce(Uploading)
	commits, err := e.writer.Write(ctx, groups)
	if err != nil {
		return err
	}
	logger.Info("Uploaded %d batches", len(commits))
	return nil
}

// advance clears the accumulator and moves pagination forward: on a
// terminal next-cursor the sync is complete and the cursor file is removed;
// otherwise the next cursor is persisted before the engine returns to
// ready, so a restart resumes exactly where this tick left off.
func (e *Engine) advance() (bool, error) {
	e.accum = nil
	if e.next == "" {
		if err := e.cursors.Clear(); err != nil {
			return false, err
		}
		if err := e.machine.To(Ready); err != nil {
			return false, err
		}
		logger.Info("No next page; finished syncing %s", e.recordType)
		return true, nil
	}
	if err := e.cursors.Save(e.next); err != nil {
		return false, err
	}
	e.cursor, e.next = e.next, ""
	if err := e.machine.To(Ready); err != nil {
		return false, err
	}
	announce(Ready)
	return false, nil
}
