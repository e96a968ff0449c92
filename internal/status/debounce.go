package status

import (
	"sync"
	"time"
)

// persistTimeout bounds each background persistence call. Debounced saves
// run detached from any request context, so they need their own deadline.
const persistTimeout = 10 * time.Second

// DefaultNotesDebounce is the delay used to coalesce note keystrokes into a
// single persistence call.
const DefaultNotesDebounce = 600 * time.Millisecond

// pendingNotes is one site's unsaved notes state. previous is the value in
// the store before the first edit of the burst — the rollback target if the
// eventual save fails.
type pendingNotes struct {
	timer    *time.Timer
	notes    string
	previous string
}

// notesDebouncer schedules one delayed save per site, resetting the timer
// on every new input. flush cancels the timer and saves immediately.
type notesDebouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*pendingNotes
	save    func(siteID, notes, previous string)
}

func newNotesDebouncer(delay time.Duration, save func(siteID, notes, previous string)) *notesDebouncer {
	return &notesDebouncer{
		delay:   delay,
		pending: map[string]*pendingNotes{},
		save:    save,
	}
}

// update records the latest notes for the site and (re)schedules the save.
// previous is only captured on the first update of a burst, so a failed
// save reverts to the value from before the user started typing, not to a
// half-typed intermediate.
func (d *notesDebouncer) update(siteID, notes, previous string) {
	if d.delay <= 0 {
		d.save(siteID, notes, previous)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[siteID]; ok {
		p.notes = notes
		p.timer.Reset(d.delay)
		return
	}

	p := &pendingNotes{notes: notes, previous: previous}
	p.timer = time.AfterFunc(d.delay, func() { d.fire(siteID) })
	d.pending[siteID] = p
}

// flush saves the site's pending notes now, if any.
func (d *notesDebouncer) flush(siteID string) {
	d.fire(siteID)
}

// close flushes every pending site.
func (d *notesDebouncer) close() {
	d.mu.Lock()
	ids := make([]string, 0, len(d.pending))
	for id := range d.pending {
		ids = append(ids, id)
	}
	d.mu.Unlock()

	for _, id := range ids {
		d.fire(id)
	}
}

// fire removes the pending entry and runs the save outside the lock.
func (d *notesDebouncer) fire(siteID string) {
	d.mu.Lock()
	p, ok := d.pending[siteID]
	if ok {
		p.timer.Stop()
		delete(d.pending, siteID)
	}
	d.mu.Unlock()

	if ok {
		d.save(siteID, p.notes, p.previous)
	}
}
