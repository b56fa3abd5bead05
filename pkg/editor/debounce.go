package editor

import (
	"strings"
	"sync"
	"time"
)

// DefaultTitleDelay is the debounce window for title keystrokes.
const DefaultTitleDelay = 600 * time.Millisecond

// TitleSaveFunc persists the page's title and icon together, the same shape
// the update endpoint accepts.
type TitleSaveFunc func(title, icon string)

// TitleDebouncer coalesces title keystrokes into one save per quiet window.
//
// Each keystroke replaces the single pending timer with a fresh one carrying
// the latest value, so a burst of typing yields exactly one save with the
// final text. Whitespace-only titles are never auto-scheduled; an explicit
// Blur saves whatever is current, empty or not, and cancels any pending
// timer. Icon changes skip the window entirely because they come from a
// deliberate pick rather than typing.
type TitleDebouncer struct {
	mu    sync.Mutex
	title string
	icon  string
	delay time.Duration
	timer *time.Timer
	gen   uint64
	save  TitleSaveFunc
}

// NewTitleDebouncer creates a debouncer seeded with the page's current
// title and icon. A non-positive delay falls back to DefaultTitleDelay.
func NewTitleDebouncer(title, icon string, delay time.Duration, save TitleSaveFunc) *TitleDebouncer {
	if delay <= 0 {
		delay = DefaultTitleDelay
	}
	return &TitleDebouncer{
		title: title,
		icon:  icon,
		delay: delay,
		save:  save,
	}
}

// Type records a keystroke. The pending timer, if any, is replaced; when
// the window elapses without further keystrokes the latest title is saved.
// Whitespace-only values update local state but schedule nothing.
func (d *TitleDebouncer) Type(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.title = title
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if strings.TrimSpace(title) == "" {
		return
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.flush(gen) })
}

// Blur cancels any pending timer and saves immediately with the current
// title, regardless of emptiness. Bumping the generation invalidates a
// timer callback that already fired but has not acquired the lock yet, so
// blur racing the timer still yields exactly one save.
func (d *TitleDebouncer) Blur() {
	d.mu.Lock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	title, icon := d.title, d.icon
	d.mu.Unlock()
	d.save(title, icon)
}

// SetIcon updates the icon and saves immediately with the current title,
// bypassing the debounce window.
func (d *TitleDebouncer) SetIcon(icon string) {
	d.mu.Lock()
	d.icon = icon
	title := d.title
	d.mu.Unlock()
	d.save(title, icon)
}

// Title returns the current local title.
func (d *TitleDebouncer) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title
}

// Icon returns the current local icon.
func (d *TitleDebouncer) Icon() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.icon
}

// Stop cancels any pending save without flushing it.
func (d *TitleDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *TitleDebouncer) flush(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		// A Type, Blur, or Stop superseded this timer while its callback
		// was waiting on the lock.
		d.mu.Unlock()
		return
	}
	d.timer = nil
	title, icon := d.title, d.icon
	d.mu.Unlock()
	d.save(title, icon)
}
