package webhook

import (
	"crypto/sha256"
	"sync"
	"time"
)

// Deduper is a best-effort filter for duplicate deliveries of the same
// payload within a short window. Bitrix redelivers on slow acknowledgment;
// because the 200 is sent before processing, duplicates can arrive while
// the first delivery is still in flight. The filter sits in front of the
// router and is optional; the pipeline itself stays dedup-free.
type Deduper struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[[sha256.Size]byte]time.Time
}

func NewDeduper(window time.Duration) *Deduper {
	return &Deduper{
		window: window,
		now:    time.Now,
		seen:   make(map[[sha256.Size]byte]time.Time),
	}
}

// Duplicate reports whether an identical body was seen within the window,
// recording the body either way.
func (d *Deduper) Duplicate(body []byte) bool {
	sum := sha256.Sum256(body)
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	for k, at := range d.seen {
		if now.Sub(at) > d.window {
			delete(d.seen, k)
		}
	}

	if at, ok := d.seen[sum]; ok && now.Sub(at) <= d.window {
		return true
	}
	d.seen[sum] = now
	return false
}
