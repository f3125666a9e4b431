package render

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// statusWatcher records the status code of the first top-level document
// response seen on a tab. Subresource responses are ignored.
type statusWatcher struct {
	mu     sync.Mutex
	status int
}

func (w *statusWatcher) code() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == 0 {
		return 200
	}
	return w.status
}

func watchDocumentStatus(tabCtx context.Context) *statusWatcher {
	w := &statusWatcher{}
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument {
			return
		}
		w.mu.Lock()
		if w.status == 0 {
			w.status = int(resp.Response.Status)
		}
		w.mu.Unlock()
	})
	return w
}

// idleTracker watches request lifecycle events and reports when the tab
// has had no network activity for a quiet window.
type idleTracker struct {
	mu       sync.Mutex
	inflight int
	lastSeen time.Time
}

const networkQuietWindow = 500 * time.Millisecond

func watchNetworkActivity(tabCtx context.Context) *idleTracker {
	t := &idleTracker{lastSeen: time.Now()}
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		t.mu.Lock()
		defer t.mu.Unlock()
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			t.inflight++
			t.lastSeen = time.Now()
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if t.inflight > 0 {
				t.inflight--
			}
			t.lastSeen = time.Now()
		}
	})
	return t
}

func (t *idleTracker) quiet() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inflight == 0 && time.Since(t.lastSeen) >= networkQuietWindow
}

// await polls until the tab goes quiet, the budget runs out, or ctx is
// done. Returns whether idle was actually reached.
func (t *idleTracker) await(ctx context.Context, budget time.Duration) bool {
	deadline := time.Now().Add(budget)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		if t.quiet() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}
