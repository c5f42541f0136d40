package home

import (
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/qrsheet/internal/ui/features/common"
	"github.com/leapstack-labs/qrsheet/internal/ui/features/common/components"
	"github.com/leapstack-labs/qrsheet/internal/ui/notifier"
	"github.com/leapstack-labs/qrsheet/internal/ui/session"
	"github.com/leapstack-labs/qrsheet/internal/widget"
)

// Handlers provides HTTP handlers for the home feature.
type Handlers struct {
	registry *session.Registry
	isDev    bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(registry *session.Registry, isDev bool) *Handlers {
	return &Handlers{
		registry: registry,
		isDev:    isDev,
	}
}

// HomePage renders the widget page with full content.
func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	entry, ok := common.LoadEntry(w, r, h.registry)
	if !ok {
		return
	}

	page := components.Page(PageTitle, h.isDev, entry.Widget.Snapshot())
	if err := page.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HomePageUpdates is the long-lived SSE endpoint of the widget page. It does
// not send initial state (HomePage rendered it) and patches the QR, scanner
// and result sections when they change.
//
// Editor changes are patched by the request that made them; re-patching the
// text area while the user types would fight the caret.
func (h *Handlers) HomePageUpdates(w http.ResponseWriter, r *http.Request) {
	entry, ok := common.LoadEntry(w, r, h.registry)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)

	updates := entry.Notifier.Subscribe()
	defer entry.Notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-updates:
			if err := sendSections(sse, ev, entry.Widget.Snapshot()); err != nil {
				_ = sse.ConsoleError(err)
				// keep the stream; the next event re-sends the sections
			}
		}
	}
}

func sendSections(sse *datastar.ServerSentEventGenerator, ev notifier.Event, s widget.State) error {
	if ev.Has(notifier.EventQR) {
		if err := sse.PatchElementTempl(components.QRPanel(s)); err != nil {
			return err
		}
	}
	if ev.Has(notifier.EventScan) {
		if err := sse.PatchElementTempl(components.Scanner(s)); err != nil {
			return err
		}
		if err := sse.PatchElementTempl(components.Result(s)); err != nil {
			return err
		}
	}
	return nil
}
