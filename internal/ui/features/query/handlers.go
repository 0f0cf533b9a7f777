// Package query provides the web UI for editing and running SPARQL queries.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kg-project/sparqlq/internal/controller"
	"github.com/kg-project/sparqlq/internal/ui/features/query/components"
	"github.com/kg-project/sparqlq/internal/ui/features/query/pages"
	"github.com/starfederation/datastar-go/datastar"
)

// Handlers provides HTTP handlers for the query feature.
// All handlers share one controller; every browser tab sees the same state.
type Handlers struct {
	ctl    *controller.Controller
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(ctl *controller.Controller, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{ctl: ctl, logger: logger}
}

// QueryPage renders the full page with the current state server-side.
func (h *Handlers) QueryPage(w http.ResponseWriter, r *http.Request) {
	st := h.ctl.State()

	signals, err := json.Marshal(map[string]string{"query": st.Query, "example": ""})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	page := pages.QueryPage(pages.QueryPageData{
		Title:    "sparqlq - " + h.ctl.Endpoint().RepositoryID,
		Endpoint: h.ctl.Endpoint().String(),
		Signals:  string(signals),
		Examples: h.ctl.Library().Examples(),
		State:    newStateData(st),
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// StateSSE streams the result panel: once on connect, then on every
// controller change until the client disconnects.
func (h *Handlers) StateSSE(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.ctl.Subscribe()
	defer h.ctl.Unsubscribe(updates)

	if err := h.patchState(sse); err != nil {
		_ = sse.ConsoleError(err)
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok {
				return
			}
			if err := h.patchState(sse); err != nil {
				_ = sse.ConsoleError(err)
				// Don't return - keep trying on next update
			}
		}
	}
}

// ExecuteSSE sets the current query and submits it. The run is detached from
// the request so it completes even if the client navigates away; its outcome
// reaches clients through StateSSE.
func (h *Handlers) ExecuteSSE(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var signals ExecuteSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(fmt.Errorf("failed to read signals: %w", err))
		return
	}

	sse := datastar.NewSSE(w, r)

	h.ctl.SetQuery(signals.Query)
	seq, _ := h.ctl.Submit(context.WithoutCancel(r.Context()))
	h.logger.Debug("query submitted from web UI", "seq", seq)

	if err := h.patchState(sse); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// ExampleSSE loads an example into the current query and pushes the text
// back into the editor's query signal.
func (h *Handlers) ExampleSSE(w http.ResponseWriter, r *http.Request) {
	var signals ExampleSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(fmt.Errorf("failed to read signals: %w", err))
		return
	}

	sse := datastar.NewSSE(w, r)

	if signals.Example == "" {
		return
	}
	if !h.ctl.SelectExample(signals.Example) {
		_ = sse.ConsoleError(fmt.Errorf("unknown example %q", signals.Example))
		return
	}

	if err := sse.MarshalAndPatchSignals(map[string]string{"query": h.ctl.State().Query}); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Healthz reports that the server is up.
func (h *Handlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *Handlers) patchState(sse *datastar.ServerSentEventGenerator) error {
	return sse.PatchElementTempl(components.State(newStateData(h.ctl.State())))
}
