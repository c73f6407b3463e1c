package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/dexhavrelock-sketch/oil-management/internal/admin"
	"github.com/dexhavrelock-sketch/oil-management/internal/game"
	"github.com/dexhavrelock-sketch/oil-management/internal/httpmw"
	"github.com/dexhavrelock-sketch/oil-management/internal/ledger"
	"github.com/dexhavrelock-sketch/oil-management/internal/save"
	"github.com/dexhavrelock-sketch/oil-management/internal/telemetry"
)

// App holds everything the handlers depend on. The excluded UI layer is
// the client of this API; it calls the engine only through these routes.
type App struct {
	Engine    *game.Engine
	Scheduler *game.Scheduler
	Admin     *admin.Service
	Telemetry telemetry.Repository
	Logger    *log.Logger
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// NewHandler builds the full API surface wrapped in the middleware chain.
func NewHandler(app *App) http.Handler {
	if app.Logger == nil {
		app.Logger = log.Default()
	}
	mux := http.NewServeMux()
	rr := &RouteRegistry{}

	registerGameRoutes(mux, rr, app)
	registerAdminRoutes(mux, rr, app)
	RegisterAdminUI(mux, rr)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "oil-management",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	return httpmw.Chain(mux,
		httpmw.WithRequestID,
		httpmw.WithRecover(app.Logger),
		httpmw.WithAccessLog(app.Logger),
	)
}

func registerGameRoutes(mux *http.ServeMux, rr *RouteRegistry, app *App) {
	engine := app.Engine

	Handle(mux, rr, "GET /api/state", "Game state snapshot", "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, engine.Snapshot())
	})

	Handle(mux, rr, "POST /api/drops/{id}/collect", "Collect an oil drop", "", func(w http.ResponseWriter, r *http.Request) {
		reward, ok := engine.Collect(r.Context(), r.PathValue("id"))
		writeJSON(w, http.StatusOK, map[string]any{"ok": ok, "reward": reward})
	})

	Handle(mux, rr, "POST /api/buy/rig", "Buy a rig of the given tier", `{"tier":0}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Tier int `json:"tier"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": engine.BuyRig(r.Context(), body.Tier)})
	})

	buyRoutes := []struct {
		pattern string
		summary string
		buy     func(r *http.Request) bool
	}{
		{"POST /api/buy/mini-rig", "Buy a mini rig", func(r *http.Request) bool { return engine.BuyMiniRig(r.Context()) }},
		{"POST /api/buy/refinery", "Buy a plastic refinery", func(r *http.Request) bool { return engine.BuyRefinery(r.Context()) }},
		{"POST /api/buy/gas-refinery", "Buy a gas refinery", func(r *http.Request) bool { return engine.BuyGasRefinery(r.Context()) }},
		{"POST /api/buy/gas-station", "Buy a gas station", func(r *http.Request) bool { return engine.BuyGasStation(r.Context()) }},
		{"POST /api/buy/bottle-factory", "Buy a bottle factory", func(r *http.Request) bool { return engine.BuyBottleFactory(r.Context()) }},
	}
	for _, br := range buyRoutes {
		buy := br.buy
		Handle(mux, rr, br.pattern, br.summary, "", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": buy(r)})
		})
	}

	Handle(mux, rr, "POST /api/sell", "Sell a held resource at market price", `{"resource":"plastic","amount":2}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Resource string `json:"resource"`
			Amount   int64  `json:"amount"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		ok := engine.Sell(r.Context(), ledger.Resource(body.Resource), body.Amount)
		writeJSON(w, http.StatusOK, map[string]any{"ok": ok})
	})

	Handle(mux, rr, "POST /api/bank/deposit", "Move cash into savings", `{"amount":1000}`, func(w http.ResponseWriter, r *http.Request) {
		amount, err := amountBody(r)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": engine.Deposit(r.Context(), amount)})
	})

	Handle(mux, rr, "POST /api/bank/withdraw", "Move savings back into cash", `{"amount":1000}`, func(w http.ResponseWriter, r *http.Request) {
		amount, err := amountBody(r)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": engine.Withdraw(r.Context(), amount)})
	})

	Handle(mux, rr, "POST /api/factory/budget", "Set per-factory plastic budget", `{"amount":50}`, func(w http.ResponseWriter, r *http.Request) {
		amount, err := amountBody(r)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		engine.SetBottleBudget(r.Context(), amount)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	// The pause predicate: any modal shown by the client suspends the
	// simulation entirely.
	Handle(mux, rr, "POST /api/pause", "Suspend all periodic work", "", func(w http.ResponseWriter, r *http.Request) {
		app.Scheduler.Pause()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	Handle(mux, rr, "POST /api/resume", "Resume periodic work", "", func(w http.ResponseWriter, r *http.Request) {
		app.Scheduler.Resume()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	Handle(mux, rr, "GET /api/save/export", "Export state as a save code", "", func(w http.ResponseWriter, r *http.Request) {
		code, err := engine.ExportSave()
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "could not export save")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"code": code})
	})

	Handle(mux, rr, "POST /api/save/import", "Import a save code", `{"code":"..."}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Code string `json:"code"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		if err := engine.ImportSave(r.Context(), body.Code); err != nil {
			switch {
			case errors.Is(err, save.ErrInvalidRecord):
				writeErr(w, http.StatusBadRequest, "invalid or corrupted save code")
			default:
				writeErr(w, http.StatusInternalServerError, "could not import save")
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	Handle(mux, rr, "GET /api/telemetry", "Recent simulation events", "", func(w http.ResponseWriter, r *http.Request) {
		since := time.Time{}
		if raw := r.URL.Query().Get("since"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeErr(w, http.StatusBadRequest, "since must be RFC3339")
				return
			}
			since = t
		}
		events, err := app.Telemetry.GetEvents(since, nil)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "could not read telemetry")
			return
		}
		writeJSON(w, http.StatusOK, events)
	})
}

func amountBody(r *http.Request) (int64, error) {
	var body struct {
		Amount int64 `json:"amount"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return 0, err
	}
	return body.Amount, nil
}
