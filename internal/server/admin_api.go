package server

import (
	"net/http"

	"github.com/dexhavrelock-sketch/oil-management/internal/admin"
)

const adminTokenHeader = "X-Admin-Token"

// requireAdmin resolves the session token header to an access level.
// Handlers that need level-specific rules re-check the level themselves.
func requireAdmin(app *App, w http.ResponseWriter, r *http.Request) (admin.Level, bool) {
	token := r.Header.Get(adminTokenHeader)
	if token == "" {
		writeErr(w, http.StatusUnauthorized, "missing "+adminTokenHeader+" header")
		return "", false
	}
	level, ok := app.Admin.LevelForToken(token)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "invalid or expired session")
		return "", false
	}
	return level, true
}

func registerAdminRoutes(mux *http.ServeMux, rr *RouteRegistry, app *App) {
	engine := app.Engine

	Handle(mux, rr, "POST /api/admin/login", "Open an admin session", `{"username":"...","password":"..."}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		token, level, ok := app.Admin.Login(body.Username, body.Password)
		if !ok {
			writeErr(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": token, "level": level})
	})

	Handle(mux, rr, "POST /api/admin/logout", "Close the current admin session", "", func(w http.ResponseWriter, r *http.Request) {
		if token := r.Header.Get(adminTokenHeader); token != "" {
			app.Admin.Logout(token)
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	Handle(mux, rr, "POST /api/admin/grant", "Credit cash to the ledger", `{"amount":5000}`, func(w http.ResponseWriter, r *http.Request) {
		level, ok := requireAdmin(app, w, r)
		if !ok {
			return
		}
		amount, err := amountBody(r)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		granted := engine.AdminGrant(r.Context(), level, amount)
		writeJSON(w, http.StatusOK, map[string]any{"granted": granted})
	})

	Handle(mux, rr, "POST /api/admin/quota", "Raise the limited-grant quota", `{"amount":100000000}`, func(w http.ResponseWriter, r *http.Request) {
		level, ok := requireAdmin(app, w, r)
		if !ok {
			return
		}
		amount, err := amountBody(r)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		if !engine.AdminRaiseQuota(r.Context(), level, amount) {
			writeErr(w, http.StatusForbidden, "full access required")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	Handle(mux, rr, "POST /api/admin/events/outage/start", "Trigger an outage", "", adminEventHandler(app, engine.StartOutage))
	Handle(mux, rr, "POST /api/admin/events/outage/stop", "End the active outage", "", adminEventHandler(app, engine.StopOutage))
	Handle(mux, rr, "POST /api/admin/events/war/start", "Trigger a war", "", adminEventHandler(app, engine.StartWar))
	Handle(mux, rr, "POST /api/admin/events/war/stop", "End the active war", "", adminEventHandler(app, engine.StopWar))

	Handle(mux, rr, "POST /api/admin/events/moonrun/start", "Start the shared moon run", "", func(w http.ResponseWriter, r *http.Request) {
		level, ok := requireAdmin(app, w, r)
		if !ok {
			return
		}
		if !engine.StartMoonRun(r.Context(), level) {
			writeErr(w, http.StatusForbidden, "full access required")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	Handle(mux, rr, "POST /api/admin/events/moonrun/stop", "Stop the shared moon run", "", func(w http.ResponseWriter, r *http.Request) {
		level, ok := requireAdmin(app, w, r)
		if !ok {
			return
		}
		if !engine.StopMoonRun(r.Context(), level) {
			writeErr(w, http.StatusForbidden, "full access required")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
}

// adminEventHandler wraps a parameterless event toggle behind session auth.
// Any authenticated admin may drive outage and war.
func adminEventHandler(app *App, toggle func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(app, w, r); !ok {
			return
		}
		toggle()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
