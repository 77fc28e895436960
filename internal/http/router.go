package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router uses the standard library http.ServeMux.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// only dispatches by method; unknown methods get 405.
func only(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

// trailingID extracts the path segment after prefix; empty means a bad path.
func trailingID(path, prefix string) string {
	id := strings.TrimPrefix(path, prefix)
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}

func (r *Router) RegisterHealthRoutes() {
	r.Handle("/healthz", only(http.MethodGet, func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
}

func (r *Router) RegisterAuthRoutes(h *AuthHandler, auth *Auth) {
	r.Handle("/api/v1/auth/register", only(http.MethodPost, h.Register))
	r.Handle("/api/v1/auth/login", only(http.MethodPost, h.Login))
	r.Handle("/api/v1/auth/refresh", only(http.MethodPost, h.Refresh))
	r.Handle("/api/v1/auth/logout", only(http.MethodPost, auth.Require(h.Logout)))
	r.Handle("/api/v1/auth/profile", only(http.MethodGet, auth.Require(h.Profile)))
	r.Handle("/api/v1/auth/change-password", only(http.MethodPost, auth.Require(h.ChangePassword)))
	r.Handle("/api/v1/auth/users", only(http.MethodGet, auth.RequireAdmin(h.ListUsers)))
}

func (r *Router) RegisterVerticalRoutes(h *VerticalHandler, auth *Auth) {
	r.Handle("/api/v1/verticals", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			auth.Require(h.List)(w, req)
		case http.MethodPost:
			auth.RequireAdmin(h.Create)(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	r.Handle("/api/v1/verticals/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/api/v1/verticals/")
		if id, ok := strings.CutSuffix(rest, "/sensor-types"); ok {
			if req.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			auth.Require(func(w http.ResponseWriter, req *http.Request) {
				h.SensorTypes(w, req, id)
			})(w, req)
			return
		}
		if rest == "" || strings.Contains(rest, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch req.Method {
		case http.MethodGet:
			auth.Require(func(w http.ResponseWriter, req *http.Request) { h.Get(w, req, rest) })(w, req)
		case http.MethodDelete:
			auth.RequireAdmin(func(w http.ResponseWriter, req *http.Request) { h.Delete(w, req, rest) })(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func (r *Router) RegisterSensorTypeRoutes(h *SensorTypeHandler, auth *Auth) {
	r.Handle("/api/v1/sensor-types", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			auth.Require(h.List)(w, req)
		case http.MethodPost:
			auth.RequireAdmin(h.Create)(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	r.Handle("/api/v1/sensor-types/", func(w http.ResponseWriter, req *http.Request) {
		id := trailingID(req.URL.Path, "/api/v1/sensor-types/")
		if id == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch req.Method {
		case http.MethodGet:
			auth.Require(func(w http.ResponseWriter, req *http.Request) { h.Get(w, req, id) })(w, req)
		case http.MethodDelete:
			auth.RequireAdmin(func(w http.ResponseWriter, req *http.Request) { h.Delete(w, req, id) })(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func (r *Router) RegisterNodeRoutes(h *NodeHandler, c *CinHandler, auth *Auth) {
	r.Handle("/api/v1/nodes", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			auth.Require(h.List)(w, req)
		case http.MethodPost:
			auth.RequireAdmin(h.Create)(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	r.Handle("/api/v1/nodes/code", only(http.MethodGet, auth.Require(h.DeriveCode)))
	r.Handle("/api/v1/nodes/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/api/v1/nodes/")
		switch {
		case strings.HasSuffix(rest, "/vendor"):
			if req.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			id := strings.TrimSuffix(rest, "/vendor")
			auth.RequireAdmin(func(w http.ResponseWriter, req *http.Request) {
				h.AssignVendor(w, req, id)
			})(w, req)
		case strings.HasSuffix(rest, "/data/latest"):
			if req.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			id := strings.TrimSuffix(rest, "/data/latest")
			auth.Require(func(w http.ResponseWriter, req *http.Request) {
				c.Latest(w, req, id)
			})(w, req)
		case strings.HasSuffix(rest, "/data"):
			if req.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			id := strings.TrimSuffix(rest, "/data")
			auth.Require(func(w http.ResponseWriter, req *http.Request) {
				c.ListByNode(w, req, id)
			})(w, req)
		case rest != "" && !strings.Contains(rest, "/"):
			switch req.Method {
			case http.MethodGet:
				auth.Require(func(w http.ResponseWriter, req *http.Request) { h.Get(w, req, rest) })(w, req)
			case http.MethodDelete:
				auth.RequireAdmin(func(w http.ResponseWriter, req *http.Request) { h.Delete(w, req, rest) })(w, req)
			default:
				w.WriteHeader(http.StatusMethodNotAllowed)
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (r *Router) RegisterTokenRoutes(h *TokenHandler, auth *Auth) {
	r.Handle("/api/v1/tokens", only(http.MethodPost, auth.RequireAdmin(h.Issue)))
	r.Handle("/api/v1/tokens/deploy", only(http.MethodPost, auth.Require(h.Deploy)))
	r.Handle("/api/v1/tokens/", only(http.MethodGet, auth.Require(h.Get)))
}

// RegisterCinRoutes registers ingestion. Field devices authenticate with the
// node's API key, not a JWT, so the route skips the auth wrapper.
func (r *Router) RegisterCinRoutes(h *CinHandler) {
	r.Handle("/api/v1/cin/create/", only(http.MethodPost, h.Ingest))
}

func (r *Router) RegisterImportRoutes(h *ImportHandler, auth *Auth) {
	r.Handle("/api/v1/import/json", only(http.MethodPost, auth.RequireAdmin(h.ImportJSON)))
	r.Handle("/api/v1/import/csv", only(http.MethodPost, auth.RequireAdmin(h.ImportCSV)))
	r.Handle("/api/v1/import/xlsx", only(http.MethodPost, auth.RequireAdmin(h.ImportXLSX)))
	r.Handle("/api/v1/import/template", only(http.MethodGet, auth.Require(h.Template)))
}

func (r *Router) RegisterStatsRoutes(h *StatsHandler) {
	r.Handle("/api/v1/stats", only(http.MethodGet, h.Overview))
}
