package httpapi

import (
	"net/http"
	"strings"
)

// RouterConfig collects the handler and the middleware chain applied around
// the whole API.
type RouterConfig struct {
	Calendar   *CalendarHandler
	Middleware []func(http.Handler) http.Handler
}

// NewRouter builds the API route table.
//
// Routes:
//   - GET    /days/{date}                       day view with metadata
//   - DELETE /days/{date}/occurrences/{id}      remove one occurrence
//   - POST   /events                            create a one-off event
//   - PUT    /events/{date}/{id}                edit a one-off event
//   - POST   /rules                             create a recurrence rule
//   - PUT    /rules/{id}                        edit a rule's details
//   - DELETE /rules/{id}[?from=date]            delete or truncate a rule
//   - POST   /rules/{id}/detach                 detach one day from a rule
//   - GET    /search?q=keyword                  keyword search
//   - GET    /export.ics?from=date&to=date      iCalendar export
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	calendar := cfg.Calendar

	if calendar != nil {
		mux.HandleFunc("/days/", func(w http.ResponseWriter, r *http.Request) {
			parts := splitPath(strings.TrimPrefix(r.URL.Path, "/days/"))
			switch {
			case len(parts) == 1:
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				calendar.Day(w, r, parts[0])
			case len(parts) == 3 && parts[1] == "occurrences":
				if r.Method != http.MethodDelete {
					methodNotAllowed(w, http.MethodDelete)
					return
				}
				calendar.DeleteOccurrence(w, r, parts[0], parts[2])
			default:
				http.NotFound(w, r)
			}
		})

		mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			calendar.CreateEvent(w, r)
		})
		mux.HandleFunc("/events/", func(w http.ResponseWriter, r *http.Request) {
			parts := splitPath(strings.TrimPrefix(r.URL.Path, "/events/"))
			if len(parts) != 2 {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPut {
				methodNotAllowed(w, http.MethodPut)
				return
			}
			calendar.UpdateEvent(w, r, parts[0], parts[1])
		})

		mux.HandleFunc("/rules", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			calendar.CreateRule(w, r)
		})
		mux.HandleFunc("/rules/", func(w http.ResponseWriter, r *http.Request) {
			parts := splitPath(strings.TrimPrefix(r.URL.Path, "/rules/"))
			switch {
			case len(parts) == 1:
				switch r.Method {
				case http.MethodPut:
					calendar.UpdateRule(w, r, parts[0])
				case http.MethodDelete:
					calendar.DeleteRule(w, r, parts[0])
				default:
					methodNotAllowed(w, http.MethodPut, http.MethodDelete)
				}
			case len(parts) == 2 && parts[1] == "detach":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				calendar.DetachOccurrence(w, r, parts[0])
			default:
				http.NotFound(w, r)
			}
		})

		mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			calendar.Search(w, r)
		})

		mux.HandleFunc("/export.ics", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			calendar.ExportICS(w, r)
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
