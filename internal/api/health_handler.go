package api

import (
	"net/http"
)

// HealthHandler returns 200 if service is healthy.
func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// ReadyHandler returns 200 once the lifecycle controller has handled the
// application-initialized signal.
func (a *API) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	select {
	case <-a.lifecycle.Ready():
	default:
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not initialized"})
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
