package api

import (
	"net/http"

	"usersvc/cmd/internal/envelope"
	"usersvc/cmd/internal/profile"
)

func (h *Handler) handleProfileSave(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethod(w, r, http.MethodPost) {
		return
	}
	var p profile.Profile
	if !h.decode(w, r, &p) {
		return
	}
	env := h.profiles.Upsert(r.Context(), p)
	h.logProfileFailure(r, "api.profile.save.fail", p.ID, env.Error)
	respond(h, w, r, env)
}

func (h *Handler) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethod(w, r, http.MethodGet) {
		return
	}
	id := r.URL.Query().Get("id")
	env := h.profiles.Fetch(r.Context(), id)
	h.logProfileFailure(r, "api.profile.get.fail", id, env.Error)
	respond(h, w, r, env)
}

// logProfileFailure records a failed profile operation with the caller's unverified subject.
func (h *Handler) logProfileFailure(r *http.Request, event, id string, e *envelope.Error) {
	if e == nil {
		return
	}
	h.log.WarnContext(r.Context(), event,
		"code", e.Code,
		"profile_id", id,
		"sub", subjectFromContext(r.Context()),
	)
}

func (h *Handler) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethod(w, r, http.MethodGet) {
		return
	}
	respond(h, w, r, envelope.OK("OK"))
}
