package api

import (
	"net/http"
	"strings"
)

type createRequestRequest struct {
	Description string `json:"description"`
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	var body createRequestRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(body.Description) == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	req, err := s.deps.Requests.Create(r.Context(), actorID, body.Description)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleListOwnRequests(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	views, err := s.deps.Requests.ListOwn(r.Context(), actorID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleListOtherRequests(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	views, err := s.deps.Requests.ListOthers(r.Context(), actorID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	requestID, ok := pathID(w, r)
	if !ok {
		return
	}
	view, err := s.deps.Requests.Get(r.Context(), actorID, requestID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
