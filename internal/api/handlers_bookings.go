package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shareit/internal/export"
	"shareit/internal/models"
	"shareit/internal/service"
)

type createBookingRequest struct {
	ItemID int64  `json:"item_id"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	var body createBookingRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start, end, err := s.bookingPeriod(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := s.deps.Bookings.Create(r.Context(), actorID, body.ItemID, start, end)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// bookingPeriod checks the request shape: start now or later, end strictly in the future.
func (s *Server) bookingPeriod(body createBookingRequest) (time.Time, time.Time, error) {
	if body.ItemID <= 0 {
		return time.Time{}, time.Time{}, errors.New("item_id is required")
	}
	if body.Start == "" || body.End == "" {
		return time.Time{}, time.Time{}, errors.New("start and end are required")
	}
	start, err := parseTime(body.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseTime(body.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	now := s.now()
	if start.Before(now) {
		return time.Time{}, time.Time{}, errors.New("start must not be in the past")
	}
	if !end.After(now) {
		return time.Time{}, time.Time{}, errors.New("end must be in the future")
	}
	return start, end, nil
}

func (s *Server) handleApproveBooking(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}
	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "approved must be true or false")
		return
	}

	booking, err := s.deps.Bookings.Approve(r.Context(), actorID, bookingID, approved)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	booking, err := s.deps.Bookings.Get(r.Context(), actorID, bookingID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleListBookerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, models.RoleBooker)
}

func (s *Server) handleListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, models.RoleOwner)
}

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request, role models.Role) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	bookings, ok := s.findBookings(w, r, actorID, role)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	rawRole := r.URL.Query().Get("role")
	role, ok := models.ParseRole(rawRole)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown role: %s", rawRole))
		return
	}
	bookings, ok := s.findBookings(w, r, actorID, role)
	if !ok {
		return
	}

	state, _ := models.ParseBookingState(r.URL.Query().Get("state"))
	var buf bytes.Buffer
	title := fmt.Sprintf("%s / %s", role, state)
	if err := s.deps.Exporter.Write(&buf, title, bookings); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(role, state, s.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// findBookings resolves the state query parameter and runs the list query.
func (s *Server) findBookings(w http.ResponseWriter, r *http.Request, actorID int64, role models.Role) ([]*models.Booking, bool) {
	rawState := r.URL.Query().Get("state")
	state, ok := models.ParseBookingState(rawState)
	if !ok {
		writeUnknownState(w, rawState)
		return nil, false
	}

	bookings, err := s.deps.Bookings.List(r.Context(), actorID, role, state)
	if errors.Is(err, service.ErrWrongStateParameter) {
		writeUnknownState(w, rawState)
		return nil, false
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return nil, false
	}
	return bookings, true
}
