package internalhttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/daybook-io/daybook/internal/app"
	"github.com/daybook-io/daybook/internal/storage"
	log "github.com/sirupsen/logrus"
)

const (
	msgSignedUp        = "You have successfully signed up"
	msgPasswordUpdated = "Password updated successfully"
	msgEventDeleted    = "Event deleted successfully"

	errInternalServerError = "internal server error"
	errInvalidRequestBody  = "invalid request body"
)

const dayLayout = "2006-01-02"

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type addEventRequest struct {
	Title     string `json:"title"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type updateEventRequest struct {
	Title     *string `json:"title"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if err := s.app.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msgSignedUp})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, err := s.app.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req resetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.OldPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "email, old password and new password are required")
		return
	}

	if err := s.app.ResetPassword(r.Context(), req.Email, req.OldPassword, req.NewPassword); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msgPasswordUpdated})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authorization token is required")
		return
	}

	profile, err := s.app.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	events, err := s.app.ListEvents(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleEventsForDay(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	date, err := time.Parse(dayLayout, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		return
	}

	events, err := s.app.GetEventsForDay(r.Context(), date)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleAddEvent(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req addEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	event, err := s.app.CreateEvent(r.Context(), req.Title, req.StartDate, req.EndDate)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, ok := eventID(w, pathParams)
	if !ok {
		return
	}
	var req updateEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	event, err := s.app.UpdateEvent(r.Context(), id, app.EventPatch{
		Title:     req.Title,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleRemoveEvent(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, ok := eventID(w, pathParams)
	if !ok {
		return
	}

	if err := s.app.RemoveEvent(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msgEventDeleted})
}

func eventID(w http.ResponseWriter, pathParams map[string]string) (int64, bool) {
	id, err := strconv.ParseInt(pathParams["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "event id must be numeric")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidRequestBody)
		return false
	}
	return true
}

// writeAppError maps application errors to the HTTP taxonomy. Internal
// failure details are logged, never forwarded to the client.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrUserExists):
		writeError(w, http.StatusConflict, app.ErrUserExists.Error())
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, app.ErrInvalidCredentials.Error())
	case errors.Is(err, storage.ErrNotFoundUser):
		writeError(w, http.StatusNotFound, storage.ErrNotFoundUser.Error())
	case errors.Is(err, storage.ErrNotFoundEvent):
		writeError(w, http.StatusNotFound, storage.ErrNotFoundEvent.Error())
	case errors.Is(err, app.ErrIncorrectDate):
		writeError(w, http.StatusBadRequest, app.ErrIncorrectDate.Error())
	case errors.Is(err, app.ErrEmptyTitle):
		writeError(w, http.StatusBadRequest, app.ErrEmptyTitle.Error())
	default:
		log.Errorf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, errInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to write response: %v", err)
	}
}
