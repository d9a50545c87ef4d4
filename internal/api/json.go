package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"hotel-shift-bot/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type Response struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (s *Server) readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("Failed to write response")
	}
}

func (s *Server) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	s.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	s.writeJSON(w, r, status, Response{
		Success: false,
		Code:    code,
		Message: msg,
	})
}

// badRequest reports malformed input. Validation errors are translated field by field
// and only the first one is shown.
func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		s.errorResponse(w, r, http.StatusBadRequest, string(apperr.KindInvalidInput), validationErrors[0].Translate(s.translator))
		return
	}
	s.errorResponse(w, r, http.StatusBadRequest, string(apperr.KindInvalidInput), err.Error())
}

func (s *Server) forbidden(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, r, http.StatusForbidden, "forbidden", "You are not allowed to access this record")
}

// engineError maps an engine failure to a status code. Business-rule rejections are
// logged at Info, storage failures at Error.
func (s *Server) engineError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)

	entry := s.logger.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	})
	if apperr.IsBusinessRule(err) {
		entry.Info("Request rejected")
	} else {
		entry.Error("Request failed")
	}

	code := string(kind)
	if code == "" {
		code = "internal"
	}
	s.errorResponse(w, r, statusFor(kind), code, apperr.Message(err))
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidInput, apperr.KindInvalidRange:
		return http.StatusBadRequest
	case apperr.KindInvalidTransition, apperr.KindNotToday, apperr.KindAlreadyStarted,
		apperr.KindAlreadyEnded, apperr.KindNotStarted, apperr.KindAlreadyConfirmed,
		apperr.KindNotEditable:
		return http.StatusConflict
	case apperr.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
