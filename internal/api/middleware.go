package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"hotel-shift-bot/internal/apperr"
	"hotel-shift-bot/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	identityCtxKey contextKey = "identity"
	shiftCtxKey    contextKey = "shift"
	absenceCtxKey  contextKey = "absence"
)

// Claims identify the caller: staff and hotel ids plus the staff role.
type Claims struct {
	StaffID uint        `json:"staff_id"`
	HotelID uint        `json:"hotel_id"`
	Role    models.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Scope() models.Scope {
	return models.Scope{StaffID: c.StaffID, HotelID: c.HotelID}
}

func (c *Claims) IsManager() bool {
	return c.Role == models.RoleManager
}

// canAccess reports whether the caller may act on a record of staffID in hotelID:
// their own records, or any record of their hotel for managers.
func (c *Claims) canAccess(staffID, hotelID uint) bool {
	if hotelID != c.HotelID {
		return false
	}
	return staffID == c.StaffID || c.IsManager()
}

func identity(r *http.Request) *Claims {
	return r.Context().Value(identityCtxKey).(*Claims)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"status":     rw.status,
			"ip":         r.RemoteAddr,
			"method":     r.Method,
			"path":       r.URL.Path,
			"duration":   time.Since(start),
		}).Info("Request handled")
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.WithFields(logrus.Fields{
					"panic": fmt.Sprint(rec),
					"stack": string(debug.Stack()),
				}).Error("Handler panicked")
				s.errorResponse(w, r, http.StatusInternalServerError, "internal", "Something went wrong")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// auth reads an HS256 bearer token and stores its claims in the request context.
func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.errorResponse(w, r, http.StatusUnauthorized, "unauthorized", "Missing bearer token")
			return
		}

		claims := &Claims{}
		_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || claims.StaffID == 0 || claims.HotelID == 0 {
			s.errorResponse(w, r, http.StatusUnauthorized, "unauthorized", "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), identityCtxKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func urlID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", chi.URLParam(r, "id"))
	}
	return uint(id), nil
}

func (s *Server) shiftCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r)
		if err != nil {
			s.badRequest(w, r, err)
			return
		}

		shift, err := s.engine.Shift(r.Context(), id)
		if err != nil {
			s.engineError(w, r, err)
			return
		}
		if !identity(r).canAccess(shift.StaffID, shift.HotelID) {
			s.forbidden(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), shiftCtxKey, shift)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) absenceCtx(next http.Handler) http.Handler {
	return s.loadAbsence(next, false)
}

// absenceDeleteCtx lets a missing request through with no absence in the context, so
// repeated deletes succeed.
func (s *Server) absenceDeleteCtx(next http.Handler) http.Handler {
	return s.loadAbsence(next, true)
}

func (s *Server) loadAbsence(next http.Handler, missingOK bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r)
		if err != nil {
			s.badRequest(w, r, err)
			return
		}

		request, err := s.engine.Absence(r.Context(), id)
		if missingOK && errors.Is(err, apperr.ErrNotFound) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			s.engineError(w, r, err)
			return
		}
		if !identity(r).canAccess(request.StaffID, request.HotelID) {
			s.forbidden(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), absenceCtxKey, request)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
