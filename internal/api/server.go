// Package api exposes the scheduling engine over HTTP.
package api

import (
	"hotel-shift-bot/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/sirupsen/logrus"
)

type Server struct {
	engine     *service.SchedulingService
	validate   *validator.Validate
	translator ut.Translator
	secret     []byte
	logger     *logrus.Logger

	Mux *chi.Mux
}

func NewServer(engine *service.SchedulingService, jwtSecret string, logger *logrus.Logger) (*Server, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	s := &Server{
		engine:     engine,
		validate:   validate,
		translator: trans,
		secret:     []byte(jwtSecret),
		logger:     logger,

		Mux: chi.NewRouter(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Mux.Use(middleware.RequestID)
	s.Mux.Use(s.requestLogger)
	s.Mux.Use(s.recoverer)

	s.Mux.Group(func(r chi.Router) {
		r.Use(s.auth)

		r.Route("/calendar", func(r chi.Router) {
			r.Get("/", s.GetCalendar)
			r.Get("/export", s.ExportCalendar)
		})
		r.Get("/summary", s.GetSummary)

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/today", s.GetTodayShift)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(s.shiftCtx)
				r.Get("/", s.GetShift)
				r.Post("/clock-in", s.ClockIn)
				r.Post("/clock-out", s.ClockOut)
				r.Post("/confirm", s.ConfirmShift)
			})
		})

		r.Route("/absences", func(r chi.Router) {
			r.Get("/", s.ListAbsences)
			r.Post("/", s.SubmitAbsence)
			r.Get("/conflicts", s.GetConflicts)
			r.Route("/selection", func(r chi.Router) {
				r.Post("/", s.PressDate)
				r.Delete("/", s.CancelSelection)
			})
			r.Route("/{id}", func(r chi.Router) {
				r.With(s.absenceDeleteCtx).Delete("/", s.DeleteAbsence)
				r.Group(func(r chi.Router) {
					r.Use(s.absenceCtx)
					r.Get("/", s.GetAbsence)
					r.Patch("/", s.UpdateAbsence)
					r.Post("/cancel", s.CancelAbsence)
				})
			})
		})
	})
}
