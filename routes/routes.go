package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/padelhq/tournament-engine/handlers"
	"github.com/padelhq/tournament-engine/middleware"
)

// SetupRoutes mounts the public bracket views, the player registration
// endpoints and the club-admin tournament management surface.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	tournamentHandler *handlers.TournamentHandler,
	registrationHandler *handlers.RegistrationHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/tournaments", func(r chi.Router) {
		// Public bracket views.
		r.Get("/{tournamentID}", tournamentHandler.GetTournamentHandler)
		r.Get("/{tournamentID}/ws", webSocketHandler.SubscribeTournamentHandler)

		// Player-facing registration endpoints.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/{tournamentID}/registrations", registrationHandler.RegisterPairHandler)
			r.Delete("/{tournamentID}/registrations/{registrationID}", registrationHandler.WithdrawRegistrationHandler)
		})

		// Club-admin tournament management.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.RequireClubAdmin)

			r.Post("/", tournamentHandler.CreateTournamentHandler)
			r.Get("/", tournamentHandler.ListTournamentsHandler)
			r.Patch("/{tournamentID}/status", tournamentHandler.UpdateTournamentStatusHandler)
			r.Post("/{tournamentID}/poster", tournamentHandler.UploadPosterHandler)

			r.Patch("/{tournamentID}/registrations/{registrationID}", registrationHandler.UpdateRegistrationHandler)

			r.Post("/{tournamentID}/pools", tournamentHandler.AssignPoolsHandler)
			r.Post("/{tournamentID}/draw", tournamentHandler.PublishDrawHandler)
			r.Post("/{tournamentID}/advance/final-next-round", tournamentHandler.AdvanceFinalNextRoundHandler)
			r.Get("/{tournamentID}/matches", tournamentHandler.ListTournamentMatchesHandler)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.RequireClubAdmin)

			r.Post("/{matchID}/result", matchHandler.RecordResultHandler)
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Get("/{playerID}/disciplinary", matchHandler.ListPlayerDisciplinaryHandler)
		})
	})
}
