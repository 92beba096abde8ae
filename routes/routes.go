package routes

import (
	"net/http"

	_ "github.com/Dosada05/spikers-tournament/docs"
	"github.com/Dosada05/spikers-tournament/handlers"
	"github.com/Dosada05/spikers-tournament/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AllowedOrigins []string
	// JWTSecretKey protects the write routes when set.
	JWTSecretKey string
}

func SetupRoutes(
	router *chi.Mux,
	opts Options,
	tournamentHandler *handlers.TournamentHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	authenticate := middleware.Authenticate(opts.JWTSecretKey)

	router.Route("/api", func(r chi.Router) {
		r.Route("/sessions/{sessionID}/tournament", func(r chi.Router) {
			r.Get("/", tournamentHandler.GetSessionTournamentHandler)
			r.With(authenticate).Post("/", tournamentHandler.StartHandler)
		})

		r.Route("/tournaments/{tournamentID}", func(r chi.Router) {
			r.Get("/", tournamentHandler.GetByIDHandler)
			r.Get("/active-match", tournamentHandler.GetActiveMatchHandler)
			r.Get("/bracket", tournamentHandler.GetBracketHandler)
			r.Get("/standings", tournamentHandler.GetStandingsHandler)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/matches/{matchID}/games", tournamentHandler.SubmitGameHandler)
				r.Post("/end", tournamentHandler.EndHandler)
			})
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
