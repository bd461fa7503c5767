package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/loftable/teamsync/internal/api/handler"
	customMiddleware "github.com/loftable/teamsync/internal/api/middleware"
	"github.com/loftable/teamsync/internal/backend/postgres"
	"github.com/loftable/teamsync/internal/config"
	"github.com/loftable/teamsync/internal/realtime"
	"github.com/loftable/teamsync/internal/security"
	"github.com/loftable/teamsync/internal/service"
	"github.com/loftable/teamsync/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures the HTTP router. The returned bridge must
// be closed on shutdown to drain realtime subscriptions.
func NewRouter(cfg *config.Config, db *postgres.DB, rdb *redis.Client) (http.Handler, *realtime.Bridge) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.WriteTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize security components
	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	// Initialize the backend client. Member writes publish change events
	// through the Redis source so other connected clients converge.
	source := realtime.NewRedisSource(rdb, log.Logger)
	client := postgres.NewClient(db, source, log.Logger)

	// Initialize the member cache and the bridge feeding it
	memberStore := store.NewMemberStore(client, log.Logger)
	bridge := realtime.NewBridge(source, memberStore, log.Logger)

	// Initialize services
	memberService := service.NewMemberService(memberStore, client, client, log.Logger)
	workspaceService := service.NewWorkspaceService(client, log.Logger)
	documentService := service.NewDocumentService(client, log.Logger)
	userSearch, err := service.NewUserSearch(client, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize user search")
	}

	// Initialize handlers
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService)
	memberHandler := handler.NewMemberHandler(memberService, bridge)
	documentHandler := handler.NewDocumentHandler(documentService, memberService)
	userHandler := handler.NewUserHandler(userSearch, memberService)

	// Auth middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db, rdb))

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/workspaces/{workspaceID}", func(r chi.Router) {
				r.Use(customMiddleware.WorkspaceContext)

				r.Get("/", workspaceHandler.Get)
				r.Patch("/", workspaceHandler.Update)
				r.Delete("/", workspaceHandler.Delete)

				// User search feeds the invite flow
				r.Get("/users/search", userHandler.Search)

				// Member routes
				r.Route("/members", func(r chi.Router) {
					r.Get("/", memberHandler.List)
					r.Post("/", memberHandler.Add)
					r.Post("/bulk/remove", memberHandler.BulkRemove)
					r.Post("/bulk/role", memberHandler.BulkUpdateRole)
					r.Post("/subscribe", memberHandler.Subscribe)
					r.Post("/unsubscribe", memberHandler.Unsubscribe)

					r.Route("/{memberID}", func(r chi.Router) {
						r.Patch("/", memberHandler.UpdateRole)
						r.Delete("/", memberHandler.Remove)
					})
				})

				// Document routes
				r.Route("/documents", func(r chi.Router) {
					r.Get("/", documentHandler.List)
					r.Post("/", documentHandler.Upload)

					r.Route("/{documentID}", func(r chi.Router) {
						r.Delete("/", documentHandler.Delete)
						r.Get("/download", documentHandler.Download)
					})
				})
			})
		})
	})

	return r, bridge
}
