package handlers

import (
	"net/http"
	"time"

	"pet-adoption-backend/internal/middleware"
	"pet-adoption-backend/internal/models"
	"pet-adoption-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Services bundles everything the router dispatches to
type Services struct {
	Users         *services.UserService
	Profiles      *services.AdopterProfileService
	Pets          *services.PetService
	Reports       *services.ReportService
	Adoptions     *services.AdoptionService
	Conversations *services.ConversationService
}

// RouterConfig holds cross-cutting HTTP settings
type RouterConfig struct {
	AllowedOrigins []string
	StorageTimeout time.Duration
	AuthLimiter    *middleware.LimiterStore
	Metrics        *middleware.Metrics
}

// NewRouter builds the HTTP API under /api/v1
func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	userHandler := NewUserHandler(svc.Users, svc.Profiles)
	petHandler := NewPetHandler(svc.Pets)
	reportHandler := NewReportHandler(svc.Reports, svc.Adoptions)
	conversationHandler := NewConversationHandler(svc.Conversations)

	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	auth := middleware.AuthMiddleware(svc.Users)
	admin := middleware.RequireRole(models.RoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.StorageTimeout(cfg.StorageTimeout))

		r.Route("/user", func(r chi.Router) {
			// Public routes
			r.Group(func(r chi.Router) {
				if cfg.AuthLimiter != nil {
					r.Use(middleware.RateLimit(cfg.AuthLimiter))
				}
				r.Post("/adopter/signup", userHandler.SignupAdopter)
				r.Post("/rehomer/signup", userHandler.SignupRehomer)
				r.Post("/signin", userHandler.Signin)
			})

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(auth)
				r.Get("/me", userHandler.GetMe)
				r.Patch("/me", userHandler.UpdateMe)
				r.Put("/me/status", userHandler.SetStatus)
				r.Post("/me/photo", userHandler.UploadPhoto)
				r.With(middleware.RequireRole(models.RoleAdopter)).Post("/me/adoption-details", userHandler.SubmitAdoptionDetails)
				r.Get("/me/adoption-details", userHandler.GetAdoptionDetails)

				r.Post("/conversations", conversationHandler.StartConversation)
				r.Get("/conversations", conversationHandler.ListConversations)
				r.With(admin).Put("/conversations/{conversation_id}/approve", conversationHandler.ApproveConversation)
				r.Post("/conversations/{conversation_id}/messages", conversationHandler.SendMessage)
				r.Get("/conversations/{conversation_id}/messages", conversationHandler.ListMessages)
				r.Post("/conversations/{conversation_id}/attachments", conversationHandler.UploadAttachment)
				r.Put("/messages/{message_id}/delivered", conversationHandler.MarkDelivered)
				r.Put("/messages/{message_id}/read", conversationHandler.MarkRead)
			})
		})

		r.Route("/pet", func(r chi.Router) {
			// Public routes
			r.Get("/", petHandler.ListPets)
			r.Get("/{pet_id}", petHandler.GetPet)
			r.Get("/{pet_id}/features", petHandler.GetFeatures)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(auth)
				r.With(middleware.RequireRole(models.RoleRehomer, models.RoleAdmin)).Post("/", petHandler.CreatePet)
				r.Put("/{pet_id}/features", petHandler.SetFeatures)
				r.Post("/{pet_id}/photo", petHandler.UploadPhoto)
				r.With(admin).Put("/{pet_id}/approve", petHandler.ApprovePet)

				r.Post("/{pet_id}/reports", reportHandler.CreateReport)
				r.With(admin).Get("/{pet_id}/reports", reportHandler.ListReports)
				r.With(admin).Put("/reports/{report_id}/status", reportHandler.ResolveReport)

				r.With(middleware.RequireRole(models.RoleAdopter)).Post("/{pet_id}/adopt", reportHandler.Adopt)
				r.Get("/{pet_id}/adoption", reportHandler.GetAdoption)
			})
		})
	})

	return r
}
