package handler

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mindan-edu/mathtutor/internal/config"
	"github.com/mindan-edu/mathtutor/internal/middleware"
	"github.com/mindan-edu/mathtutor/internal/service"
)

// Handler holds all dependencies needed by the HTTP handlers.
type Handler struct {
	cfg            *config.Config
	authService    *service.AuthService
	tutorService   *service.TutorService
	sessionService *service.SessionService
	catalogService *service.CatalogService
	ocrService     *service.OCRService
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Cfg            *config.Config
	AuthService    *service.AuthService
	TutorService   *service.TutorService
	SessionService *service.SessionService
	CatalogService *service.CatalogService
	OCRService     *service.OCRService
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		cfg:            deps.Cfg,
		authService:    deps.AuthService,
		tutorService:   deps.TutorService,
		sessionService: deps.SessionService,
		catalogService: deps.CatalogService,
		ocrService:     deps.OCRService,
	}
}

// Router builds the gin engine with all routes registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recover())
	r.Use(middleware.Logging())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     h.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Public
	r.GET("/", h.Health)
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)

	// Protected
	protected := r.Group("/")
	protected.Use(middleware.RequireAuth(h.authService))
	{
		protected.POST("/exam-question", h.ExamQuestion)
		protected.POST("/chat", h.Chat)
		protected.GET("/chat-history", h.ChatHistory)
		protected.DELETE("/chat-session/:id", h.DeleteSession)
	}

	return r
}
