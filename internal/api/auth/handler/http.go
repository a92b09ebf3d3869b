package authHandler

import (
	authService "VisageAuth/internal/api/auth/service"
	"VisageAuth/internal/middleware"
	"VisageAuth/pkg/s3"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	log         *logrus.Logger
	authService authService.AuthService
	validator   *validator.Validate
	middleware  middleware.Middleware
	s3Client    s3.ItfS3
}

func New(
	log *logrus.Logger,
	as authService.AuthService,
	validate *validator.Validate,
	middleware middleware.Middleware,
	s3Client s3.ItfS3) *AuthHandler {
	return &AuthHandler{
		log:         log,
		authService: as,
		validator:   validate,
		middleware:  middleware,
		s3Client:    s3Client,
	}
}

func (h *AuthHandler) Start(srv fiber.Router) {
	auth := srv.Group("/auth")
	auth.Post("/login", h.middleware.NewRateLimiter, h.HandleLogin)
	auth.Post("/login-face", h.middleware.NewRateLimiter, h.HandleFaceLogin)
	auth.Post("/verify-token", h.HandleVerifyToken)
	auth.Post("/refresh-token", h.HandleRefreshToken)
	auth.Post("/logout", h.HandleLogout)
	auth.Get("/history", h.middleware.NewTokenMiddleware, h.HandleLoginHistory)

	users := srv.Group("/users")
	users.Post("/", h.HandleRegister)
	users.Get("/", h.middleware.NewTokenMiddleware, h.HandleListAccounts)
	users.Post("/profile-photo", h.middleware.NewTokenMiddleware, h.HandleUpdateProfilePhoto)
	users.Get("/:id", h.middleware.NewTokenMiddleware, h.HandleGetAccountById)
	users.Patch("/", h.middleware.NewTokenMiddleware, h.HandleUpdateAccount)
	users.Delete("/:id", h.middleware.NewTokenMiddleware, h.HandleDeactivateAccount)

	faces := srv.Group("/faces")
	faces.Post("/", h.middleware.NewTokenMiddleware, h.HandleEnrollFace)
	faces.Post("/batch", h.middleware.NewTokenMiddleware, h.HandleEnrollFaceBatch)
	faces.Get("/mine", h.middleware.NewTokenMiddleware, h.HandleListMyEnrollments)
	faces.Get("/account/:id", h.middleware.NewTokenMiddleware, h.HandleListAccountEnrollments)
	faces.Get("/stats", h.middleware.NewTokenMiddleware, h.HandleEnrollmentStats)
	faces.Post("/test-recognition", h.middleware.NewTokenMiddleware, h.HandleTestRecognition)
	faces.Patch("/:id/primary", h.middleware.NewTokenMiddleware, h.HandleSetPrimary)
	faces.Delete("/", h.middleware.NewTokenMiddleware, h.HandleDeleteAllEnrollments)
	faces.Delete("/:id", h.middleware.NewTokenMiddleware, h.HandleDeleteEnrollment)
}
