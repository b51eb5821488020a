package router

import (
	"errors"
	"net/http"

	"github.com/anonto42/dreamscape/backend/internal/handlers"
	"github.com/anonto42/dreamscape/backend/internal/middleware"
	"github.com/anonto42/dreamscape/backend/internal/repositories"
	"github.com/anonto42/dreamscape/backend/internal/services"
	"github.com/anonto42/dreamscape/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Deps carries everything SetupRoutes wires into services and handlers.
type Deps struct {
	Users       repositories.UserRepository
	Posts       repositories.PostRepository
	Comments    repositories.CommentRepository
	Collections repositories.CollectionRepository

	Images     services.ImageStore
	Tokens     services.TokenIssuer
	BcryptCost int
	Model      services.DreamModel

	// UploadDir is served under storage.DiskRoute when non-empty.
	UploadDir string

	Log *zap.Logger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	e.HTTPErrorHandler = errorHandler(e, log)

	e.GET("/", handlers.Index)
	e.GET("/health", handlers.HealthCheck)
	if d.UploadDir != "" {
		e.Static(storage.DiskRoute, d.UploadDir)
		log.Info("Serving uploads from disk", zap.String("dir", d.UploadDir))
	}

	// --- Services ---
	authService := services.NewAuthService(d.Users, d.Tokens, d.BcryptCost)
	socialService := services.NewSocialService(d.Users)
	userService := services.NewUserService(d.Users, d.Images, log)
	feedService := services.NewFeedService(d.Users, d.Posts, d.Comments, d.Collections, d.Images, log)
	mediaService := services.NewMediaService(d.Model)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/auth")
	handlers.NewAuthHandler(authService).RegisterAuthRoutes(authGroup)
	log.Info("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	requireAuth := middleware.JWTAuthMiddleware(authService, middleware.IsAuthErrorFunc(services.ErrUnauthenticated))

	userGroup := e.Group("/api/user", requireAuth)
	handlers.NewFollowHandler(socialService).RegisterFollowRoutes(userGroup)
	handlers.NewUserHandler(userService, feedService).RegisterProfileRoutes(userGroup)
	log.Info("User routes configured.")

	postGroup := e.Group("/api/post", requireAuth)
	handlers.NewFeedHandler(feedService).RegisterFeedRoutes(postGroup)
	handlers.NewLikeHandler(feedService).RegisterLikeRoutes(postGroup)
	handlers.NewCollectionHandler(feedService).RegisterCollectionRoutes(postGroup)
	handlers.NewCommentHandler(feedService).RegisterCommentRoutes(postGroup)
	handlers.NewPostHandler(feedService).RegisterPostRoutes(postGroup)
	log.Info("Post routes configured.")

	dalleGroup := e.Group("/api/dalle", requireAuth)
	handlers.NewDalleHandler(mediaService).RegisterDalleRoutes(dalleGroup)
	log.Info("Dalle routes configured.")

	log.Info("All routes configured.", zap.Int("routes", len(e.Routes())))
}

// errorHandler renders every error as {"message": ...} and logs server
// errors with their internal cause.
func errorHandler(e *echo.Echo, log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		var message interface{} = http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			message = he.Message
			if he.Internal != nil && code >= http.StatusInternalServerError {
				err = he.Internal
			}
		}

		if code >= http.StatusInternalServerError {
			log.Error("Request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, echo.Map{"message": message})
		}
		if err != nil {
			e.Logger.Error(err)
		}
	}
}
