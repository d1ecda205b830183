package router

import (
	"net/http"

	"agora/internal/config"
	"agora/internal/handlers"
	"agora/internal/middleware"
	"agora/internal/services"
	"agora/internal/utils"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps is everything the HTTP layer needs. main builds it once.
type Deps struct {
	Config   *config.Config
	Log      *zap.Logger
	Auth     *services.AuthService
	Content  *services.ContentService
	Listings *services.ListingService
	Markdown *utils.MarkdownRenderer
}

// New builds the engine: middleware, sessions, templates, static files and routes.
func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(d.Log), middleware.RequestLogger(d.Log))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.MaxMultipartMemory = d.Config.MaxUploadBytes()

	store := cookie.NewStore([]byte(d.Config.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(d.Config.SessionName, store))

	r.HTMLRender = LoadTemplates(d.Config.TemplatesDir)

	r.Static("/static", d.Config.StaticDir)
	r.Static("/uploads", d.Config.UploadDir)

	r.Use(middleware.LoadUser(d.Auth, d.Log))

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	authHandler := handlers.NewAuthHandler(d.Auth, d.Log)
	postHandler := handlers.NewPostHandler(d.Content, d.Markdown, d.Log)
	listingHandler := handlers.NewListingHandler(d.Listings)
	authLimit := middleware.NewRateLimiter(d.Config.AuthRatePerMinute, d.Log).Middleware()

	// Public routes
	r.GET("/", listingHandler.Index)
	r.GET("/forum", listingHandler.Forum)
	r.GET("/marketplace", listingHandler.Marketplace)
	r.GET("/post/:id", postHandler.Detail)

	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", authLimit, authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authLimit, authHandler.Login)

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/logout", authHandler.Logout)
		authorized.GET("/profile", listingHandler.Profile)

		authorized.GET("/create_post", postHandler.ShowCreate)
		authorized.POST("/create_post", postHandler.Create)
		authorized.GET("/edit_post/:id", postHandler.ShowEdit)
		authorized.POST("/edit_post/:id", postHandler.Update)
		authorized.POST("/delete_post/:id", postHandler.Delete)

		authorized.POST("/post/:id/comment", postHandler.AddComment)
		authorized.POST("/comment/:id/delete", postHandler.DeleteComment)
	}

	r.NoRoute(func(c *gin.Context) {
		handlers.RenderError(c, http.StatusNotFound, "The page you are looking for does not exist.")
	})
}
