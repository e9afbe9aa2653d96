package httpapi

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/remontpro/frontdesk/internal/backend"
	"github.com/remontpro/frontdesk/internal/config"
	"github.com/remontpro/frontdesk/internal/http/handlers"
	"github.com/remontpro/frontdesk/internal/http/middleware"
	"github.com/remontpro/frontdesk/internal/lifecycle"
	"github.com/remontpro/frontdesk/internal/session"
	"github.com/remontpro/frontdesk/internal/viewstate"

	_ "github.com/remontpro/frontdesk/docs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var templateFuncs = template.FuncMap{
	"dict": func(pairs ...any) map[string]any {
		m := make(map[string]any, len(pairs)/2)
		for i := 0; i+1 < len(pairs); i += 2 {
			key, ok := pairs[i].(string)
			if !ok {
				continue
			}
			m[key] = pairs[i+1]
		}
		return m
	},
}

func Templates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"))
}

func Router(cfg config.Config, client *backend.Client, sessions *session.Manager, views *viewstate.Registry, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Visitor(cfg.CookieSecure))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	r.SetHTMLTemplate(Templates())
	staticRoot, _ := fs.Sub(staticFS, "static")
	r.StaticFS("/static", http.FS(staticRoot))

	h := &handlers.Handler{
		Backend:   client,
		Sessions:  sessions,
		Views:     views,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)

	r.GET("/", h.Home)
	r.GET("/create", h.IntakePage)
	r.POST("/create", h.IntakeSubmit)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.LoginSubmit)
	r.POST("/logout", h.Logout)

	disp := r.Group("/dispatcher")
	disp.Use(middleware.RequireRole(sessions, lifecycle.RoleDispatcher))
	{
		disp.GET("", h.DispatcherPage)
		disp.POST("/requests/:id/assign", h.DispatcherAssign)
		disp.POST("/requests/:id/cancel", h.DispatcherCancel)
	}

	master := r.Group("/master")
	master.Use(middleware.RequireRole(sessions, lifecycle.RoleMaster))
	{
		master.GET("", h.MasterPage)
		master.POST("/requests/:id/take", h.MasterTake)
		master.POST("/requests/:id/done", h.MasterDone)
	}

	authed := r.Group("")
	authed.Use(middleware.RequireAuth(sessions))
	{
		authed.GET("/requests/:id/history/toggle", h.HistoryToggle)
		authed.GET("/api/requests/:id/history", h.HistoryJSON)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
