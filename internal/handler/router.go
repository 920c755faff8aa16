package handler

import (
	"html/template"
	"io/fs"
	"net/http"

	"simplegest/internal/middleware"
	"simplegest/internal/service"
	"simplegest/internal/session"
	"simplegest/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps is everything the router wires together
type Deps struct {
	Sessions  *session.Manager
	Templates *template.Template
	Static    fs.FS
	// Hub is optional; without it /ws is not served
	Hub         *websocket.Hub
	CORSOrigins []string

	Users      service.UserService
	Articles   service.ArticleService
	Requests   service.RequestService
	Approvals  service.ApprovalService
	Loans      service.LoanService
	Statistics service.StatisticsService
	Audit      service.AuditService
}

// NewRouter builds the gin engine with every screen, the /ui/api endpoints,
// swagger, health and the websocket hub.
func NewRouter(d Deps, middlewares ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(middlewares...)

	if len(d.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = d.CORSOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept"}
		corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
		router.Use(cors.New(corsConfig))
	}

	router.SetHTMLTemplate(d.Templates)
	if d.Static != nil {
		router.StaticFS("/static", http.FS(d.Static))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	app := router.Group("")
	app.Use(middleware.LoadSession(d.Sessions))

	if d.Hub != nil {
		app.GET("/ws", func(c *gin.Context) {
			websocket.ServeWs(d.Hub, c)
		})
	}

	NewAuthHandler(d.Sessions, d.Users, d.Audit).RegisterRoutes(app)
	NewStatisticsHandler(d.Sessions, d.Statistics).RegisterRoutes(app)
	NewInventoryHandler(d.Sessions, d.Articles).RegisterRoutes(app)
	NewRequestHandler(d.Sessions, d.Requests, d.Articles).RegisterRoutes(app)
	NewApprovalHandler(d.Sessions, d.Approvals, d.Templates).RegisterRoutes(app)
	NewLoanHandler(d.Sessions, d.Loans).RegisterRoutes(app)
	NewUserHandler(d.Sessions, d.Users).RegisterRoutes(app)
	NewAuditHandler(d.Sessions, d.Audit).RegisterRoutes(app)

	return router
}
