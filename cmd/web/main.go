package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "simplegest/api/swagger" // swagger docs
	"simplegest/internal/apiclient"
	"simplegest/internal/config"
	"simplegest/internal/database"
	"simplegest/internal/handler"
	"simplegest/internal/push"
	"simplegest/internal/repository"
	"simplegest/internal/service"
	"simplegest/internal/session"
	"simplegest/internal/storage"
	"simplegest/internal/web"
	"simplegest/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

const (
	sessionSweepInterval = 10 * time.Minute
	shutdownTimeout      = 10 * time.Second
)

// @title           SimpleGest UI API
// @version         1.0
// @description     JSON endpoints behind the SimpleGest screens' live refresh.
// @host            localhost:8080
// @BasePath        /
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *gorm.DB
	if cfg.Postgres.DSN != "" {
		db, err = database.NewConnection(cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("Database connection failed: %v", err)
		}
		log.Println("Connected to PostgreSQL successfully.")
	} else {
		log.Println("No postgres DSN configured; activity log disabled")
	}

	store, closeStore := newSessionStore(ctx, cfg, db)
	defer closeStore()

	sessions, err := session.NewManager(store, session.Options{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.Secure,
	})
	if err != nil {
		log.Fatalf("Session setup failed: %v", err)
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	if cfg.Push.URL != "" {
		go push.NewListener(cfg.Push.URL, wsHub).Run(ctx)
	}

	var archiver service.ReportArchiver
	if cfg.S3.Enabled() {
		s3Archiver, err := storage.NewS3Archiver(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("S3 setup failed: %v", err)
		}
		archiver = s3Archiver
	}

	api := apiclient.New(cfg.Backend.BaseURL, apiclient.WithTimeout(cfg.Backend.Timeout))

	var auditRepo repository.AuditRepository
	if db != nil {
		auditRepo = repository.NewAuditRepository(db)
	}
	auditService := service.NewAuditService(auditRepo)

	templates, err := web.Templates()
	if err != nil {
		log.Fatalf("Template parse failed: %v", err)
	}

	router := handler.NewRouter(handler.Deps{
		Sessions:    sessions,
		Templates:   templates,
		Static:      web.Static(),
		Hub:         wsHub,
		CORSOrigins: cfg.CORS.Origins,
		Users:       service.NewUserService(api, auditService),
		Articles:    service.NewArticleService(api, auditService, wsHub),
		Requests:    service.NewRequestService(api, auditService),
		Approvals:   service.NewApprovalService(api, auditService, archiver),
		Loans:       service.NewLoanService(api, auditService),
		Statistics:  service.NewStatisticsService(api),
		Audit:       auditService,
	}, gin.Logger(), gin.Recovery())

	ln, err := net.Listen("tcp", ":"+cfg.Server.Port)
	if err != nil {
		log.Fatalf("Listen failed: %v", err)
	}
	log.Printf("Server listening on :%s (backend %s)", cfg.Server.Port, api.BaseURL())
	if err := serve(ctx, &http.Server{Handler: router}, ln); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server exited")
}

// serve runs srv on ln until ctx is done, then lets in-flight requests finish
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newSessionStore picks the configured backend and starts expiry sweeping where the
// store does not expire entries itself.
func newSessionStore(ctx context.Context, cfg config.Config, db *gorm.DB) (session.Store, func()) {
	switch cfg.Session.Store {
	case "mongo":
		client, mdb, err := database.NewMongo(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
		if err != nil {
			log.Fatalf("MongoDB connection failed: %v", err)
		}
		store := session.NewMongoStore(mdb)
		if err := store.EnsureIndexes(ctx); err != nil {
			log.Printf("WARNING: Failed to create session indexes: %v", err)
		}
		log.Println("Sessions stored in MongoDB.")
		return store, func() { _ = client.Disconnect(context.Background()) }

	case "postgres":
		if db == nil {
			log.Fatal("session store postgres requires postgres.dsn")
		}
		repo := repository.NewSessionRepository(db)
		go sweep(ctx, func() {
			if n, err := repo.DeleteExpired(ctx); err != nil {
				log.Printf("session sweep: %v", err)
			} else if n > 0 {
				log.Printf("session sweep: removed %d expired sessions", n)
			}
		})
		log.Println("Sessions stored in PostgreSQL.")
		return repo, func() {}

	default:
		store := session.NewMemoryStore()
		go sweep(ctx, func() { store.Sweep() })
		return store, func() {}
	}
}

func sweep(ctx context.Context, fn func()) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
