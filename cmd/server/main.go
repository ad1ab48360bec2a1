package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shoppinglist-api/internal/database"
	"shoppinglist-api/internal/handlers"
	"shoppinglist-api/internal/logging"
	"shoppinglist-api/internal/middleware"
	"shoppinglist-api/internal/mutation"
	"shoppinglist-api/internal/realtime"
	"shoppinglist-api/internal/tls"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize logging first
	logConfig := logging.NewLogConfigFromEnv()
	logging.InitLogger(logConfig)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	s, db, err := database.OpenStoreFromEnv()
	if err != nil {
		logging.Logger.Fatalf("Failed to open document store: %v", err)
	}

	directory := realtime.NewDirectory(s, nil, realtime.NewDirectoryConfigFromEnv())
	if err := directory.Start(); err != nil {
		logging.Logger.Fatalf("Failed to start list directory sync: %v", err)
	}

	pipeline := mutation.NewPipeline(s)
	watchHandler := handlers.NewWatchHandler(s, directory, handlers.NewWatchConfigFromEnv())

	// Set up Gin router (without default logger since we'll use our own)
	router := gin.New()
	router.Use(gin.Recovery())

	securityConfig := middleware.NewSecurityConfigFromEnv()
	if err := router.SetTrustedProxies(securityConfig.TrustedProxies); err != nil {
		logging.Logger.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
	}

	// Security headers go first so every response carries them
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(middleware.NewCORSConfigFromEnv()))
	router.Use(middleware.RequestSizeLimit(securityConfig.MaxRequestBodySize))
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorSanitizer())

	rateLimitConfig := middleware.NewRateLimitConfigFromEnv()
	router.Use(middleware.GlobalRateLimiter(rateLimitConfig))
	router.Use(middleware.MethodRateLimiter(rateLimitConfig))

	handlers.RegisterRoutes(router, handlers.Routes{
		Lists:        handlers.NewListHandler(pipeline, directory),
		Items:        handlers.NewItemHandler(pipeline),
		Watch:        watchHandler,
		Health:       handlers.NewHealthHandler(s, directory, db),
		WatchLimiter: middleware.WatchRateLimiter(rateLimitConfig),
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var redirectSrv *http.Server
	tlsConfig := tls.NewConfigFromEnv()
	if tlsConfig.Enabled {
		serverTLS, err := tlsConfig.ServerConfig()
		if err != nil {
			logging.Logger.Fatalf("Failed to configure TLS: %v", err)
		}
		srv.Addr = ":" + tlsConfig.Port
		srv.TLSConfig = serverTLS

		if tlsConfig.RedirectHTTP {
			redirectSrv = &http.Server{
				Addr:              ":" + tlsConfig.HTTPPort,
				Handler:           tls.RedirectHandler(tlsConfig.Port),
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				logging.Logger.Infof("Redirecting HTTP on port %s to HTTPS", tlsConfig.HTTPPort)
				if err := redirectSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logging.Logger.Errorf("HTTP redirect server failed: %v", err)
				}
			}()
		}
	}

	go func() {
		var err error
		if srv.TLSConfig != nil {
			logging.Logger.Infof("Starting HTTPS server on port %s...", tlsConfig.Port)
			err = srv.ListenAndServeTLS("", "")
		} else {
			logging.Logger.Infof("Starting server on port %s...", port)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logging.Logger.WithField("signal", sig.String()).Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Errorf("Server shutdown failed: %v", err)
	}
	if redirectSrv != nil {
		_ = redirectSrv.Shutdown(ctx)
	}

	// watch streams are hijacked and not covered by Shutdown
	watchHandler.Close()
	directory.Close()
	if err := s.Close(); err != nil {
		logging.Logger.Errorf("Failed to close document store: %v", err)
	}
	if db != nil {
		if err := database.Close(db); err != nil {
			logging.Logger.Errorf("Failed to close database: %v", err)
		}
	}

	logging.Logger.Info("Server stopped")
}
