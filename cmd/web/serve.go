package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lunara/internal/apiclient"
	"lunara/internal/config"
	"lunara/internal/database"
	"lunara/internal/handlers"
	"lunara/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// ServeOptions override the environment configuration.
type ServeOptions struct {
	Port       string
	APIBaseURL string
	TLS        bool
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			if opts.Port != "" {
				cfg.Port = opts.Port
			}
			if opts.APIBaseURL != "" {
				cfg.APIBaseURL = opts.APIBaseURL
			}
			if cmd.Flags().Changed("tls") {
				cfg.TLSEnabled = opts.TLS
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.Port, "port", "p", "", "HTTP port (overrides PORT)")
	cmd.Flags().StringVar(&opts.APIBaseURL, "api", "", "backend base URL (overrides API_BASE_URL)")
	cmd.Flags().BoolVar(&opts.TLS, "tls", false, "also serve HTTPS with a self-signed certificate")

	return cmd
}

// app is the wired storefront.
type app struct {
	router   *gin.Engine
	sessions *handlers.SessionRegistry
	audit    *services.SecurityLogger
}

// newApp wires the storefront from cfg and loads the catalog once.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	storage, err := database.NewStorage(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open client storage: %w", err)
	}

	var audit *services.SecurityLogger
	if cfg.SecurityLog != "" {
		audit, err = services.NewSecurityLogger(cfg.SecurityLog)
		if err != nil {
			log.Printf("newApp - Security log disabled: %v", err)
		}
	}

	newBackend := func() *apiclient.Client {
		return apiclient.New(cfg.APIBaseURL, apiclient.WithTimeout(cfg.APITimeout))
	}

	catalog := services.NewCatalog(newBackend())
	catalog.Load(ctx)

	mailer := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SupportEmail)
	shared := services.Shared{
		Catalog:   catalog,
		Contact:   services.NewContactService(mailer, services.NewSpamDetector(), audit),
		Audit:     audit,
		Sentiment: services.NewSentimentDetector(),
	}

	// Each page session gets its own backend client so backend cookies
	// stay per browser.
	sessions := handlers.NewSessionRegistry(func(id string) *services.Storefront {
		return services.NewStorefront(shared, newBackend(), storage.Scope(id))
	}, storage, cfg.SessionTTL)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	if err := r.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
		return nil, err
	}
	if _, err := os.Stat("./static"); err == nil {
		r.Static("/static", "./static")
	}
	handlers.RegisterRoutes(r, handlers.NewHandler(sessions, catalog, cfg.TLSEnabled))

	return &app{router: r, sessions: sessions, audit: audit}, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.audit.Close()

	go a.sessions.Run(ctx, time.Minute)

	servers := []*http.Server{{Addr: ":" + cfg.Port, Handler: a.router}}
	if cfg.TLSEnabled {
		cert, err := generateSelfSignedCert()
		if err != nil {
			return fmt.Errorf("generate certificate: %w", err)
		}
		servers = append(servers, &http.Server{
			Addr:      ":" + cfg.TLSPort,
			Handler:   a.router,
			TLSConfig: &tls.Config{Certificates: []tls.Certificate{cert}},
		})
	}

	errs := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			var err error
			if srv.TLSConfig != nil {
				log.Printf("🔒 HTTPS server listening on https://localhost%s", srv.Addr)
				err = srv.ListenAndServeTLS("", "")
			} else {
				log.Printf("🚀 HTTP server listening on http://localhost%s", srv.Addr)
				err = srv.ListenAndServe()
			}
			if !errors.Is(err, http.ErrServerClosed) {
				errs <- err
			}
		}(srv)
	}

	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err := <-errs:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("runServe - Shutdown %s: %v", srv.Addr, err)
		}
	}
	return nil
}
