package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openshelf/openshelf/pkg/account"
	"github.com/openshelf/openshelf/pkg/auth"
	"github.com/openshelf/openshelf/pkg/config"
	"github.com/openshelf/openshelf/pkg/library"
	"github.com/openshelf/openshelf/pkg/notification"
	"github.com/openshelf/openshelf/pkg/tasks"
	"github.com/openshelf/openshelf/pkg/token"
)

const verificationEmailText = `Hi {{.Name}},

Welcome! Please verify your email address by visiting the link below:

{{.Link}}

The link expires in 15 minutes.`

const verificationEmailHTML = `<p>Hi {{.Name}},</p>
<p>Welcome! Please verify your email address by clicking the link below:</p>
<p><a href="{{.Link}}">Verify email</a></p>
<p>The link expires in 15 minutes.</p>`

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	var cfg config.Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.ToDatabaseURL())
	if err != nil {
		slog.Error("Failed to create database pool", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	notifier, err := notification.NewEmailNotifier(notification.SMTPConfig{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		TLS:      cfg.Email.TLS,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
	})
	if err != nil {
		slog.Error("Failed to create email notifier", "err", err)
		os.Exit(1)
	}

	notificationManager := notification.NewNotificationManager(notifier)
	notificationManager.RegisterNotice(notification.NoticeEmailVerification, notification.NoticeTemplate{
		Subject: "Verify your email address",
		Text:    verificationEmailText,
		Html:    verificationEmailHTML,
	})

	tokenService := token.NewSessionTokenService(
		cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience,
		token.WithSessionExpiry(cfg.JWT.SessionExpiry),
	)
	cookieSetter := token.NewCookieSetter(cfg.JWT.CookieSecure)

	accountRepo := account.NewPostgresAccountRepository(pool)
	accountService := account.NewAccountService(
		accountRepo,
		&account.BcryptHasher{},
		notificationManager,
		tokenService,
		cfg.Server.BaseURL,
	)
	accountHandle := account.NewHandle(accountService, cookieSetter)

	taskService := tasks.NewTaskService(tasks.NewPostgresTaskRepository(pool), accountRepo)
	taskHandle := tasks.NewHandle(taskService)

	libraryService := library.NewLibraryService(
		library.NewPostgresBranchRepository(pool),
		library.NewPostgresShelfRepository(pool),
		library.NewPostgresLibrarianRepository(pool),
		accountRepo,
	)
	libraryHandle := library.NewHandle(libraryService)

	ja := auth.NewJWTAuth(cfg.JWT.Secret)
	protected := []func(http.Handler) http.Handler{
		auth.Verifier(ja),
		auth.Authenticator(ja),
		auth.ActorMiddleware,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/users", func(r chi.Router) {
		accountHandle.Routes(r, protected...)
	})
	r.Route("/api/tasks", func(r chi.Router) {
		taskHandle.Routes(r, protected...)
	})
	r.Route("/api/library", func(r chi.Router) {
		libraryHandle.Routes(r, protected...)
	})

	slog.Info("Starting server", "addr", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, r); err != nil {
		slog.Error("Server exited", "err", err)
		os.Exit(1)
	}
}
