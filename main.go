package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitea.com/go-chi/session"
	"github.com/alecthomas/kingpin/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"

	"github.com/blogem/tasktime/authenticator"
	"github.com/blogem/tasktime/config"
	"github.com/blogem/tasktime/controllers"
	"github.com/blogem/tasktime/database"
	"github.com/blogem/tasktime/logger"
	authmiddleware "github.com/blogem/tasktime/middleware"
	"github.com/blogem/tasktime/models"
	"github.com/blogem/tasktime/report"
	"github.com/blogem/tasktime/repositories"
	"github.com/blogem/tasktime/services"
)

var (
	app = kingpin.New("tasktime", "Task time tracking service")

	envFile = app.Flag("env-file", "Path to a .env file").Default(".env").String()

	serveCmd = app.Command("serve", "Start the HTTP API").Default()

	migrateCmd = app.Command("migrate", "Apply pending database migrations")

	reportCmd = app.Command("report", "Print time reports")

	weekCmd    = reportCmd.Command("week", "Print a user's weekly timesheet")
	weekUser   = weekCmd.Flag("user", "User ID").Required().Int64()
	weekDate   = weekCmd.Flag("date", "Any date in the week (YYYY-MM-DD)").String()
	weekFormat = weekCmd.Flag("format", "Output format").Default("text").Enum("text", "yaml")
	weekColor  = weekCmd.Flag("color", "Colorize text output").Default("true").Bool()

	summaryCmd   = reportCmd.Command("summary", "Print total minutes per task")
	summaryTasks = summaryCmd.Flag("task", "Task ID (repeatable)").Required().Int64List()

	userCmd = app.Command("user", "Manage users")

	userAddCmd   = userCmd.Command("add", "Register a user")
	userAddEmail = userAddCmd.Flag("email", "Email address used to sign in").Required().String()
	userAddName  = userAddCmd.Flag("name", "Display name").Required().String()
	userAddAdmin = userAddCmd.Flag("admin", "Grant the administrator role").Bool()
	userAddRate  = userAddCmd.Flag("rate", "Hourly rate, e.g. 85.50").String()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.SlogLevel(), cfg.LogFormat)

	switch command {
	case serveCmd.FullCommand():
		err = serve(cfg)
	case migrateCmd.FullCommand():
		err = migrate(cfg)
	case weekCmd.FullCommand():
		err = printWeek(cfg)
	case summaryCmd.FullCommand():
		err = printSummary(cfg)
	case userAddCmd.FullCommand():
		err = runUserAdd(cfg)
	}

	if err != nil {
		slog.Error("command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func serve(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.InitializeDatabase(cfg.DBPath); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.CloseDB()

	repos := repositories.NewRepositories(database.GetDB())
	srvs := services.NewServices(repos, cfg.SummaryConcurrency)
	ctrl := controllers.NewControllers(srvs, repos.Audit)

	var auth authenticator.Provider
	if cfg.OIDC.Enabled() {
		provider, err := authenticator.NewOpenIDProvider(ctx, authenticator.OpenIDConfig{
			Domain:       cfg.OIDC.Domain,
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			CallbackURL:  cfg.OIDC.CallbackURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize OpenID provider: %w", err)
		}
		auth = provider
	} else {
		slog.Warn("OIDC is not configured; login routes are disabled")
	}

	sessionHandler, err := session.Sessioner(session.Options{
		Provider:    "memory",
		CookieName:  "tasktime_session",
		Secure:      cfg.UseHTTPS,
		Gclifetime:  3600,
		Maxlifetime: 3600,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize session: %w", err)
	}

	r := setupRouter(routerDeps{
		ctrl:      ctrl,
		srvs:      srvs,
		auditRepo: repos.Audit,
		auth:      auth,
		session:   sessionHandler,
		identify:  authmiddleware.SessionEmail,
		origins:   cfg.AllowedOrigins,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("tasktime starting", "port", cfg.Port, "database", cfg.DBPath)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func migrate(cfg *config.Config) error {
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database is up to date", "path", cfg.DBPath)
	return nil
}

func openServices(cfg *config.Config) (*services.Services, func(), error) {
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	repos := repositories.NewRepositories(db)
	return services.NewServices(repos, cfg.SummaryConcurrency), func() { db.Close() }, nil
}

func printWeek(cfg *config.Config) error {
	srvs, closeDB, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	date := time.Now()
	if *weekDate != "" {
		date, err = models.ParseDate(*weekDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
	}

	sheet, err := srvs.Timesheet.Week(context.Background(), *weekUser, date)
	if err != nil {
		return err
	}

	if *weekFormat == "yaml" {
		return report.WriteWeekYAML(os.Stdout, sheet)
	}
	return report.WriteWeekText(os.Stdout, sheet, *weekColor)
}

func printSummary(cfg *config.Config) error {
	srvs, closeDB, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	summaries, err := srvs.Timesheet.TaskSummaries(context.Background(), *summaryTasks, models.TimeLogFilter{})
	if err != nil {
		return err
	}

	return report.WriteSummariesYAML(os.Stdout, summaries)
}

func runUserAdd(cfg *config.Config) error {
	srvs, closeDB, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	user, err := addUser(context.Background(), srvs.User, *userAddEmail, *userAddName, *userAddAdmin, *userAddRate)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "created %s %s (id %d)\n", user.RoleName(), user.Email, user.ID)
	return nil
}

// addUser registers an active user. An empty rate leaves the user without one.
func addUser(ctx context.Context, users services.UserService, email, name string, admin bool, rate string) (*models.User, error) {
	form := &models.UserForm{
		Email: email,
		Name:  name,
		Role:  models.UserRoleMember,
	}
	if admin {
		form.Role = models.UserRoleAdmin
	}

	if rate != "" {
		amount, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("invalid --rate %q: %w", rate, err)
		}
		form.HourlyRate = decimal.NewNullDecimal(amount)
	}

	return users.CreateUser(ctx, form)
}

// routerDeps collects everything the router wires together
type routerDeps struct {
	ctrl      *controllers.Controllers
	srvs      *services.Services
	auditRepo repositories.AuditRepository
	auth      authenticator.Provider // nil disables login routes
	session   func(http.Handler) http.Handler
	identify  authmiddleware.IdentifyFunc
	origins   []string
	auditDone func(error)
}

// setupRouter configures all routes
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   deps.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler)
	if deps.session != nil {
		r.Use(deps.session)
	}

	// PUBLIC ROUTES (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status": "healthy", "service": "tasktime"}`)
	})
	if deps.auth != nil {
		r.Get("/login", deps.ctrl.Auth.Login(deps.auth))
		r.Get("/callback", deps.ctrl.Auth.Callback(deps.auth))
		r.Post("/logout", deps.ctrl.Auth.Logout)
	}

	// PROTECTED ROUTES (authentication required)
	r.Route("/api", func(r chi.Router) {
		r.Use(authmiddleware.RequireUser(deps.srvs.User, deps.identify))
		r.Use(authmiddleware.AuditLogger(deps.auditRepo, deps.auditDone))

		r.Get("/me", deps.ctrl.User.Me)

		r.Route("/time-logs", func(r chi.Router) {
			r.Post("/", deps.ctrl.TimeLog.Create)
			r.Post("/start", deps.ctrl.TimeLog.Start)
			r.Get("/{id}", deps.ctrl.TimeLog.Get)
			r.Put("/{id}", deps.ctrl.TimeLog.Update)
			r.Delete("/{id}", deps.ctrl.TimeLog.Delete)
			r.Post("/{id}/stop", deps.ctrl.TimeLog.Stop)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", deps.ctrl.Task.Index)
			r.Post("/", deps.ctrl.Task.Create)
			r.Get("/summary", deps.ctrl.Timesheet.Summaries)
			r.Get("/{id}", deps.ctrl.Task.Get)
			r.Put("/{id}/status", deps.ctrl.Task.UpdateStatus)
			r.Get("/{id}/time-logs", deps.ctrl.TimeLog.ListForTask)
			r.Get("/{id}/total", deps.ctrl.TimeLog.Total)
		})

		r.Get("/timesheet", deps.ctrl.Timesheet.Week)

		// Administration
		r.Group(func(r chi.Router) {
			r.Use(authmiddleware.RequireAdmin)

			r.Get("/users", deps.ctrl.User.Index)
			r.Post("/users", deps.ctrl.User.Create)
			r.Put("/users/{id}/rate", deps.ctrl.User.SetRate)
			r.Get("/audit", deps.ctrl.Audit.Index)
		})
	})

	return r
}
