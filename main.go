package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"swapstation-cloud/internal/alerts"
	alertnotify "swapstation-cloud/internal/alerts/notify"
	"swapstation-cloud/internal/audit"
	"swapstation-cloud/internal/auth"
	"swapstation-cloud/internal/cabinet"
	cabinethttp "swapstation-cloud/internal/cabinet/interfaces/http"
	masterdatarepo "swapstation-cloud/internal/masterdata/infrastructure/postgres"
	masterdatahttp "swapstation-cloud/internal/masterdata/interfaces/http"
	"swapstation-cloud/internal/observability/metrics"
	masterdatadir "swapstation-cloud/internal/revenue/adapters/masterdata"
	revenueapp "swapstation-cloud/internal/revenue/application"
	revenue "swapstation-cloud/internal/revenue/domain"
	revenuehttp "swapstation-cloud/internal/revenue/interfaces/http"
	"swapstation-cloud/internal/revenue/stripeledger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	stationRepo := masterdatarepo.NewStationRepository(db)
	userRepo := masterdatarepo.NewUserRepository(db)
	scanRepo := masterdatarepo.NewScanRepository(db)

	location, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		logger.Fatalf("timezone %q error: %v", cfg.ReportTimezone, err)
	}
	resolver, err := revenue.NewResolver(location, revenue.SystemClock{})
	if err != nil {
		logger.Fatalf("window resolver error: %v", err)
	}
	ledger, err := stripeledger.NewClient(cfg.StripeBaseURL, cfg.StripeAPIKey)
	if err != nil {
		logger.Fatalf("ledger client error: %v", err)
	}
	directory, err := masterdatadir.NewDirectory(stationRepo)
	if err != nil {
		logger.Fatalf("station directory error: %v", err)
	}
	reportService, err := revenueapp.NewReportService(ledger, directory, resolver)
	if err != nil {
		logger.Fatalf("report service error: %v", err)
	}
	reportHandler, err := revenuehttp.NewHandler(reportService, logger)
	if err != nil {
		logger.Fatalf("report handler error: %v", err)
	}

	masterdataHandler, err := masterdatahttp.NewHandler(stationRepo, userRepo, scanRepo, auditRepo)
	if err != nil {
		logger.Fatalf("masterdata handler error: %v", err)
	}

	var cabinetClient *cabinet.Client
	if cfg.CabinetBaseURL != "" {
		cabinetClient, err = cabinet.NewClient(cfg.CabinetBaseURL, cfg.CabinetUsername, cfg.CabinetPassword)
		if err != nil {
			logger.Fatalf("cabinet client error: %v", err)
		}
	}

	alertsCfg, err := alerts.LoadConfig()
	if err != nil {
		logger.Fatalf("alerts config error: %v", err)
	}
	if alertsCfg.Enabled() && cabinetClient != nil {
		notifier := alertnotify.NewWebhookNotifier(alertsCfg.WebhookURL)
		monitor, err := alerts.NewStatusMonitor(
			stationRepo,
			cabinetClient,
			notifier,
			logger,
			alerts.WithPollInterval(alertsCfg.Interval()),
			alerts.WithLowBatteryPct(alertsCfg.LowBatteryPct),
		)
		if err != nil {
			logger.Fatalf("status monitor error: %v", err)
		}
		go monitor.Run(context.Background())
		logger.Printf("status monitor polling every %s", alertsCfg.Interval())
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/rents/", reportHandler)
	mux.Handle("/api/v1/stations", masterdataHandler)
	mux.Handle("/api/v1/stations/", masterdataHandler)
	mux.Handle("/api/v1/users", masterdataHandler)
	mux.Handle("/api/v1/users/", masterdataHandler)
	mux.Handle("/api/v1/scans", masterdataHandler)
	mux.Handle("/api/v1/scans/", masterdataHandler)
	if cabinetClient != nil {
		cabinetHandler, err := cabinethttp.NewHandler(cabinetClient, auditRepo)
		if err != nil {
			logger.Fatalf("cabinet handler error: %v", err)
		}
		mux.Handle("/api/v1/cabinet/", cabinetHandler)
	}
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL     string
	HTTPAddr        string
	ReportTimezone  string
	StripeBaseURL   string
	StripeAPIKey    string
	CabinetBaseURL  string
	CabinetUsername string
	CabinetPassword string
	JWTSecret       string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:     getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8080"),
		ReportTimezone:  getenvDefault("REVENUE_TIMEZONE", "America/Chicago"),
		StripeBaseURL:   getenvDefault("STRIPE_API_BASE", "https://api.stripe.com"),
		StripeAPIKey:    getenvDefault("STRIPE_API_KEY", ""),
		CabinetBaseURL:  getenvDefault("CABINET_BASE_URL", ""),
		CabinetUsername: getenvDefault("CABINET_USERNAME", ""),
		CabinetPassword: getenvDefault("CABINET_PASSWORD", ""),
		JWTSecret:       getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	// A missing Stripe key is tolerated at startup; report requests
	// answer 503 until the key is configured.
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
