package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/matheuszbb/emprestimos/internal/config"
	"github.com/matheuszbb/emprestimos/internal/handler"
	"github.com/matheuszbb/emprestimos/internal/middleware"
	"github.com/matheuszbb/emprestimos/internal/repository"
	"github.com/matheuszbb/emprestimos/internal/service"
	"github.com/matheuszbb/emprestimos/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	if err := repository.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, logger, cfg)
	h := handler.NewHandler(svc, logger, cfg)
	mailer := email.NewSender(cfg, logger)

	// Daily e-mail digest of due and overdue installments
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.ReminderCron, func() {
		if err := svc.SendDueReminders(mailer); err != nil {
			logger.Errorf("Reminder digest failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule reminder digest: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/robots.txt", h.RobotsTxt).Methods("GET")
	r.HandleFunc("/sitemap.xml", h.SitemapXML).Methods("GET")

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/clients", h.CreateClient).Methods("POST")
	authRouter.HandleFunc("/clients", h.ListClients).Methods("GET")
	authRouter.HandleFunc("/clients/{id:[0-9]+}", h.GetClient).Methods("GET")
	authRouter.HandleFunc("/clients/{id:[0-9]+}", h.UpdateClient).Methods("PUT")
	authRouter.HandleFunc("/clients/{id:[0-9]+}", h.DeleteClient).Methods("DELETE")
	authRouter.HandleFunc("/clients/{id:[0-9]+}/contacts", h.CreateClientContact).Methods("POST")
	authRouter.HandleFunc("/clients/{id:[0-9]+}/contacts", h.ListClientContacts).Methods("GET")
	authRouter.HandleFunc("/contacts/{id:[0-9]+}", h.DeleteContact).Methods("DELETE")

	authRouter.HandleFunc("/loans", h.CreateLoan).Methods("POST")
	authRouter.HandleFunc("/loans", h.ListLoans).Methods("GET")
	authRouter.HandleFunc("/loans/{id:[0-9]+}", h.GetLoan).Methods("GET")
	authRouter.HandleFunc("/loans/{id:[0-9]+}", h.UpdateLoan).Methods("PUT")
	authRouter.HandleFunc("/loans/{id:[0-9]+}", h.DeleteLoan).Methods("DELETE")
	authRouter.HandleFunc("/loans/{id:[0-9]+}/installments", h.ListLoanInstallments).Methods("GET")
	authRouter.HandleFunc("/loans/{id:[0-9]+}/installments", h.CreateLoanInstallment).Methods("POST")
	authRouter.HandleFunc("/loans/{id:[0-9]+}/receipt", h.DownloadLoanReceipt).Methods("GET")
	authRouter.HandleFunc("/loans/{id:[0-9]+}/receipt", h.UploadLoanReceipt).Methods("PUT")

	authRouter.HandleFunc("/installments/{id:[0-9]+}", h.GetInstallment).Methods("GET")
	authRouter.HandleFunc("/installments/{id:[0-9]+}", h.UpdateInstallment).Methods("PUT")
	authRouter.HandleFunc("/installments/{id:[0-9]+}", h.DeleteInstallment).Methods("DELETE")
	authRouter.HandleFunc("/installments/{id:[0-9]+}/receipt", h.DownloadInstallmentReceipt).Methods("GET")
	authRouter.HandleFunc("/installments/{id:[0-9]+}/receipt", h.UploadInstallmentReceipt).Methods("PUT")

	authRouter.HandleFunc("/bot-tokens", h.CreateBotToken).Methods("POST")
	authRouter.HandleFunc("/chats", h.CreateChat).Methods("POST")
	authRouter.HandleFunc("/subscriptions", h.CreateSubscription).Methods("POST")
	authRouter.HandleFunc("/subscriptions", h.ListSubscriptions).Methods("GET")
	authRouter.HandleFunc("/subscriptions/{id:[0-9]+}", h.DeleteSubscription).Methods("DELETE")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
