package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	"painel.org/internal/auth"
	"painel.org/internal/config"
	"painel.org/internal/httpapi"
	"painel.org/internal/obs"
	"painel.org/internal/report"
	"painel.org/internal/upstream"
)

var version = "0.3.1"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("PAINEL_COMMIT"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.Printf("Starting painel-api %s (%s)", version, cfg)

	// Data sources. Every pool is optional except the login store; routes
	// backed by a missing pool answer 503.
	loginDB := mustOpenPG(cfg.Data.LoginDSN, "login")
	if loginDB == nil {
		log.Fatal("PAINEL_LOGIN_DSN is required")
	}
	erpDB := mustOpenPG(cfg.Data.ERPDSN, "erp")
	payrollDB := mustOpenPG(cfg.Data.PayrollDSN, "payroll")

	var crmDB *sql.DB
	if cfg.Data.CRMPath != "" {
		crmDB, err = sql.Open("sqlite3", cfg.Data.CRMPath)
		if err != nil {
			log.Fatalf("open crm snapshot: %v", err)
		}
		// The legacy snapshot is a single file; keep concurrency at one writer.
		crmDB.SetMaxOpenConns(1)
	}

	// Auth core. A missing secret already failed config.Load.
	tokens, err := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatalf("auth tokens: %v", err)
	}
	authSvc, err := auth.NewService(auth.NewPGStore(loginDB), tokens)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	// Upstream plant APIs.
	var bi *upstream.BI
	if cfg.Data.BIBaseURL != "" {
		client, err := upstream.NewClient(cfg.Data.BIBaseURL)
		if err != nil {
			log.Fatalf("bi client: %v", err)
		}
		bi = upstream.NewBI(client)
	}
	var plannix *upstream.Plannix
	if cfg.Data.PlannixURL != "" {
		client, err := upstream.NewClient(cfg.Data.PlannixURL)
		if err != nil {
			log.Fatalf("plannix client: %v", err)
		}
		plannix = upstream.NewPlannix(client)
	}

	readyProbe := httpapi.ReadyProbe{DBs: []*sql.DB{loginDB, erpDB, payrollDB, crmDB}}
	api := httpapi.New(httpapi.Options{
		Auth:          authSvc,
		Reports:       report.NewService(erpDB, payrollDB, crmDB),
		BI:            bi,
		Plannix:       plannix,
		ReadyProbe:    readyProbe,
		Version:       version,
		RateBurst:     cfg.Server.RateBurst,
		RatePerSecond: cfg.Server.RatePerSecond,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	var grpcSrv *grpc.Server
	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			log.Fatalf("grpc listen: %v", err)
		}
		grpcSrv = grpc.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcSrv, httpapi.NewGRPCHealth(readyProbe))
		go func() {
			if err := grpcSrv.Serve(lis); err != nil {
				log.Fatalf("grpc serve: %v", err)
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	for _, db := range []*sql.DB{loginDB, erpDB, payrollDB, crmDB} {
		if db != nil {
			_ = db.Close()
		}
	}
	log.Println("Stopped")
}

func mustOpenPG(dsn, name string) *sql.DB {
	if dsn == "" {
		return nil
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("open %s db: %v", name, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db
}
