package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"painel.org/internal/auth"
	"painel.org/internal/migrate"
)

func main() {
	dir := flag.String("dir", "migrations", "directory holding *.up.sql/*.down.sql files")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	dsn := os.Getenv("PAINEL_LOGIN_DSN")
	if dsn == "" {
		log.Fatal("PAINEL_LOGIN_DSN is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	runner := migrate.NewRunner(db, *dir)
	switch command {
	case "up":
		if err := runner.Up(ctx); err != nil {
			log.Fatalf("up: %v", err)
		}
		log.Println("migrations applied")
	case "down":
		if err := runner.Down(ctx); err != nil {
			log.Fatalf("down: %v", err)
		}
		log.Println("last migration rolled back")
	case "status":
		applied, err := runner.Status(ctx)
		if err != nil {
			log.Fatalf("status: %v", err)
		}
		if len(applied) == 0 {
			fmt.Println("no migrations applied")
			return
		}
		for _, name := range applied {
			fmt.Println(name)
		}
	case "seed":
		username := os.Getenv("PAINEL_SEED_USERNAME")
		if username == "" {
			username = "admin"
		}
		password := os.Getenv("PAINEL_SEED_PASSWORD")
		if password == "" {
			log.Fatal("PAINEL_SEED_PASSWORD is required for seed")
		}
		digest, err := auth.HashPassword(password)
		if err != nil {
			log.Fatalf("hash seed password: %v", err)
		}
		perms := auth.EncodePermissions(auth.PermissionSet{
			auth.PermReportsRead: true,
			auth.PermCRMRead:     true,
			auth.PermPlantRead:   true,
			auth.PermUsersManage: true,
		})
		if err := runner.Seed(ctx, username, "Administrator", digest, perms); err != nil {
			log.Fatalf("seed: %v", err)
		}
		log.Printf("seeded administrator %q (no-op if it already existed)", username)
	default:
		log.Fatalf("unknown command %q (want up, down, status or seed)", command)
	}
}
