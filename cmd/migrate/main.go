package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS orders (
		id       TEXT PRIMARY KEY,
		org      TEXT NOT NULL,
		sold_by  TEXT NOT NULL,
		customer TEXT NOT NULL,
		items    JSONB NOT NULL DEFAULT '[]'::jsonb,
		status   TEXT NOT NULL DEFAULT 'pending'
	)`,
	`CREATE TABLE IF NOT EXISTS orders_backup (
		id       TEXT PRIMARY KEY,
		org      TEXT NOT NULL,
		sold_by  TEXT NOT NULL,
		customer TEXT NOT NULL,
		items    JSONB NOT NULL DEFAULT '[]'::jsonb,
		status   TEXT NOT NULL DEFAULT 'pending'
	)`,
	`CREATE INDEX IF NOT EXISTS orders_org_idx ON orders (org)`,
}

var drop = []string{
	`DROP TABLE IF EXISTS orders`,
	`DROP TABLE IF EXISTS orders_backup`,
}

func main() {
	log.SetFlags(0)
	dsn := flag.String("dsn", os.Getenv("ORDERDESK_PG_DSN"), "PostgreSQL DSN")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or ORDERDESK_PG_DSN")
	}
	if len(flag.Args()) == 0 {
		log.Fatal("usage: migrate [up|down]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var stmts []string
	switch flag.Arg(0) {
	case "up":
		stmts = ddl
	case "down":
		stmts = drop
	default:
		log.Fatalf("unknown command %q", flag.Arg(0))
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("migrate %s: %v", flag.Arg(0), err)
		}
	}
	log.Printf("migrate %s: done", flag.Arg(0))
}
