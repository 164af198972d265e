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

	"orderdesk.dev/internal/directory"
	"orderdesk.dev/internal/httpapi"
	"orderdesk.dev/internal/obs"
	"orderdesk.dev/internal/orders"
	"orderdesk.dev/internal/store/pg"
	"orderdesk.dev/internal/stream"
)

var (
	version = "0.3.1"
	commit  = "none"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	users := directory.Demo()
	events := stream.New()

	// Store selection: Postgres when a DSN is set, a JSON file when a path
	// is set, otherwise in-memory (fresh demo state on every restart).
	var (
		store orders.Store
		db    *sql.DB
	)
	switch {
	case os.Getenv("ORDERDESK_PG_DSN") != "":
		pgStore, err := pg.Open(os.Getenv("ORDERDESK_PG_DSN"))
		if err != nil {
			log.Fatalf("open postgres: %v", err)
		}
		db = pgStore.DB()
		store = pgStore
	case os.Getenv("ORDERDESK_ORDERS_FILE") != "":
		fileStore, err := orders.NewFileStore(os.Getenv("ORDERDESK_ORDERS_FILE"), os.Getenv("ORDERDESK_ORDERS_BACKUP_FILE"))
		if err != nil {
			log.Fatalf("open orders file: %v", err)
		}
		store = fileStore
	default:
		store = orders.NewMemory(nil)
	}

	svc, err := orders.NewService(store, users, orders.WithStream(events))
	if err != nil {
		log.Fatalf("new service: %v", err)
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, svc, users, events)

	addr := os.Getenv("ORDERDESK_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting orderdesk-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// Optional gRPC health endpoint for infra probes.
	grpcSrv := httpapi.NewGRPCServer(httpapi.ReadyProbe{DB: db})
	if grpcAddr := os.Getenv("ORDERDESK_GRPC_ADDR"); grpcAddr != "" {
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			log.Fatalf("grpc listen: %v", err)
		}
		log.Printf("Serving gRPC health on %s", grpcAddr)
		go func() {
			if err := grpcSrv.Serve(lis); err != nil {
				log.Printf("grpc serve: %v", err)
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	grpcSrv.GracefulStop()
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
