package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"route-schedule-service/internal/adapters/store"
	"route-schedule-service/internal/api"
	"route-schedule-service/internal/config"
	"route-schedule-service/internal/geo"
	"route-schedule-service/internal/platform/db"
	"route-schedule-service/internal/ports"
	"route-schedule-service/internal/services"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires a concrete route store (SQLite, Postgres, or Redis) behind the
// store port and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")

	estimator := geo.Estimator{
		SpeedMPH:      floatEnv("SPEED_MPH", 30),
		BufferMinutes: intEnv("TRAVEL_BUFFER_MINUTES", 10),
	}

	buildCfg := services.BuildConfig{
		DefaultVisitDuration: time.Duration(intEnv("DEFAULT_VISIT_MINUTES", 120)) * time.Minute,
		FirstStopAtDayStart:  config.Get("FIRST_STOP_AT_DAY_START", "true") == "true",
	}

	routeStore, closeStore, err := openStore()
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	builder := services.NewBuilder(routeStore, estimator, buildCfg)
	recalc := services.NewRecalculator(builder)
	router := api.NewRouter(builder, recalc)

	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openStore picks the persistence backend: Redis when REDIS_ADDR is set,
// Postgres when DATABASE_URL is set, local SQLite otherwise.
func openStore() (ports.RouteStore, func(), error) {
	if addr := strings.TrimSpace(os.Getenv("REDIS_ADDR")); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		log.Printf("Using redis route store addr=%s", addr)
		return store.NewRedisRouteStore(client), func() { _ = client.Close() }, nil
	}

	if databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL")); databaseURL != "" {
		pg, err := db.Open(databaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := store.InitSQLSchema(pg); err != nil {
			pg.Close()
			return nil, nil, err
		}
		log.Println("Using postgres route store")
		return store.NewSQLRouteStore(pg), func() { pg.Close() }, nil
	}

	dbPath := config.Get("DB_PATH", "data/routes.db")
	lite, err := openSqlite(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := store.InitSqliteSchema(lite); err != nil {
		lite.Close()
		return nil, nil, err
	}
	log.Printf("Using sqlite route store path=%s", dbPath)
	return store.NewSqliteRouteStore(lite), func() { lite.Close() }, nil
}

func openSqlite(dbPath string) (*sql.DB, error) {
	lite, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := lite.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return lite, nil
}

func floatEnv(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("invalid %s=%q: %v", key, v, err)
	}
	return f
}

func intEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid %s=%q: %v", key, v, err)
	}
	return n
}
