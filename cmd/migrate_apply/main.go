// Applies the SQL files in internal/migrations against DATABASE_URL.
// Without -apply it only lists what would run.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"rtr_earnings/internal/db"
	"rtr_earnings/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	apply := flag.Bool("apply", false, "apply the migrations instead of listing them")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"), false)
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	migDir := filepath.Join("internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		logger.Fatal("read migrations dir", "error", err)
	}

	for _, f := range files {
		name := f.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		if !*apply {
			logger.Info("pending", "migration", name)
			continue
		}
		b, err := os.ReadFile(filepath.Join(migDir, name))
		if err != nil {
			logger.Fatal("read migration", "file", name, "error", err)
		}
		if _, err := pool.Exec(context.Background(), string(b)); err != nil {
			logger.Fatal("apply migration", "file", name, "error", err)
		}
		logger.Info("applied", "migration", name)
	}
}
