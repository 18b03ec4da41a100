package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/eliaswendt/mcfp-optimizer/internal/config"
	"github.com/eliaswendt/mcfp-optimizer/internal/db"
	"github.com/eliaswendt/mcfp-optimizer/internal/itinerary"
	"github.com/eliaswendt/mcfp-optimizer/internal/pathfile"
)

// pathStore is implemented by the SQLite and Postgres path stores
type pathStore interface {
	EnsureSchema(ctx context.Context) error
	LatestImportRun(ctx context.Context) (*db.ImportRun, error)
	ImportGroupPaths(ctx context.Context, sourceFile string, importedAt time.Time, rows []db.GroupPath) (string, error)
	Close() error
}

func main() {
	cfg := config.Load()

	// Command line flags
	dbPath := flag.String("db", cfg.DatabasePath, "Path to SQLite database")
	databaseURL := flag.String("database-url", cfg.DatabaseURL, "Postgres connection URL; takes precedence over -db")
	tableFile := flag.String("file", "", "Pipe-delimited table with group_id and path columns")
	flag.Parse()

	if *tableFile == "" {
		log.Fatal("-file is required")
	}

	ctx := context.Background()
	store, err := openStore(ctx, *dbPath, *databaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	runID, err := importTable(ctx, store, *tableFile)
	if err != nil {
		log.Fatalf("ERROR importing %s: %v", *tableFile, err)
	}

	log.Printf("Import complete! (run %s)", runID)
}

func openStore(ctx context.Context, dbPath, databaseURL string) (pathStore, error) {
	if databaseURL != "" {
		return db.ConnectPostgres(ctx, databaseURL)
	}

	database, err := db.Connect(dbPath)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to database: %s", dbPath)
	return database, nil
}

// importTable replaces the stored group paths with the rows of tableFile
func importTable(ctx context.Context, store pathStore, tableFile string) (string, error) {
	table, err := pathfile.Load(tableFile)
	if err != nil {
		return "", err
	}

	log.Printf("  Parsed: %d rows", len(table.Rows))

	rows := make([]db.GroupPath, 0, len(table.Rows))
	malformed := 0
	for _, r := range table.Rows {
		if _, err := itinerary.Decode(r.Path); err != nil {
			// Kept as-is; the lookup reports the decode error
			malformed++
			log.Printf("  Warning: group %d has a malformed path: %v", r.GroupID, err)
		}
		rows = append(rows, db.GroupPath{
			RowIndex:   r.Index,
			GroupID:    r.GroupID,
			Path:       r.Path,
			Attributes: r.Attributes,
		})
	}

	previous, err := store.LatestImportRun(ctx)
	if err != nil {
		return "", err
	}
	if previous != nil {
		log.Printf("  Replacing run %s (%s, %d rows, imported %s)",
			previous.RunID, previous.SourceFile, previous.RowCount, previous.ImportedAt.Format(time.RFC3339))
	}

	runID, err := store.ImportGroupPaths(ctx, tableFile, time.Now(), rows)
	if err != nil {
		return "", err
	}

	log.Printf("  Inserted %d group paths (%d malformed)", len(rows), malformed)
	return runID, nil
}
