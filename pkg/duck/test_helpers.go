package duck

import (
	"context"
	"log/slog"
	"os"
	"testing"
)

// testDBWithConn creates a file-backed test database and a connection on it.
func testDBWithConn(t *testing.T) (DB, Connection, error) {
	t.Helper()
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	dbPath := t.TempDir() + "/test.db"

	db, err := Open(ctx, log, dbPath)
	if err != nil {
		return nil, nil, err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return db, conn, nil
}
