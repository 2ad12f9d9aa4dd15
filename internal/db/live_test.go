package db

import (
	"context"
	"fmt"
	"os"
	"testing"
)

// TestLiveDatabase reads a devserver database named by IOTCONSOLE_DB_PATH.
// Skipped when the variable is unset or the file doesn't exist.
func TestLiveDatabase(t *testing.T) {
	dbPath := os.Getenv("IOTCONSOLE_DB_PATH")
	if dbPath == "" {
		t.Skip("IOTCONSOLE_DB_PATH not set")
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Skip("database not found at", dbPath)
	}

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	voices, total, err := store.ListVoices(ctx, VoiceFilter{PageSize: MaxPageSize})
	if err != nil {
		t.Fatalf("ListVoices: %v", err)
	}
	fmt.Printf("Catalog: %d voices\n", total)
	for _, v := range voices {
		fmt.Printf("  [%s] %s (%s)\n", v.Provider, v.Name, v.VoiceCode)
	}
}
