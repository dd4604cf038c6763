package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/jmylchreest/gleaner/internal/store"
)

func TestStoreCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.db")
	db, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	ctx := context.Background()
	if _, err := db.Remember(ctx, "catalog", []uint64{1, 2}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Remember(ctx, "news", []uint64{3}); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	prev := settings
	t.Cleanup(func() { settings = prev })
	settings.Store = path
	settings.Quiet = true

	count := func() string {
		t.Helper()
		buf := &bytes.Buffer{}
		storeCountCmd.SetOut(buf)
		if err := storeCountCmd.RunE(storeCountCmd, nil); err != nil {
			t.Fatalf("count error = %v", err)
		}
		return buf.String()
	}

	if got := count(); got != "catalog\t2\nnews\t1\n" {
		t.Errorf("count = %q", got)
	}
	if err := storeResetCmd.RunE(storeResetCmd, []string{"news"}); err != nil {
		t.Fatalf("reset error = %v", err)
	}
	if got := count(); got != "catalog\t2\nnews\t0\n" {
		t.Errorf("count after reset = %q", got)
	}

	if err := storeResetCmd.RunE(storeResetCmd, []string{"subsidy"}); err == nil {
		t.Error("expected error for unknown kind")
	}
	settings.Store = ""
	if err := storeCountCmd.RunE(storeCountCmd, nil); err == nil {
		t.Error("expected error without a store")
	}
}
