package simhub

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTicketStoreWriteAndList(t *testing.T) {
	store, err := NewTicketStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := store.Write("TICKET_A.png"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.Write("TICKET_B.png"); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Non-ticket files are invisible to the listing.
	if err := os.WriteFile(filepath.Join(store.dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write stray file: %v", err)
	}

	listed, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 tickets, got %+v", listed)
	}
	for _, ticket := range listed {
		if ticket.Size != int64(len(stubPNG)) {
			t.Fatalf("size mismatch: %+v", ticket)
		}
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewTicketStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	got := store.Path("../../etc/passwd")
	if got != filepath.Join(dir, "passwd") {
		t.Fatalf("traversal not contained: %s", got)
	}
}

func TestSweepStaleRemovesOldTicketsOnly(t *testing.T) {
	dir := t.TempDir()
	store, err := NewTicketStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := store.Write("TICKET_old.png"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.Write("TICKET_new.png"); err != nil {
		t.Fatalf("write: %v", err)
	}

	stale := time.Now().Add(-ticketRetention - time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "TICKET_old.png"), stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	store.SweepStale()

	listed, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].Filename != "TICKET_new.png" {
		t.Fatalf("sweep removed the wrong files: %+v", listed)
	}
}
