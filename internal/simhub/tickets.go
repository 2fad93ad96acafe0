package simhub

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/FerryCalvin/antam-autoq/internal/model"
)

const ticketRetention = 7 * 24 * time.Hour

// stubPNG is a valid 1x1 transparent PNG. Good enough for a panel
// that only needs real image bytes behind the ticket endpoint.
var stubPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

// TicketStore lists and serves ticket artifacts straight off the
// filesystem. The directory is the source of truth; nothing is cached.
type TicketStore struct {
	dir string
}

func NewTicketStore(dir string) (*TicketStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &TicketStore{dir: dir}, nil
}

// List scans the ticket directory, newest last.
func (t *TicketStore) List() ([]model.Ticket, error) {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		return nil, err
	}

	tickets := make([]model.Ticket, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".png") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		tickets = append(tickets, model.Ticket{
			Filename:  entry.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime().Unix(),
		})
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].CreatedAt < tickets[j].CreatedAt })
	return tickets, nil
}

// Write drops a stub ticket image with the given name.
func (t *TicketStore) Write(filename string) error {
	return os.WriteFile(t.path(filename), stubPNG, 0o644)
}

// SweepStale removes ticket artifacts older than the retention window.
// Runs under the cron scheduler; errors are swallowed since the next
// sweep retries anyway.
func (t *TicketStore) SweepStale() {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-ticketRetention)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".png") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(t.path(entry.Name()))
		}
	}
}

// Path resolves a filename inside the ticket directory. The base-name
// restriction keeps path traversal out of the retrieval endpoint.
func (t *TicketStore) Path(filename string) string {
	return t.path(filename)
}

func (t *TicketStore) path(filename string) string {
	return filepath.Join(t.dir, filepath.Base(filename))
}
