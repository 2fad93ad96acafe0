// Package panelapi is the REST client for the panel backend: node
// CRUD, start/stop commands, and the snapshot reads the poller
// consumes. Every operation is one request/response exchange with no
// retry; transient failures must surface to the caller exactly once.
package panelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/FerryCalvin/antam-autoq/internal/model"
)

var (
	ErrNotFound   = errors.New("panelapi: node not found")
	ErrValidation = errors.New("panelapi: validation rejected")
)

// RejectionError is a non-validation 4xx/5xx with a response body.
type RejectionError struct {
	Status int
	Body   string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("panelapi: server rejected request: status=%d", e.Status)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a client for the given base address. A bare host gets an
// http scheme; the /api prefix is appended per request.
func New(baseAddr string) *Client {
	return &Client{
		baseURL:    normalizeBaseAddr(baseAddr),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ListNodes fetches the full node snapshot in server return order.
func (c *Client) ListNodes(ctx context.Context) ([]model.Node, error) {
	var nodes []model.Node
	if err := c.do(ctx, http.MethodGet, "/api/nodes", nil, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// CreateNode registers a new node. Presence checks run locally; the
// server owns business validation and replies 4xx on rejection.
func (c *Client) CreateNode(ctx context.Context, req model.CreateNodeRequest) (*model.Node, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	var node model.Node
	if err := c.do(ctx, http.MethodPost, "/api/nodes", req, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// DeleteNode removes a node. Unknown ids map to ErrNotFound; callers
// treat repeated deletes after success as no-ops.
func (c *Client) DeleteNode(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/nodes/"+strconv.FormatInt(id, 10), nil, nil)
}

// StartNode requests activation. A 2xx means the server accepted the
// request, not that the node is active; authoritative state arrives
// via the next snapshot.
func (c *Client) StartNode(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, "/api/nodes/"+strconv.FormatInt(id, 10)+"/start", nil, nil)
}

// StopNode requests deactivation, with the same acceptance-only
// semantics as StartNode.
func (c *Client) StopNode(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, "/api/nodes/"+strconv.FormatInt(id, 10)+"/stop", nil, nil)
}

// ListTickets fetches the full artifact snapshot.
func (c *Client) ListTickets(ctx context.Context) ([]model.Ticket, error) {
	var tickets []model.Ticket
	if err := c.do(ctx, http.MethodGet, "/api/tickets", nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// FetchTicket downloads the raw bytes of one ticket image.
func (c *Client) FetchTicket(ctx context.Context, filename string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/tickets/"+url.PathEscape(filename), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &RejectionError{Status: resp.StatusCode, Body: string(body)}
	}
	return io.ReadAll(resp.Body)
}

// StartAll issues one StartNode per currently-inactive node. The batch
// has no atomicity: each failure is independent and siblings proceed.
// The returned map holds the error (possibly nil) per attempted id.
func (c *Client) StartAll(ctx context.Context, nodes []model.Node) map[int64]error {
	results := make(map[int64]error)
	for _, node := range nodes {
		if node.IsActive {
			continue
		}
		results[node.ID] = c.StartNode(ctx, node.ID)
	}
	return results
}

// StopAll mirrors StartAll for currently-active nodes.
func (c *Client) StopAll(ctx context.Context, nodes []model.Node) map[int64]error {
	results := make(map[int64]error)
	for _, node := range nodes {
		if !node.IsActive {
			continue
		}
		results[node.ID] = c.StopNode(ctx, node.ID)
	}
	return results
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrValidation, strings.TrimSpace(string(responseBody)))
	case resp.StatusCode >= 400:
		return &RejectionError{Status: resp.StatusCode, Body: string(responseBody)}
	}

	if out == nil || len(bytes.TrimSpace(responseBody)) == 0 {
		return nil
	}
	return json.Unmarshal(responseBody, out)
}

func normalizeBaseAddr(addr string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(addr), "/")
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	return "http://" + trimmed
}
