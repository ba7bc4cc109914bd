package vectordb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ticketbot/internal/domain"
)

// Client is a minimal REST client to the vector index service (Qdrant).
// One client is shared across the process; collections are cosine-distance
// and hold unit-normalized vectors.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

type Config struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    httpClient,
	}
}

func (c *Client) HasCollection(ctx context.Context, name string) (bool, error) {
	var out struct {
		Result struct {
			Exists bool `json:"exists"`
		} `json:"result"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/collections/%s/exists", name), nil, &out)
	if err != nil {
		return false, err
	}
	return out.Result.Exists, nil
}

func (c *Client) DropCollection(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/collections/"+name, nil, nil)
}

func (c *Client) CreateCollection(ctx context.Context, name string, dim int) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dim,
			"distance": "Cosine",
		},
	}
	return c.do(ctx, http.MethodPut, "/collections/"+name, body, nil)
}

// Insert upserts points with wait=true, so the collection is queryable by
// the time the call returns.
func (c *Client) Insert(ctx context.Context, name string, points []domain.Point) error {
	if len(points) == 0 {
		return nil
	}
	items := make([]map[string]any, len(points))
	for i, p := range points {
		payload := make(map[string]any, len(p.Fields))
		for k, v := range p.Fields {
			payload[k] = v
		}
		items[i] = map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": payload,
		}
	}
	body := map[string]any{"points": items}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", name), body, nil)
}

func (c *Client) Search(ctx context.Context, name string, vector []float32, topK int) ([]domain.ScoredPoint, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var out struct {
		Result []struct {
			ID      uint64         `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", name), body, &out); err != nil {
		return nil, err
	}
	hits := make([]domain.ScoredPoint, 0, len(out.Result))
	for _, r := range out.Result {
		hits = append(hits, domain.ScoredPoint{
			Point: domain.Point{ID: r.ID, Fields: payloadToFields(r.Payload)},
			Score: r.Score,
		})
	}
	return hits, nil
}

// Query scrolls stored points without a vector, for verification reads.
func (c *Client) Query(ctx context.Context, name string, limit int) ([]domain.Point, error) {
	body := map[string]any{
		"limit":        limit,
		"with_payload": true,
	}
	var out struct {
		Result struct {
			Points []struct {
				ID      uint64         `json:"id"`
				Payload map[string]any `json:"payload"`
			} `json:"points"`
		} `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/scroll", name), body, &out); err != nil {
		return nil, err
	}
	points := make([]domain.Point, 0, len(out.Result.Points))
	for _, p := range out.Result.Points {
		points = append(points, domain.Point{ID: p.ID, Fields: payloadToFields(p.Payload)})
	}
	return points, nil
}

func (c *Client) Count(ctx context.Context, name string) (int, error) {
	body := map[string]any{"exact": true}
	var out struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/count", name), body, &out); err != nil {
		return 0, err
	}
	return out.Result.Count, nil
}

// ListCollections returns every collection name on the service.
func (c *Client) ListCollections(ctx context.Context) ([]string, error) {
	var out struct {
		Result struct {
			Collections []struct {
				Name string `json:"name"`
			} `json:"collections"`
		} `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, "/collections", nil, &out); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(out.Result.Collections))
	for _, col := range out.Result.Collections {
		names = append(names, col.Name)
	}
	return names, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling vector index request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating vector index request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: vector index request: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading vector index response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s %s", domain.ErrCollectionNotFound, method, path)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: vector index returned %s: %s", domain.ErrBackendUnavailable, resp.Status, truncateBody(payload))
	}
	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("parsing vector index response: %w", err)
		}
	}
	return nil
}

func payloadToFields(payload map[string]any) map[string]string {
	fields := make(map[string]string, len(payload))
	for k, v := range payload {
		switch x := v.(type) {
		case string:
			fields[k] = x
		default:
			fields[k] = fmt.Sprintf("%v", x)
		}
	}
	return fields
}

func truncateBody(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
