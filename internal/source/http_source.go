package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/alexeyproskuryakov/read/internal/model"
)

// HTTPSource is a thin JSON adapter to the content-source gateway.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPSource creates a content source talking to the gateway at baseURL.
func NewHTTPSource(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Search returns all items matching the query.
func (s *HTTPSource) Search(ctx context.Context, query string) ([]model.Item, error) {
	u := fmt.Sprintf("%s/search?q=%s", s.baseURL, url.QueryEscape(query))

	var items []model.Item
	if err := s.getJSON(ctx, u, &items); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return items, nil
}

// FetchRecent returns up to limit items of the partition, ascending by
// creation time. The gateway is not trusted to order, so we sort here.
func (s *HTTPSource) FetchRecent(ctx context.Context, partition string, limit int64) ([]model.Item, error) {
	u := fmt.Sprintf("%s/partitions/%s/items?limit=%d", s.baseURL, url.PathEscape(partition), limit)

	var items []model.Item
	if err := s.getJSON(ctx, u, &items); err != nil {
		return nil, fmt.Errorf("fetch recent failed: %w", err)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt < items[j].CreatedAt
	})

	return items, nil
}

// Children returns the item's child entries in natural order.
func (s *HTTPSource) Children(ctx context.Context, item *model.Item) ([]model.ChildEntry, error) {
	u := fmt.Sprintf("%s/items/%s/children", s.baseURL, url.PathEscape(item.ID))

	var children []model.ChildEntry
	if err := s.getJSON(ctx, u, &children); err != nil {
		return nil, fmt.Errorf("fetch children failed: %w", err)
	}
	return children, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, u)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
