// Package supabase reads the hosted "prices" table through its PostgREST API.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/folio/internal/clientdata"
	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/prices"
	"github.com/rs/zerolog"
)

const (
	pricesTable = "prices"
	searchLimit = 30
)

// Client for a Supabase PostgREST endpoint
type Client struct {
	baseURL   string
	apiKey    string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
	pageTTL   time.Duration
}

// NewClient creates a new Supabase REST client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(baseURL, apiKey string, cacheRepo *clientdata.Repository, pageTTL time.Duration, log zerolog.Logger) *Client {
	if pageTTL <= 0 {
		pageTTL = clientdata.TTLPricePage
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/") + "/rest/v1",
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       log.With().Str("client", "supabase").Logger(),
		cacheRepo: cacheRepo,
		pageTTL:   pageTTL,
	}
}

// FetchPage implements prices.Source.
// Fresh cached pages are served without a request; failures are returned
// as-is so the caller can degrade to an empty dataset.
func (c *Client) FetchPage(ctx context.Context, q prices.Query, offset, limit int) ([]domain.PriceRecord, error) {
	if len(q.Tickers) == 0 {
		return nil, prices.ErrNoTickers
	}

	cacheKey := pageCacheKey(q, offset, limit)
	if c.cacheRepo != nil {
		var cached []domain.PriceRecord
		found, err := c.cacheRepo.GetIfFresh(clientdata.TablePricePages, cacheKey, &cached)
		if err == nil && found {
			c.log.Debug().Str("key", cacheKey).Int("rows", len(cached)).Msg("Cache hit")
			return cached, nil
		}
	}

	params := url.Values{}
	params.Set("select", "date,ticker,close")
	params.Set("ticker", "in.("+quoteList(q.Tickers)+")")
	if q.From != "" {
		params.Set("date", "gte."+q.From)
	}
	order := "date.desc"
	if q.Ascending {
		order = "date.asc"
	}
	params.Set("order", order+",ticker.asc")
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))

	var rows []domain.PriceRecord
	if err := c.get(ctx, pricesTable, params, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.PriceRecord{}
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(clientdata.TablePricePages, cacheKey, rows, c.pageTTL); err != nil {
			c.log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache price page")
		}
	}

	return rows, nil
}

// SearchTickers matches ticker and name separately (30 each), then merges,
// dedupes and sorts by ticker. Stale cached results are used if the API fails.
func (c *Client) SearchTickers(ctx context.Context, query string, limit int) ([]domain.TickerInfo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.TickerInfo{}, nil
	}

	cacheKey := strings.ToLower(query)
	if c.cacheRepo != nil {
		var cached []domain.TickerInfo
		found, err := c.cacheRepo.GetIfFresh(clientdata.TableTickerSearch, cacheKey, &cached)
		if err == nil && found {
			return truncate(cached, limit), nil
		}
	}

	merged, err := c.searchRemote(ctx, query)
	if err != nil {
		if stale, ok := c.getStaleSearch(cacheKey); ok {
			c.log.Warn().Err(err).Str("query", query).Msg("API failed, using stale cached search")
			return truncate(stale, limit), nil
		}
		return nil, err
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(clientdata.TableTickerSearch, cacheKey, merged, clientdata.TTLTickerSearch); err != nil {
			c.log.Warn().Err(err).Str("query", query).Msg("Failed to cache ticker search")
		}
	}

	return truncate(merged, limit), nil
}

func (c *Client) searchRemote(ctx context.Context, query string) ([]domain.TickerInfo, error) {
	pattern := "ilike.*" + escapePattern(query) + "*"

	var merged []domain.TickerInfo
	seen := make(map[string]bool)
	for _, column := range []string{"ticker", "name"} {
		params := url.Values{}
		params.Set("select", "ticker,name")
		params.Set(column, pattern)
		params.Set("limit", strconv.Itoa(searchLimit))

		var found []struct {
			Ticker string  `json:"ticker"`
			Name   *string `json:"name"`
		}
		if err := c.get(ctx, pricesTable, params, &found); err != nil {
			return nil, fmt.Errorf("search by %s: %w", column, err)
		}

		for _, f := range found {
			if f.Ticker == "" || seen[f.Ticker] {
				continue
			}
			seen[f.Ticker] = true
			info := domain.TickerInfo{Ticker: f.Ticker}
			if f.Name != nil {
				info.Name = *f.Name
			}
			merged = append(merged, info)
		}
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Ticker < merged[j].Ticker })
	if merged == nil {
		merged = []domain.TickerInfo{}
	}
	return merged, nil
}

func (c *Client) getStaleSearch(cacheKey string) ([]domain.TickerInfo, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}
	var cached []domain.TickerInfo
	found, err := c.cacheRepo.Get(clientdata.TableTickerSearch, cacheKey, &cached)
	if err != nil || !found {
		return nil, false
	}
	return cached, true
}

func (c *Client) get(ctx context.Context, table string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + "/" + table + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.log.Debug().Str("table", table).Str("query", params.Encode()).Msg("Requesting")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

func pageCacheKey(q prices.Query, offset, limit int) string {
	tickers := append([]string(nil), q.Tickers...)
	sort.Strings(tickers)
	return fmt.Sprintf("%s|%s|%t|%d|%d", strings.Join(tickers, ","), q.From, q.Ascending, offset, limit)
}

// quoteList double-quotes values so reserved characters such as '.' survive.
func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return strings.Join(quoted, ",")
}

func escapePattern(s string) string {
	return strings.NewReplacer("*", "", ",", "", "(", "", ")", "").Replace(s)
}

func truncate(infos []domain.TickerInfo, limit int) []domain.TickerInfo {
	if limit > 0 && len(infos) > limit {
		return infos[:limit]
	}
	return infos
}
