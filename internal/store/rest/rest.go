// Package rest implements the record store on a hosted backend-as-a-service
// that exposes tables over PostgREST conventions.
package rest

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

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"vestora/internal/models"
	"vestora/internal/pagination"
	"vestora/internal/store"
	"vestora/internal/uuid"
)

const (
	tableAssets       = "assets"
	tableBalances     = "balances"
	tableTransactions = "transactions"
	tableProfiles     = "profiles"
)

// APIError is a non-2xx response from the hosted service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("status %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the hosted record store.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ store.Store = (*Client)(nil)

// New creates a client for the service at baseURL, authenticated with the
// public API key.
func New(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// request describes one call against a table endpoint.
type request struct {
	method string
	table  string
	query  url.Values
	body   interface{}
	prefer []string
}

func (c *Client) do(ctx context.Context, r request, out interface{}) (http.Header, error) {
	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s payload: %w", r.table, err)
		}
		body = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + "/rest/v1/" + r.table
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(r.prefer) > 0 {
		req.Header.Set("Prefer", strings.Join(r.prefer, ","))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", r.method, r.table, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", r.table, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, raw)
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("decoding %s response: %w", r.table, err)
		}
	}
	return resp.Header, nil
}

// decodeError extracts the service's message and code from an error body.
func decodeError(status int, raw []byte) error {
	apiErr := &APIError{StatusCode: status, Message: http.StatusText(status)}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		if text := strings.TrimSpace(string(raw)); text != "" {
			apiErr.Message = text
		}
		return apiErr
	}

	if msg, ok := lookupString(doc, "$.message"); ok {
		apiErr.Message = msg
	} else if msg, ok := lookupString(doc, "$.error"); ok {
		apiErr.Message = msg
	}
	if code, ok := lookupString(doc, "$.code"); ok {
		apiErr.Code = code
	}
	return apiErr
}

func lookupString(doc interface{}, path string) (string, bool) {
	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return "", false
	}
	s, ok := val.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func eq(v string) string { return "eq." + v }

func now() time.Time { return time.Now().UTC() }

// ListAssets returns every asset of the owner, newest first.
func (c *Client) ListAssets(ctx context.Context, ownerID string) ([]models.AssetRecord, error) {
	var assets []models.AssetRecord
	_, err := c.do(ctx, request{
		method: http.MethodGet,
		table:  tableAssets,
		query: url.Values{
			"owner_id": {eq(ownerID)},
			"order":    {"created_at.desc,id.desc"},
		},
	}, &assets)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	if assets == nil {
		assets = []models.AssetRecord{}
	}
	return assets, nil
}

// GetAsset returns one asset by id.
func (c *Client) GetAsset(ctx context.Context, id string) (*models.AssetRecord, error) {
	var assets []models.AssetRecord
	_, err := c.do(ctx, request{
		method: http.MethodGet,
		table:  tableAssets,
		query:  url.Values{"id": {eq(id)}, "limit": {"1"}},
	}, &assets)
	if err != nil {
		return nil, fmt.Errorf("fetching asset: %w", err)
	}
	if len(assets) == 0 {
		return nil, store.ErrNotFound
	}
	return &assets[0], nil
}

// CreateAsset inserts the asset. The id and timestamps are assigned here
// so the row matches what the database store would produce.
func (c *Client) CreateAsset(ctx context.Context, asset *models.AssetRecord) error {
	if asset.ID == "" {
		asset.ID = uuid.New()
	}
	ts := now()
	asset.CreatedAt, asset.UpdatedAt = ts, ts

	var created []models.AssetRecord
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		table:  tableAssets,
		body:   asset,
		prefer: []string{"return=representation"},
	}, &created)
	if err != nil {
		return fmt.Errorf("creating asset: %w", err)
	}
	if len(created) > 0 {
		*asset = created[0]
	}
	return nil
}

// UpdateAsset applies a partial update and returns the stored row.
func (c *Client) UpdateAsset(ctx context.Context, id string, patch models.AssetPatch) (*models.AssetRecord, error) {
	if patch.IsEmpty() {
		return c.GetAsset(ctx, id)
	}

	cols := patch.Columns()
	cols["updated_at"] = now()

	var updated []models.AssetRecord
	_, err := c.do(ctx, request{
		method: http.MethodPatch,
		table:  tableAssets,
		query:  url.Values{"id": {eq(id)}},
		body:   cols,
		prefer: []string{"return=representation"},
	}, &updated)
	if err != nil {
		return nil, fmt.Errorf("updating asset: %w", err)
	}
	if len(updated) == 0 {
		return nil, store.ErrNotFound
	}
	return &updated[0], nil
}

// DeleteAsset removes the asset with the given id.
func (c *Client) DeleteAsset(ctx context.Context, id string) error {
	var deleted []struct {
		ID string `json:"id"`
	}
	_, err := c.do(ctx, request{
		method: http.MethodDelete,
		table:  tableAssets,
		query:  url.Values{"id": {eq(id)}, "select": {"id"}},
		prefer: []string{"return=representation"},
	}, &deleted)
	if err != nil {
		return fmt.Errorf("deleting asset: %w", err)
	}
	if len(deleted) == 0 {
		return store.ErrNotFound
	}
	return nil
}

type ownerRow struct {
	OwnerID string `json:"owner_id"`
}

func (c *Client) ownerIDs(ctx context.Context, table string) ([]string, error) {
	var rows []ownerRow
	_, err := c.do(ctx, request{
		method: http.MethodGet,
		table:  table,
		query:  url.Values{"select": {"owner_id"}},
	}, &rows)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.OwnerID)
	}
	return store.Dedupe(ids), nil
}

// ListAssetOwnerIDs returns the distinct owners that hold at least one asset.
func (c *Client) ListAssetOwnerIDs(ctx context.Context) ([]string, error) {
	ids, err := c.ownerIDs(ctx, tableAssets)
	if err != nil {
		return nil, fmt.Errorf("listing asset owners: %w", err)
	}
	return ids, nil
}

// GetBalance returns the owner's balance row.
func (c *Client) GetBalance(ctx context.Context, ownerID string) (*models.BalanceRecord, error) {
	var rows []models.BalanceRecord
	_, err := c.do(ctx, request{
		method: http.MethodGet,
		table:  tableBalances,
		query:  url.Values{"owner_id": {eq(ownerID)}, "limit": {"1"}},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetching balance: %w", err)
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return &rows[0], nil
}

func (c *Client) upsertBalance(ctx context.Context, payload map[string]interface{}) (*models.BalanceRecord, error) {
	var rows []models.BalanceRecord
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		table:  tableBalances,
		query:  url.Values{"on_conflict": {"owner_id"}},
		body:   payload,
		prefer: []string{"resolution=merge-duplicates", "return=representation"},
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return &rows[0], nil
}

// UpsertBalanceTotals writes the derived totals. The payload omits
// available_cash, so a merge keeps the stored value.
func (c *Client) UpsertBalanceTotals(ctx context.Context, balance *models.BalanceRecord) (*models.BalanceRecord, error) {
	updatedAt := balance.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now()
	}
	row, err := c.upsertBalance(ctx, map[string]interface{}{
		"owner_id":                balance.OwnerID,
		"total_invested":          balance.TotalInvested,
		"current_portfolio_value": balance.CurrentPortfolioValue,
		"total_profit_loss":       balance.TotalProfitLoss,
		"updated_at":              updatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("upserting balance: %w", err)
	}
	return row, nil
}

// SetAvailableCash writes available_cash only, creating the row if needed.
func (c *Client) SetAvailableCash(ctx context.Context, ownerID string, amount decimal.Decimal) (*models.BalanceRecord, error) {
	row, err := c.upsertBalance(ctx, map[string]interface{}{
		"owner_id":       ownerID,
		"available_cash": amount,
		"updated_at":     now(),
	})
	if err != nil {
		return nil, fmt.Errorf("setting available cash: %w", err)
	}
	return row, nil
}

// ListBalanceOwnerIDs returns the owners that have a balance row.
func (c *Client) ListBalanceOwnerIDs(ctx context.Context) ([]string, error) {
	ids, err := c.ownerIDs(ctx, tableBalances)
	if err != nil {
		return nil, fmt.Errorf("listing balance owners: %w", err)
	}
	return ids, nil
}

// CreateTransaction appends an entry to the log.
func (c *Client) CreateTransaction(ctx context.Context, tx *models.TransactionRecord) error {
	if tx.ID == "" {
		tx.ID = uuid.New()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now()
	}

	var created []models.TransactionRecord
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		table:  tableTransactions,
		body:   tx,
		prefer: []string{"return=representation"},
	}, &created)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}
	if len(created) > 0 {
		*tx = created[0]
	}
	return nil
}

// ListTransactions returns one page of the owner's log, newest first. The
// total comes from the Content-Range header of an exact-count request.
func (c *Client) ListTransactions(ctx context.Context, ownerID string, page pagination.PageRequest) ([]models.TransactionRecord, int64, error) {
	var txs []models.TransactionRecord
	header, err := c.do(ctx, request{
		method: http.MethodGet,
		table:  tableTransactions,
		query: page.Query(url.Values{
			"owner_id": {eq(ownerID)},
			"order":    {"transaction_date.desc"},
		}),
		prefer: []string{"count=exact"},
	}, &txs)
	if err != nil {
		return nil, 0, fmt.Errorf("listing transactions: %w", err)
	}

	total, err := parseContentRange(header.Get("Content-Range"))
	if err != nil {
		return nil, 0, fmt.Errorf("listing transactions: %w", err)
	}
	return txs, total, nil
}

// parseContentRange reads the total from "0-19/57" or "*/0".
func parseContentRange(value string) (int64, error) {
	slash := strings.LastIndex(value, "/")
	if slash < 0 {
		return 0, fmt.Errorf("malformed content range %q", value)
	}
	total := value[slash+1:]
	if total == "*" {
		return 0, errors.New("service did not report a row count")
	}
	n, err := strconv.ParseInt(total, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed content range %q: %w", value, err)
	}
	return n, nil
}

// GetProfile returns the profile of a user.
func (c *Client) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var rows []models.Profile
	_, err := c.do(ctx, request{
		method: http.MethodGet,
		table:  tableProfiles,
		query:  url.Values{"user_id": {eq(userID)}, "limit": {"1"}},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return &rows[0], nil
}

// ListProfiles returns every profile row, oldest first.
func (c *Client) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var rows []models.Profile
	_, err := c.do(ctx, request{
		method: http.MethodGet,
		table:  tableProfiles,
		query:  url.Values{"order": {"created_at.asc"}},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	return rows, nil
}

// UpsertProfile inserts or updates a profile keyed by user id.
func (c *Client) UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	ts := now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = ts
	}
	profile.UpdatedAt = ts

	var rows []models.Profile
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		table:  tableProfiles,
		query:  url.Values{"on_conflict": {"user_id"}},
		body: map[string]interface{}{
			"user_id":      profile.UserID,
			"display_name": profile.DisplayName,
			"is_admin":     profile.IsAdmin,
			"updated_at":   profile.UpdatedAt,
		},
		prefer: []string{"resolution=merge-duplicates", "return=representation"},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("upserting profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return &rows[0], nil
}
