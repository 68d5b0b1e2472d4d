// Package posclient is a typed client of the POS HTTP API and its realtime
// websocket.
package posclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// APIError is a non-2xx answer of the API.
type APIError struct {
	Status  int
	Message string
	Field   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err means the session is gone.
func IsUnauthorized(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusUnauthorized
}

// IsForbidden reports whether err is a 403 (missing permission or deactivated member).
func IsForbidden(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusForbidden
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// do sends body as JSON and decodes a 2xx answer into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	raw, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(b)
	}
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t := c.Token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var e struct {
			Error string `json:"error"`
			Field string `json:"field"`
		}
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			apiErr.Message, apiErr.Field = e.Error, e.Field
		}
		return nil, apiErr
	}
	return raw, nil
}

func periodValues(p repository.Period) url.Values {
	q := url.Values{}
	if p.From != "" {
		q.Set("from", string(p.From))
	}
	if p.To != "" {
		q.Set("to", string(p.To))
	}
	return q
}

// ---- auth

func (c *Client) Login(ctx context.Context, email, password string) (*service.LoginResponse, error) {
	var out service.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", nil, service.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *Client) Signup(ctx context.Context, email, password, fullName string) (*service.LoginResponse, error) {
	var out service.LoginResponse
	req := service.SignupRequest{Email: email, Password: password, FullName: fullName}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/signup", nil, req, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Session resumes the stored token; a revoked or expired token yields an
// error for which IsUnauthorized is true.
func (c *Client) Session(ctx context.Context) (*model.UserResponse, error) {
	var out struct {
		User model.UserResponse `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/session", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Logout revokes the token server-side and forgets it locally, even when
// the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil, nil)
	c.SetToken("")
	return err
}

type Membership struct {
	Member      model.WorkspaceMember `json:"member"`
	RoleLabel   string                `json:"role_label"`
	Permissions []string              `json:"permissions"`
}

func (c *Client) Membership(ctx context.Context) (*Membership, error) {
	var out Membership
	if err := c.do(ctx, http.MethodGet, "/api/v1/me/membership", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---- products

func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	if err := c.do(ctx, http.MethodGet, "/api/v1/products", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProduct(ctx context.Context, req service.ProductRequest) (*model.Product, error) {
	var out struct {
		Data model.Product `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/products", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id uuid.UUID, req service.ProductRequest) (*model.Product, error) {
	var out struct {
		Data model.Product `json:"data"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/v1/products/"+id.String(), nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/products/"+id.String(), nil, nil, nil)
}

// Restock adds quantity units; unitCost, when set, prices the ledger entry
// without touching the product's cost.
func (c *Client) Restock(ctx context.Context, id uuid.UUID, quantity int, unitCost *decimal.Decimal) (*service.RestockResult, error) {
	var out struct {
		Data service.RestockResult `json:"data"`
	}
	req := service.RestockRequest{Quantity: quantity, UnitCost: unitCost}
	if err := c.do(ctx, http.MethodPost, "/api/v1/products/"+id.String()+"/restock", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*model.Product, error) {
	var out struct {
		Data model.Product `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/products/"+id.String()+"/adjust", nil, service.AdjustRequest{Delta: delta}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) Scan(ctx context.Context, req service.ScanRequest) (*service.ScanResult, error) {
	var out service.ScanResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/products/scan", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---- sales

func (c *Client) Sales(ctx context.Context, period repository.Period) ([]model.Sale, error) {
	var out []model.Sale
	if err := c.do(ctx, http.MethodGet, "/api/v1/sales", periodValues(period), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Checkout(ctx context.Context, req service.CheckoutRequest) (*service.CheckoutResult, error) {
	var out struct {
		Data service.CheckoutResult `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/sales/checkout", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) CloseDay(ctx context.Context, req service.DayCloseRequest) (*service.CheckoutResult, error) {
	var out struct {
		Data service.CheckoutResult `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/sales/day-close", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ---- cash

func (c *Client) Ledger(ctx context.Context, period repository.Period) (*service.Ledger, error) {
	var out service.Ledger
	if err := c.do(ctx, http.MethodGet, "/api/v1/cash", periodValues(period), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddMovement(ctx context.Context, req service.MovementRequest) (*model.CashMovement, error) {
	var out struct {
		Data model.CashMovement `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/cash", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ---- reports

func reportValues(q service.ReportQuery) url.Values {
	v := url.Values{}
	if q.Period != "" {
		v.Set("period", q.Period)
	}
	if q.From != "" {
		v.Set("from", string(q.From))
	}
	if q.To != "" {
		v.Set("to", string(q.To))
	}
	return v
}

func (c *Client) Report(ctx context.Context, q service.ReportQuery) (*service.ReportSummary, error) {
	var out service.ReportSummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/reports/summary", reportValues(q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportCSV returns the raw CSV of the report period.
func (c *Client) ExportCSV(ctx context.Context, q service.ReportQuery) ([]byte, error) {
	return c.send(ctx, http.MethodGet, "/api/v1/reports/export.csv", reportValues(q), nil)
}

func (c *Client) Dashboard(ctx context.Context) (*service.DashboardStats, error) {
	var out service.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/api/v1/dashboard", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---- members

func (c *Client) Members(ctx context.Context) ([]model.WorkspaceMember, error) {
	var out []model.WorkspaceMember
	if err := c.do(ctx, http.MethodGet, "/api/v1/members", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ManageUser(ctx context.Context, req service.ManageUserRequest) (*model.WorkspaceMember, error) {
	var out struct {
		Member model.WorkspaceMember `json:"member"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/functions/manage-user", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Member, nil
}
