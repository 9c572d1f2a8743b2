// Package supabase reads the three source tables from a hosted Supabase
// project: password-grant sign-in against the auth endpoint, then
// read-all queries against the REST endpoint. Credentials are injected
// through configuration and never embedded in source.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"salesboard/internal/core/apperror"
)

var tracer = otel.Tracer("salesboard/supabase")

// tokenSkew renews the access token slightly before its exp claim.
const tokenSkew = 30 * time.Second

// Config holds connection settings for a Supabase project.
type Config struct {
	// URL is the project base URL (https://<ref>.supabase.co).
	URL string

	// APIKey is the project API key sent on every request.
	APIKey string

	// Email and Password authenticate the reporting user.
	Email    string
	Password string

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client is a minimal Supabase REST client scoped to table reads.
type Client struct {
	cfg  Config
	http *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// New creates a client. URL, APIKey, Email and Password are required.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("supabase: url and api key are required")
	}
	if cfg.Email == "" || cfg.Password == "" {
		return nil, fmt.Errorf("supabase: credentials are required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// signIn performs the password grant and records the token expiry.
func (c *Client) signIn(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"email":    c.cfg.Email,
		"password": c.cfg.Password,
	})
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	endpoint := strings.TrimSuffix(c.cfg.URL, "/") + "/auth/v1/token?grant_type=password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperror.NewUpstream(fmt.Errorf("sign in: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
			return apperror.NewUnauthorized("data service sign-in failed").
				WithDetail("status", resp.StatusCode)
		}
		return apperror.NewUpstream(fmt.Errorf("sign in: status %d: %s", resp.StatusCode, snippet))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return apperror.NewUpstream(fmt.Errorf("decode token response: %w", err))
	}
	if token.AccessToken == "" {
		return apperror.NewUnauthorized("data service sign-in returned no token")
	}

	c.accessToken = token.AccessToken
	c.expiresAt = tokenExpiry(token)
	return nil
}

// tokenExpiry reads the exp claim from the access token without
// verifying the signature (the signing secret stays with the backend);
// falls back to expires_in when the claim is absent.
func tokenExpiry(token tokenResponse) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	if token.ExpiresIn > 0 {
		return time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}
	return time.Now().Add(time.Hour)
}

// token returns a valid access token, signing in when none is held or
// the held one is about to expire.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken == "" || time.Now().After(c.expiresAt.Add(-tokenSkew)) {
		if err := c.signIn(ctx); err != nil {
			return "", err
		}
	}
	return c.accessToken, nil
}

// fetchTable issues a read-all against one table and decodes the rows
// into out (a pointer to a slice of raw row structs).
func (c *Client) fetchTable(ctx context.Context, table string, out any) error {
	ctx, span := tracer.Start(ctx, "supabase.fetch_table")
	span.SetAttributes(attribute.String("table", table))
	defer span.End()

	accessToken, err := c.token(ctx)
	if err != nil {
		return err
	}

	endpoint := strings.TrimSuffix(c.cfg.URL, "/") + "/rest/v1/" + url.PathEscape(table) + "?select=*"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", table, err)
	}
	req.Header.Set("apikey", c.cfg.APIKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperror.NewUpstream(fmt.Errorf("fetch %s: %w", table, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperror.NewUpstream(fmt.Errorf("fetch %s: status %d: %s", table, resp.StatusCode, snippet)).
			WithDetail("table", table)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.NewUpstream(fmt.Errorf("decode %s rows: %w", table, err))
	}
	return nil
}
