package allowlist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sevigo/build-warden/internal/config"
)

// FASClient looks GitHub logins up in the Fedora Account System.
type FASClient struct {
	baseURL  string
	user     string
	password string
	http     *http.Client
}

// NewVerifier returns the account system client, or nil when no account
// system is configured.
func NewVerifier(cfg config.FASConfig) Verifier {
	if cfg.URL == "" {
		return nil
	}
	return NewFASClient(cfg)
}

// NewFASClient creates a client for the account system at cfg.URL.
func NewFASClient(cfg config.FASConfig) *FASClient {
	return &FASClient{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		user:     cfg.User,
		password: cfg.Password,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type fasSearchResponse struct {
	Result []struct {
		Username string `json:"username"`
	} `json:"result"`
}

// IsKnownGitHubUser implements Verifier: the login is known when an account
// has it set as its GitHub username.
func (c *FASClient) IsKnownGitHubUser(ctx context.Context, login string) (bool, error) {
	u := fmt.Sprintf("%s/v1/search/users/?github_username=%s", c.baseURL, url.QueryEscape(login))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("account system request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("account system returned %s", resp.Status)
	}
	var body fasSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("failed to decode account system response: %w", err)
	}
	return len(body.Result) > 0, nil
}
