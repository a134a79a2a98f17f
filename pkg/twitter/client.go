// Package twitter checks the screen-name history of a Twitter account using
// the memory.lol archive.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/entropy/pkg/commands"
)

// Account is one archived account and the screen names it has used.
// Each screen name maps to the dates it was observed, or nil when unknown.
type Account struct {
	IDStr       string              `json:"id_str"`
	ScreenNames map[string][]string `json:"screen_names"`
}

type historyResponse struct {
	Accounts []Account `json:"accounts"`
}

// Client queries memory.lol.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for baseURL (e.g., "https://api.memory.lol").
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// History returns the archived accounts for username.
func (c *Client) History(ctx context.Context, username string) ([]Account, error) {
	username = strings.TrimPrefix(username, "@")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/tw/"+url.PathEscape(username), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("memory.lol returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var history historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return history.Accounts, nil
}

// Check implements commands.UsernameHistory.
func (c *Client) Check(ctx context.Context, username string) commands.UsernameReport {
	accounts, err := c.History(ctx, username)
	if err != nil {
		c.logger.Warn("username history lookup failed", zap.String("username", username), zap.Error(err))
		return commands.UsernameReport{Error: "Failed to check Twitter username: " + err.Error()}
	}
	if len(accounts) == 0 {
		return commands.UsernameReport{}
	}
	return commands.UsernameReport{FormattedData: Format(username, accounts)}
}

// Format renders accounts as a readable history, oldest names first.
func Format(username string, accounts []Account) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Username history for @%s:", strings.TrimPrefix(username, "@"))

	for _, acct := range accounts {
		fmt.Fprintf(&b, "\nAccount %s:", acct.IDStr)

		names := make([]string, 0, len(acct.ScreenNames))
		for name := range acct.ScreenNames {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			fi, fj := firstSeen(acct.ScreenNames[names[i]]), firstSeen(acct.ScreenNames[names[j]])
			if fi != fj {
				// unknown dates sort last
				if fi == "" {
					return false
				}
				if fj == "" {
					return true
				}
				return fi < fj
			}
			return names[i] < names[j]
		})

		for _, name := range names {
			dates := acct.ScreenNames[name]
			switch len(dates) {
			case 0:
				fmt.Fprintf(&b, "\n- @%s", name)
			case 1:
				fmt.Fprintf(&b, "\n- @%s (%s)", name, dates[0])
			default:
				fmt.Fprintf(&b, "\n- @%s (%s to %s)", name, dates[0], dates[len(dates)-1])
			}
		}
	}
	return b.String()
}

func firstSeen(dates []string) string {
	if len(dates) == 0 {
		return ""
	}
	return dates[0]
}
