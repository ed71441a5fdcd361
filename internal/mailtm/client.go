// Package mailtm provides a client for the Mail.tm disposable-email
// REST API: account provisioning and inbox reads.
package mailtm

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"
)

// Message holds one inbox message with its plain-text body.
type Message struct {
	ID         string
	From       string
	Subject    string
	Body       string
	ReceivedAt time.Time
}

// Account is a provisioned disposable mailbox.
type Account struct {
	Address  string
	Password string
	Token    string
}

// Client communicates with the Mail.tm REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Mail.tm client. No credentials are needed;
// accounts are created on demand.
func NewClient() *Client {
	return &Client{
		baseURL: "https://api.mail.tm",
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateAccount provisions a fresh mailbox on a random available
// domain and returns its address and bearer token for inbox access.
// Implements the composer's Provisioner contract.
func (c *Client) CreateAccount(ctx context.Context) (address, token string, err error) {
	acct, err := c.Provision(ctx)
	if err != nil {
		return "", "", err
	}
	return acct.Address, acct.Token, nil
}

// Provision creates a mailbox and returns the full account, including
// the account password (needed to re-authenticate after token expiry).
func (c *Client) Provision(ctx context.Context) (*Account, error) {
	domains, err := c.domains(ctx)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	if len(domains) == 0 {
		return nil, fmt.Errorf("create account: no domains available")
	}

	acct := &Account{
		Address:  randomLocal(10) + "@" + domains[randIntn(len(domains))],
		Password: randomLocal(16),
	}

	payload := map[string]string{"address": acct.Address, "password": acct.Password}
	if _, err := c.doPost(ctx, "/accounts", payload, ""); err != nil {
		return nil, fmt.Errorf("create account %s: %w", acct.Address, err)
	}

	body, err := c.doPost(ctx, "/token", payload, "")
	if err != nil {
		return nil, fmt.Errorf("authenticate %s: %w", acct.Address, err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("authenticate %s: decode: %w", acct.Address, err)
	}
	if tr.Token == "" {
		return nil, fmt.Errorf("authenticate %s: empty token", acct.Address)
	}

	acct.Token = tr.Token
	return acct, nil
}

// Messages returns the full inbox for the given token, bodies
// included, ordered as the API returns them (newest first). An empty
// inbox is an empty slice, not an error.
func (c *Client) Messages(ctx context.Context, token string) ([]Message, error) {
	body, err := c.doGet(ctx, "/messages", token)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	var lr listResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, fmt.Errorf("list messages: decode: %w", err)
	}

	msgs := make([]Message, 0, len(lr.Members))
	for _, m := range lr.Members {
		full, err := c.message(ctx, token, m.ID)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *full)
	}

	return msgs, nil
}

// message fetches one message including its text body.
func (c *Client) message(ctx context.Context, token, id string) (*Message, error) {
	body, err := c.doGet(ctx, "/messages/"+id, token)
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}

	var mr messageResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		return nil, fmt.Errorf("get message %s: decode: %w", id, err)
	}

	msg := &Message{
		ID:      mr.ID,
		From:    mr.From.Address,
		Subject: mr.Subject,
		Body:    mr.Text,
	}
	if t, err := time.Parse(time.RFC3339, mr.CreatedAt); err == nil {
		msg.ReceivedAt = t
	}

	return msg, nil
}

func (c *Client) domains(ctx context.Context) ([]string, error) {
	body, err := c.doGet(ctx, "/domains", "")
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}

	var dr domainsResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return nil, fmt.Errorf("list domains: decode: %w", err)
	}

	domains := make([]string, 0, len(dr.Members))
	for _, d := range dr.Members {
		if d.IsActive {
			domains = append(domains, d.Domain)
		}
	}

	return domains, nil
}

func (c *Client) doGet(ctx context.Context, path, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.do(req, token)
}

func (c *Client) doPost(ctx context.Context, path string, payload any, token string) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, token)
}

func (c *Client) do(req *http.Request, token string) ([]byte, error) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	// mail.tm responses are bounded in size, safe to read fully
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiErrorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Detail != "" {
			return nil, &Error{StatusCode: resp.StatusCode, Message: apiErr.Detail}
		}
		return nil, &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	return body, nil
}

// Error represents a Mail.tm API error.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("mail.tm: %s (status %d)", e.Message, e.StatusCode)
}

const localChars = "abcdefghijklmnopqrstuvwxyz0123456789"

// randomLocal generates a random lowercase alphanumeric string.
func randomLocal(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = localChars[randIntn(len(localChars))]
	}
	return string(b)
}

// randIntn returns a cryptographically random int in [0, n).
func randIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("crypto/rand: " + err.Error())
	}
	return int(v.Int64())
}

// json wire types for API responses (Hydra collection envelopes)

type domainsResponse struct {
	Members []struct {
		Domain   string `json:"domain"`
		IsActive bool   `json:"isActive"`
	} `json:"hydra:member"`
}

type apiErrorResponse struct {
	Detail string `json:"detail"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type listResponse struct {
	Members []struct {
		ID string `json:"id"`
	} `json:"hydra:member"`
}

type messageResponse struct {
	ID   string `json:"id"`
	From struct {
		Address string `json:"address"`
	} `json:"from"`
	Subject   string `json:"subject"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}
