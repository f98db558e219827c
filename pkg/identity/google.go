package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
)

const identityScope = "https://www.googleapis.com/auth/identitytoolkit"

type googleClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewGoogleClient creates a ClaimsSetter/TokenVerifier backed by the
// Identity Toolkit REST API, authenticated with a service account key.
func NewGoogleClient(ctx context.Context, cfg Config) (*googleClient, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("%w: ProjectID is required", ErrInvalidConfig)
	}
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("%w: CredentialsFile is required", ErrInvalidConfig)
	}

	key, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: reading credentials: %v", ErrInvalidConfig, err)
	}
	jwtCfg, err := google.JWTConfigFromJSON(key, identityScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing credentials: %v", ErrInvalidConfig, err)
	}

	hc := jwtCfg.Client(ctx)
	hc.Timeout = cfg.Timeout
	return &googleClient{cfg: cfg, httpClient: hc}, nil
}

// SetPlanClaim writes {"plan": <plan>} into the user's custom attributes.
func (c *googleClient) SetPlanClaim(ctx context.Context, userID, plan string) error {
	attrs, err := json.Marshal(map[string]string{"plan": plan})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	body, err := json.Marshal(map[string]string{
		"localId":          userID,
		"customAttributes": string(attrs),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	endpoint := fmt.Sprintf("%s/projects/%s/accounts:update",
		strings.TrimSuffix(c.cfg.BaseURL, "/"), c.cfg.ProjectID)
	return c.post(ctx, endpoint, body, nil)
}

type lookupResponse struct {
	Users []struct {
		LocalID string `json:"localId"`
	} `json:"users"`
}

// Verify resolves an ID token via accounts:lookup.
func (c *googleClient) Verify(ctx context.Context, idToken string) (string, error) {
	if strings.TrimSpace(idToken) == "" {
		return "", ErrInvalidToken
	}

	body, err := json.Marshal(map[string]string{"idToken": idToken})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	endpoint := fmt.Sprintf("%s/projects/%s/accounts:lookup",
		strings.TrimSuffix(c.cfg.BaseURL, "/"), c.cfg.ProjectID)

	var parsed lookupResponse
	if err := c.post(ctx, endpoint, body, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Users) == 0 || parsed.Users[0].LocalID == "" {
		return "", ErrUserNotResolved
	}
	return parsed.Users[0].LocalID, nil
}

func (c *googleClient) post(ctx context.Context, endpoint string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: status %d: %s", ErrInvalidToken, resp.StatusCode, string(detail))
		}
		return fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, string(detail))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decoding response: %v", ErrRequestFailed, err)
		}
	}
	return nil
}
