package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Entitlement is one named grant in a subscriber's entitlement map.
type Entitlement struct {
	ExpiresDate *time.Time `json:"expires_date"`
}

// Subscriber is the slice of RevenueCat's subscriber object this service
// consumes.
type Subscriber struct {
	Entitlements map[string]Entitlement `json:"entitlements"`
}

// ActiveEntitlements returns the names of entitlements whose expiry is
// strictly in the future.
func (s Subscriber) ActiveEntitlements(now time.Time) map[string]time.Time {
	active := make(map[string]time.Time, len(s.Entitlements))
	for name, ent := range s.Entitlements {
		if ent.ExpiresDate != nil && ent.ExpiresDate.After(now) {
			active[name] = *ent.ExpiresDate
		}
	}
	return active
}

// Provider represents the outbound billing query capability.
type Provider interface {
	GetSubscriber(ctx context.Context, userID string) (*Subscriber, error)
}

type restClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewRESTClient creates a Provider backed by the RevenueCat REST API.
func NewRESTClient(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: APIKey is required", ErrInvalidConfig)
	}
	return &restClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type subscriberResponse struct {
	Subscriber Subscriber `json:"subscriber"`
}

func (c *restClient) GetSubscriber(ctx context.Context, userID string) (*Subscriber, error) {
	endpoint := fmt.Sprintf("%s/subscribers/%s",
		strings.TrimSuffix(c.cfg.BaseURL, "/"), url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, string(detail))
	}

	var parsed subscriberResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrRequestFailed, err)
	}
	return &parsed.Subscriber, nil
}
