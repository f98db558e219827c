package push

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

const fcmScope = "https://www.googleapis.com/auth/firebase.messaging"

type fcmSender struct {
	httpClient *http.Client
	endpoint   string
}

// NewFCMSender creates a Sender backed by the FCM HTTP v1 API, using an
// OAuth2 token source derived from the service account key file.
func NewFCMSender(ctx context.Context, cfg Config) (Sender, error) {
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

	jwtCfg, err := google.JWTConfigFromJSON(key, fcmScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing credentials: %v", ErrInvalidConfig, err)
	}

	return &fcmSender{
		httpClient: jwtCfg.Client(ctx),
		endpoint:   fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", cfg.ProjectID),
	}, nil
}

// fcmRequest mirrors the HTTP v1 message envelope.
type fcmRequest struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string            `json:"token"`
	Notification *fcmNotification  `json:"notification,omitempty"`
	Android      *fcmAndroid       `json:"android,omitempty"`
	APNS         *fcmAPNS          `json:"apns,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

type fcmAndroid struct {
	Priority     string                  `json:"priority,omitempty"`
	Notification *fcmAndroidNotification `json:"notification,omitempty"`
}

type fcmAndroidNotification struct {
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

type fcmAPNS struct {
	Payload *fcmAPNSPayload `json:"payload,omitempty"`
}

type fcmAPNSPayload struct {
	APS fcmAPS `json:"aps"`
}

type fcmAPS struct {
	Sound string `json:"sound,omitempty"`
}

func (s *fcmSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.Token) == "" {
		return ErrInvalidToken
	}

	req := fcmRequest{
		Message: fcmMessage{
			Token:        msg.Token,
			Notification: &fcmNotification{Title: msg.Title, Body: msg.Body},
			Data:         msg.Data,
		},
	}
	if msg.Color != "" || msg.Icon != "" || msg.Priority != "" {
		req.Message.Android = &fcmAndroid{
			Priority: androidPriority(msg.Priority),
			Notification: &fcmAndroidNotification{
				Color: msg.Color,
				Icon:  msg.Icon,
			},
		}
	}
	if msg.Sound != "" {
		req.Message.APNS = &fcmAPNS{Payload: &fcmAPNSPayload{APS: fcmAPS{Sound: msg.Sound}}}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: fcm status %d: %s", ErrSendFailed, resp.StatusCode, string(detail))
	}
	return nil
}

func androidPriority(p Priority) string {
	if p == PriorityHigh {
		return "HIGH"
	}
	return "NORMAL"
}
