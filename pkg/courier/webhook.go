// Package courier delivers secret credentials for newly created wallets
// through a private side channel. Delivery happens exactly once per account;
// nothing in this package persists or logs the secret.
package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultRequestTimeout = 10 * time.Second

// deliveryPayload is the body posted to the transport's direct-message hook.
type deliveryPayload struct {
	DeliveryID    string `json:"delivery_id"`
	UserID        string `json:"user_id"`
	PublicAddress string `json:"public_address"`
	Secret        string `json:"secret"`
}

// WebhookCourier posts secrets to the chat transport's direct-message
// endpoint. Requests are authenticated with a short-lived HS256 token so the
// receiving side can reject anything not originating from this service.
type WebhookCourier struct {
	endpoint      string
	signingSecret []byte
	issuer        string
	client        *http.Client
}

// NewWebhookCourier creates a courier posting to the given endpoint.
func NewWebhookCourier(endpoint string, signingSecret []byte, issuer string) *WebhookCourier {
	return &WebhookCourier{
		endpoint:      endpoint,
		signingSecret: signingSecret,
		issuer:        issuer,
		client:        &http.Client{Timeout: defaultRequestTimeout},
	}
}

// DeliverSecret posts the secret to the direct-message endpoint. A non-2xx
// response is a delivery failure; the caller decides how to surface it.
func (c *WebhookCourier) DeliverSecret(ctx context.Context, userID, publicAddress, secret string) error {
	payload := deliveryPayload{
		DeliveryID:    uuid.NewString(),
		UserID:        userID,
		PublicAddress: publicAddress,
		Secret:        secret,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode delivery payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build delivery request: %w", err)
	}

	token, err := c.signToken(userID)
	if err != nil {
		return fmt.Errorf("failed to sign delivery token: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("delivery request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("delivery endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *WebhookCourier) signToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingSecret)
}
