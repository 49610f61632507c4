package teams

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const maxErrorBody = 512

// WebhookClient отправка карточки во входящий вебхук Teams
type WebhookClient interface {
	Post(ctx context.Context, url string, envelope Envelope) error
}

func NewWebhookClient(httpClient *http.Client) WebhookClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &webhookClient{
		httpClient: httpClient,
	}
}

type webhookClient struct {
	httpClient *http.Client
}

func (c webhookClient) Post(ctx context.Context, url string, envelope Envelope) error {
	body, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, "ошибка сериализации карточки")
	}
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return errors.Wrap(err, "ошибка формирования запроса")
	}
	r.Header.Add("Content-Type", "application/json")
	resp, err := c.httpClient.Do(r)
	if err != nil {
		return errors.Wrap(err, "ошибка отправки запроса")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}
