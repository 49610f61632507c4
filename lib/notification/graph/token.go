package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultScope = "https://graph.microsoft.com/.default"
	// tokenRefreshGap токен обновляется заранее, до истечения срока
	tokenRefreshGap = time.Minute
)

// TokenSource источник bearer токена для Graph
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type StaticToken string

func (t StaticToken) Token(ctx context.Context) (string, error) {
	if t == "" {
		return "", errors.New("не задан токен доступа Graph")
	}
	return string(t), nil
}

// ClientCredentials токен приложения (grant_type=client_credentials), кешируется до истечения
type ClientCredentials struct {
	AuthorityURL string
	TenantID     string
	ClientID     string
	ClientSecret string
	Scope        string
	HTTPClient   *http.Client
	Now          func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int    `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	if c.token != "" && now.Before(c.expiresAt) {
		return c.token, nil
	}
	scope := c.Scope
	if scope == "" {
		scope = defaultScope
	}
	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", c.ClientID)
	data.Set("client_secret", c.ClientSecret)
	data.Set("scope", scope)
	uri := fmt.Sprintf("%s/%s/oauth2/v2.0/token", strings.TrimRight(c.AuthorityURL, "/"), c.TenantID)
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, strings.NewReader(data.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "ошибка формирования запроса токена")
	}
	r.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(r)
	if err != nil {
		return "", errors.Wrap(err, "ошибка получения токена Graph")
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "ошибка чтения ответа на запрос токена")
	}
	result := tokenResponse{}
	if err = json.Unmarshal(body, &result); err != nil {
		return "", errors.Wrapf(err, "некорректный ответ на запрос токена, HTTP %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || result.AccessToken == "" {
		return "", errors.Errorf("токен Graph не получен: HTTP %d: %s %s", resp.StatusCode, result.Error, result.ErrorDescription)
	}
	c.token = result.AccessToken
	c.expiresAt = now.Add(time.Duration(result.ExpiresIn)*time.Second - tokenRefreshGap)
	return c.token, nil
}
