package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	notificationapimodels "jml-lite/models/api/notification"

	"github.com/pkg/errors"
)

// Transport доставка готового письма
type Transport interface {
	Send(ctx context.Context, msg notificationapimodels.EmailMessage) error
}

type emailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

type itemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type message struct {
	Subject      string      `json:"subject"`
	Body         itemBody    `json:"body"`
	ToRecipients []recipient `json:"toRecipients"`
	CcRecipients []recipient `json:"ccRecipients,omitempty"`
	Importance   string      `json:"importance"`
	Categories   []string    `json:"categories,omitempty"`
}

type sendMailRequest struct {
	Message         message `json:"message"`
	SaveToSentItems bool    `json:"saveToSentItems"`
}

// NewClient транспорт Graph sendMail; без senderUpn письмо уходит от /me
func NewClient(baseURL, senderUpn string, tokens TokenSource, httpClient *http.Client) Transport {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		senderUpn:  senderUpn,
		tokens:     tokens,
		httpClient: httpClient,
	}
}

type client struct {
	baseURL    string
	senderUpn  string
	tokens     TokenSource
	httpClient *http.Client
}

func (c client) sendMailURI() string {
	if c.senderUpn == "" {
		return c.baseURL + "/me/sendMail"
	}
	return fmt.Sprintf("%s/users/%s/sendMail", c.baseURL, url.PathEscape(c.senderUpn))
}

func (c client) Send(ctx context.Context, msg notificationapimodels.EmailMessage) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	body, err := json.Marshal(newSendMailRequest(msg))
	if err != nil {
		return errors.Wrap(err, "ошибка сериализации письма")
	}
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendMailURI(), bytes.NewBuffer(body))
	if err != nil {
		return errors.Wrap(err, "ошибка формирования запроса")
	}
	r.Header.Add("Content-Type", "application/json")
	r.Header.Add("Authorization", "Bearer "+token)
	resp, err := c.httpClient.Do(r)
	if err != nil {
		return errors.Wrap(err, "ошибка отправки запроса в Graph")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Errorf("Graph sendMail: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}

func newSendMailRequest(msg notificationapimodels.EmailMessage) sendMailRequest {
	importance := msg.Importance
	if importance == "" {
		importance = notificationapimodels.ImportanceNormal
	}
	m := message{
		Subject:      msg.Subject,
		Body:         itemBody{ContentType: "HTML", Content: msg.HtmlBody},
		ToRecipients: toRecipients(msg.To),
		CcRecipients: toRecipients(msg.Cc),
		Importance:   string(importance),
	}
	if msg.Category != "" {
		m.Categories = []string{msg.Category}
	}
	return sendMailRequest{Message: m, SaveToSentItems: true}
}

func toRecipients(list []notificationapimodels.Recipient) []recipient {
	if len(list) == 0 {
		return nil
	}
	result := make([]recipient, 0, len(list))
	for _, r := range list {
		result = append(result, recipient{EmailAddress: emailAddress{Address: r.Email, Name: r.Name}})
	}
	return result
}
