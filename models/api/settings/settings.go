package settingsapimodels

import (
	apimodels "jml-lite/models/api"
	"strings"

	"github.com/pkg/errors"
)

type WebhookConfig struct {
	PrimaryURL string `json:"primary_url"`
	HRURL      string `json:"hr_url"`
	ITURL      string `json:"it_url"`
	ManagerURL string `json:"manager_url"`
	IsEnabled  bool   `json:"is_enabled"`
}

func (c WebhookConfig) Validate() error {
	for name, value := range map[string]string{
		"primary_url": c.PrimaryURL,
		"hr_url":      c.HRURL,
		"it_url":      c.ITURL,
		"manager_url": c.ManagerURL,
	} {
		if value == "" {
			continue
		}
		if err := ValidateWebhookURL(value); err != nil {
			return errors.Wrap(err, name)
		}
	}
	if c.IsEnabled && c.PrimaryURL == "" {
		return errors.New("для включения уведомлений укажите основной вебхук")
	}
	return nil
}

type WebhookTestRequest struct {
	URL string `json:"url"`
}

func (r WebhookTestRequest) Validate() error {
	return ValidateWebhookURL(r.URL)
}

type WebhookTestResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func ValidateWebhookURL(value string) error {
	if err := apimodels.ValidateVar(value, "required,url"); err != nil {
		return errors.New("некорректный адрес вебхука")
	}
	if !strings.HasPrefix(strings.ToLower(value), "https://") {
		return errors.New("адрес вебхука должен начинаться с https://")
	}
	return nil
}
