package initializers

import (
	"net/http"
	"time"

	"jml-lite/config"
	"jml-lite/lib/notification/graph"
	"jml-lite/lib/smtp"

	log "github.com/sirupsen/logrus"
)

const (
	transportGraph = "graph"
	transportSmtp  = "smtp"
)

// InitEmailTransport транспорт писем по настройке Notifications.EmailTransport.
// nil, если транспорт не настроен: письма тогда только фиксируются в журнале как Queued
func InitEmailTransport() graph.Transport {
	logger := log.WithField("email_transport", config.Conf.Notifications.EmailTransport)
	switch config.Conf.Notifications.EmailTransport {
	case transportSmtp:
		smtp.Connect(config.Conf.Smtp.User, config.Conf.Smtp.Password, config.Conf.Smtp.Host,
			config.Conf.Smtp.Port, config.Conf.Smtp.From, *config.Conf.Smtp.TLSEnabled)
		logger.Info("письма отправляются через SMTP")
		return smtp.Instance
	case transportGraph:
		httpClient := &http.Client{Timeout: 30 * time.Second}
		var tokens graph.TokenSource
		switch {
		case config.Conf.Graph.ClientSecret != "":
			tokens = &graph.ClientCredentials{
				AuthorityURL: config.Conf.Graph.AuthorityUrl,
				TenantID:     config.Conf.Graph.TenantID,
				ClientID:     config.Conf.Graph.ClientID,
				ClientSecret: config.Conf.Graph.ClientSecret,
				HTTPClient:   httpClient,
			}
		case config.Conf.Graph.AccessToken != "":
			tokens = graph.StaticToken(config.Conf.Graph.AccessToken)
		default:
			logger.Warn("не заданы учётные данные Graph, письма не будут отправляться")
			return nil
		}
		logger.Info("письма отправляются через Microsoft Graph")
		return graph.NewClient(config.Conf.Graph.BaseUrl, config.Conf.Graph.SenderUpn, tokens, httpClient)
	}
	logger.Warn("неизвестный транспорт писем, письма не будут отправляться")
	return nil
}
