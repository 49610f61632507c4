package teams

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"jml-lite/db"
	audittrail "jml-lite/lib/audit-trail"
	configurationstore "jml-lite/lib/configuration/store"
	"jml-lite/models"
	auditapimodels "jml-lite/models/api/audit"
	notificationapimodels "jml-lite/models/api/notification"
	settingsapimodels "jml-lite/models/api/settings"
	dbmodels "jml-lite/models/db"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	configCacheTTL = 5 * time.Minute
	channelName    = "teams"

	ChannelPrimary = "primary"
	ChannelHR      = "hr"
	ChannelIT      = "it"
	ChannelManager = "manager"
)

var ErrDisabled = errors.New("уведомления Teams отключены или не настроен основной вебхук")

type Provider interface {
	GetWebhookConfig(ctx context.Context) settingsapimodels.WebhookConfig
	SaveWebhookConfig(ctx context.Context, cfg settingsapimodels.WebhookConfig) error
	SendTaskNotification(ctx context.Context, n notificationapimodels.TaskNotification) bool
	SendApprovalNotification(ctx context.Context, n notificationapimodels.ApprovalNotification) bool
	SendProcessNotification(ctx context.Context, n notificationapimodels.ProcessNotification) bool
	SendGeneralNotification(ctx context.Context, n notificationapimodels.GeneralNotification) bool
	// SendTaskReminder как SendTaskNotification, но с причиной неудачи
	SendTaskReminder(ctx context.Context, n notificationapimodels.TaskNotification) error
	// TestWebhook одна тестовая карточка на указанный адрес, сохранённые настройки не используются
	TestWebhook(ctx context.Context, url string) settingsapimodels.WebhookTestResult
}

var Instance Provider

func NewHandler() {
	Instance = NewProvider(
		configurationstore.NewInstance(db.DB),
		NewWebhookClient(nil),
		audittrail.Instance,
		time.Now,
	)
}

func NewProvider(store configurationstore.Provider, client WebhookClient, audit audittrail.Provider, now func() time.Time) Provider {
	return &impl{
		store:  store,
		client: client,
		audit:  audit,
		now:    now,
	}
}

type impl struct {
	store  configurationstore.Provider
	client WebhookClient
	audit  audittrail.Provider
	now    func() time.Time

	cacheMu   sync.Mutex
	cached    *settingsapimodels.WebhookConfig
	expiresAt time.Time
}

type target struct {
	channel string
	url     string
}

type delivery struct {
	category string
	entityID uint
	title    string
	card     AdaptiveCard
	extra    []string
}

func (i *impl) getLogger(category string, entityID uint) *log.Entry {
	return log.
		WithField("notification_channel", channelName).
		WithField("category", category).
		WithField("entity_id", entityID)
}

func (i *impl) GetWebhookConfig(ctx context.Context) settingsapimodels.WebhookConfig {
	i.cacheMu.Lock()
	defer i.cacheMu.Unlock()
	if i.cached != nil && i.now().Before(i.expiresAt) {
		return *i.cached
	}
	list, err := i.store.ListByKeyMarker(models.TeamsWebhookKeyMarker)
	if err != nil {
		log.WithError(err).Error("ошибка чтения настроек вебхуков Teams")
		return settingsapimodels.WebhookConfig{}
	}
	cfg := settingsapimodels.WebhookConfig{}
	for _, rec := range list {
		value := strings.TrimSpace(rec.ConfigValue)
		switch models.ConfigKey(rec.ConfigKey) {
		case models.TeamsWebhookPrimary:
			cfg.PrimaryURL = value
		case models.TeamsWebhookHR:
			cfg.HRURL = value
		case models.TeamsWebhookIT:
			cfg.ITURL = value
		case models.TeamsWebhookManager:
			cfg.ManagerURL = value
		case models.TeamsWebhookEnabled:
			cfg.IsEnabled = parseBool(value)
		}
	}
	i.cached = &cfg
	i.expiresAt = i.now().Add(configCacheTTL)
	return cfg
}

func (i *impl) SaveWebhookConfig(ctx context.Context, cfg settingsapimodels.WebhookConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	entries := []dbmodels.ConfigurationEntry{
		configEntry(models.TeamsWebhookPrimary, cfg.PrimaryURL),
		configEntry(models.TeamsWebhookHR, cfg.HRURL),
		configEntry(models.TeamsWebhookIT, cfg.ITURL),
		configEntry(models.TeamsWebhookManager, cfg.ManagerURL),
		configEntry(models.TeamsWebhookEnabled, strconv.FormatBool(cfg.IsEnabled)),
	}
	if err := i.store.Upsert(entries); err != nil {
		return err
	}
	i.invalidate()
	if i.audit != nil {
		i.audit.Log(ctx, auditapimodels.Activity{
			Action:      models.AuditConfigurationChanged,
			EntityType:  models.EntityConfiguration,
			EntityTitle: models.TeamsWebhookKeyMarker,
			Details: map[string]any{
				"is_enabled": cfg.IsEnabled,
				"channels":   configuredChannels(cfg),
			},
		})
	}
	return nil
}

func (i *impl) SendTaskNotification(ctx context.Context, n notificationapimodels.TaskNotification) bool {
	return i.deliver(ctx, taskDelivery(n)) == nil
}

func (i *impl) SendTaskReminder(ctx context.Context, n notificationapimodels.TaskNotification) error {
	return i.deliver(ctx, taskDelivery(n))
}

func (i *impl) SendApprovalNotification(ctx context.Context, n notificationapimodels.ApprovalNotification) bool {
	d := delivery{
		category: string(n.Kind),
		entityID: n.ApprovalID,
		title:    n.Title,
		card:     BuildApprovalCard(n),
	}
	if n.Kind == notificationapimodels.ApprovalRequired {
		d.extra = []string{ChannelManager}
	}
	return i.deliver(ctx, d) == nil
}

func (i *impl) SendProcessNotification(ctx context.Context, n notificationapimodels.ProcessNotification) bool {
	d := delivery{
		category: string(n.Kind),
		entityID: n.ProcessID,
		title:    n.EmployeeName,
		card:     BuildProcessCard(n),
	}
	switch n.Kind {
	case notificationapimodels.ProcessStarted:
		d.extra = []string{ChannelHR, ChannelIT}
	case notificationapimodels.ProcessCompleted:
		d.extra = []string{ChannelHR}
	}
	return i.deliver(ctx, d) == nil
}

func (i *impl) SendGeneralNotification(ctx context.Context, n notificationapimodels.GeneralNotification) bool {
	return i.deliver(ctx, delivery{
		category: "General",
		title:    n.Title,
		card:     BuildGeneralCard(n),
	}) == nil
}

func (i *impl) TestWebhook(ctx context.Context, url string) settingsapimodels.WebhookTestResult {
	card := BuildGeneralCard(notificationapimodels.GeneralNotification{
		Title:    "Проверка подключения",
		Message:  "Тестовое сообщение JML Lite. Если вы его видите, вебхук настроен правильно.",
		Priority: models.ApprovalPriorityLow,
	})
	err := i.client.Post(ctx, url, NewEnvelope(card))
	if err != nil {
		log.WithError(err).Warn("проверка вебхука Teams не пройдена")
		return settingsapimodels.WebhookTestResult{Success: false, Error: err.Error()}
	}
	return settingsapimodels.WebhookTestResult{Success: true}
}

// deliver основной канал определяет результат, дополнительные отправляются по возможности
func (i *impl) deliver(ctx context.Context, d delivery) error {
	logger := i.getLogger(d.category, d.entityID)
	cfg := i.GetWebhookConfig(ctx)
	if !cfg.IsEnabled || cfg.PrimaryURL == "" {
		logger.Debug("уведомление Teams пропущено: канал отключён")
		return ErrDisabled
	}
	envelope := NewEnvelope(d.card)
	primaryErr := i.post(ctx, d, target{channel: ChannelPrimary, url: cfg.PrimaryURL}, envelope)
	for _, extra := range resolveTargets(cfg, d.extra) {
		_ = i.post(ctx, d, extra, envelope)
	}
	return primaryErr
}

func (i *impl) post(ctx context.Context, d delivery, t target, envelope Envelope) error {
	err := i.client.Post(ctx, t.url, envelope)
	details := auditapimodels.NotificationDetails{
		NotificationID: uuid.NewString(),
		Channel:        channelName,
		Category:       d.category,
		Recipients:     []string{t.channel},
	}
	action := models.AuditTeamsSent
	if err != nil {
		action = models.AuditTeamsFailed
		details.Error = err.Error()
		i.getLogger(d.category, d.entityID).
			WithField("webhook", t.channel).
			WithError(err).
			Error("ошибка отправки уведомления в Teams")
	}
	if i.audit != nil {
		i.audit.Log(ctx, auditapimodels.Activity{
			Action:      action,
			EntityType:  models.EntityNotification,
			EntityID:    d.entityID,
			EntityTitle: d.title,
			Details:     details,
		})
	}
	return err
}

func (i *impl) invalidate() {
	i.cacheMu.Lock()
	defer i.cacheMu.Unlock()
	i.cached = nil
	i.expiresAt = time.Time{}
}

func taskDelivery(n notificationapimodels.TaskNotification) delivery {
	return delivery{
		category: string(n.Kind),
		entityID: n.TaskID,
		title:    n.TaskTitle,
		card:     BuildTaskCard(n),
	}
}

// resolveTargets пустые адреса и совпадающие с основным пропускаются
func resolveTargets(cfg settingsapimodels.WebhookConfig, channels []string) []target {
	result := []target{}
	for _, channel := range channels {
		url := ""
		switch channel {
		case ChannelHR:
			url = cfg.HRURL
		case ChannelIT:
			url = cfg.ITURL
		case ChannelManager:
			url = cfg.ManagerURL
		}
		if url == "" || url == cfg.PrimaryURL {
			continue
		}
		result = append(result, target{channel: channel, url: url})
	}
	return result
}

func configuredChannels(cfg settingsapimodels.WebhookConfig) []string {
	result := []string{}
	for _, t := range []target{
		{ChannelPrimary, cfg.PrimaryURL},
		{ChannelHR, cfg.HRURL},
		{ChannelIT, cfg.ITURL},
		{ChannelManager, cfg.ManagerURL},
	} {
		if t.url != "" {
			result = append(result, t.channel)
		}
	}
	return result
}

func configEntry(key models.ConfigKey, value string) dbmodels.ConfigurationEntry {
	return dbmodels.ConfigurationEntry{
		ConfigKey:   string(key),
		ConfigValue: value,
		Category:    models.TeamsConfigCategory,
		IsActive:    true,
	}
}

func parseBool(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes", "да":
		return true
	}
	return false
}
