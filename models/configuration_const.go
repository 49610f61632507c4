package models

type ConfigKey string

const (
	TeamsWebhookPrimary ConfigKey = "TeamsWebhookPrimary"
	TeamsWebhookHR      ConfigKey = "TeamsWebhookHR"
	TeamsWebhookIT      ConfigKey = "TeamsWebhookIT"
	TeamsWebhookManager ConfigKey = "TeamsWebhookManager"
	TeamsWebhookEnabled ConfigKey = "TeamsWebhookEnabled"
)

// TeamsWebhookKeyMarker по этой подстроке выбираются настройки вебхуков
const TeamsWebhookKeyMarker = "TeamsWebhook"

const TeamsConfigCategory = "Notifications"
