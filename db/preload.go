package db

import (
	configurationstore "jml-lite/lib/configuration/store"
	"jml-lite/models"
	dbmodels "jml-lite/models/db"

	log "github.com/sirupsen/logrus"
)

func InitPreload() {
	addTeamsWebhookDefaults()
}

// addTeamsWebhookDefaults создаёт отключённую настройку вебхуков, если её ещё нет
func addTeamsWebhookDefaults() {
	store := configurationstore.NewInstance(DB)
	list, err := store.ListByKeyMarker(models.TeamsWebhookKeyMarker)
	if err != nil {
		log.WithError(err).Error("ошибка получения настроек вебхуков Teams")
		return
	}
	for _, rec := range list {
		if rec.ConfigKey == string(models.TeamsWebhookEnabled) {
			return
		}
	}
	err = store.Upsert([]dbmodels.ConfigurationEntry{{
		ConfigKey:   string(models.TeamsWebhookEnabled),
		ConfigValue: "false",
		Category:    models.TeamsConfigCategory,
		IsActive:    true,
	}})
	if err != nil {
		log.WithError(err).Error("ошибка добавления настроек вебхуков Teams по умолчанию")
	}
}
