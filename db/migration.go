package db

import (
	"jml-lite/models"
	dbmodels "jml-lite/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func AutoMigrateDB() error {
	log.Info("Запуск миграций")
	if err := DB.AutoMigrate(&dbmodels.Approval{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Approval")
	}
	if err := DB.AutoMigrate(&dbmodels.AuditEntry{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры AuditEntry")
	}
	if err := DB.AutoMigrate(&dbmodels.ConfigurationEntry{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры ConfigurationEntry")
	}
	if err := DB.AutoMigrate(&dbmodels.DirectoryUser{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры DirectoryUser")
	}
	if err := DB.AutoMigrate(&dbmodels.InAppNotification{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры InAppNotification")
	}
	// таблицы задач и карточек отдельные для каждого типа процесса
	for _, kind := range models.ProcessTypes {
		if err := DB.Table(dbmodels.ProcessTableName(kind)).AutoMigrate(&dbmodels.JmlProcess{}); err != nil {
			return errors.Wrapf(err, "ошибка создания структуры %v", dbmodels.ProcessTableName(kind))
		}
		if err := DB.Table(dbmodels.TaskTableName(kind)).AutoMigrate(&dbmodels.JmlTask{}); err != nil {
			return errors.Wrapf(err, "ошибка создания структуры %v", dbmodels.TaskTableName(kind))
		}
	}
	log.Info("Миграция прошла успешно")
	return nil
}
