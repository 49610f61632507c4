package audittrail

import (
	"context"
	"encoding/json"

	"jml-lite/db"
	audittrailstore "jml-lite/lib/audit-trail/store"
	authutils "jml-lite/lib/utils/auth-utils"
	"jml-lite/lib/utils/detached"
	auditapimodels "jml-lite/models/api/audit"
	dbmodels "jml-lite/models/db"

	log "github.com/sirupsen/logrus"
)

// SystemUserName автор записей, сделанных без пользователя (воркеры)
const SystemUserName = "Система"

type Provider interface {
	// Log пишет запись в фоне, ошибки только логируются
	Log(ctx context.Context, activity auditapimodels.Activity)
	List(filter auditapimodels.AuditFilter) ([]auditapimodels.AuditEntryView, error)
	// Wait дожидается фоновых записей
	Wait()
}

var Instance Provider

func NewHandler() {
	Instance = NewProvider(audittrailstore.NewInstance(db.DB))
}

func NewProvider(store audittrailstore.Provider) Provider {
	return &impl{
		store:  store,
		runner: detached.NewRunner(),
	}
}

type impl struct {
	store  audittrailstore.Provider
	runner *detached.Runner
}

func (i *impl) getLogger(activity auditapimodels.Activity) *log.Entry {
	return log.
		WithField("audit_action", activity.Action).
		WithField("entity_type", activity.EntityType).
		WithField("entity_id", activity.EntityID)
}

func (i *impl) Log(ctx context.Context, activity auditapimodels.Activity) {
	rec := dbmodels.AuditEntry{
		Action:          activity.Action,
		EntityType:      activity.EntityType,
		EntityID:        activity.EntityID,
		EntityTitle:     activity.EntityTitle,
		Details:         marshalDetails(activity.Details),
		PerformedByName: SystemUserName,
	}
	if user, ok := authutils.UserFromContext(ctx); ok {
		rec.PerformedByID = user.ID
		rec.PerformedByName = user.Name
	}
	i.runner.Go(ctx, "audit", func(ctx context.Context) {
		_, err := i.store.Create(rec)
		if err != nil {
			i.getLogger(activity).WithError(err).Error("ошибка записи в журнал аудита")
		}
	})
}

func (i *impl) List(filter auditapimodels.AuditFilter) ([]auditapimodels.AuditEntryView, error) {
	list, err := i.store.List(filter)
	if err != nil {
		return nil, err
	}
	result := make([]auditapimodels.AuditEntryView, 0, len(list))
	for _, rec := range list {
		result = append(result, rec.ToModelView())
	}
	return result, nil
}

func (i *impl) Wait() {
	i.runner.Wait()
}

func marshalDetails(details any) string {
	switch v := details.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	body, err := json.Marshal(details)
	if err != nil {
		log.WithError(err).Warn("не удалось сериализовать детали аудита")
		return ""
	}
	return string(body)
}
