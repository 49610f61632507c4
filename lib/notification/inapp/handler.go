package inapp

import (
	"context"
	"fmt"
	"time"

	"jml-lite/db"
	inappstore "jml-lite/lib/notification/inapp/store"
	"jml-lite/lib/notification/push"
	"jml-lite/models"
	inappapimodels "jml-lite/models/api/inapp"
	dbmodels "jml-lite/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	// Notify сообщение по шаблону кода, args подставляются в текст
	Notify(ctx context.Context, userID uint, code models.InAppCode, link string, args ...any) bool
	List(userID uint, unreadOnly bool) ([]inappapimodels.NotificationView, error)
	MarkRead(userID uint, ids []uint) error
}

var Instance Provider

func NewHandler() {
	Instance = NewProvider(inappstore.NewInstance(db.DB), push.Instance)
}

// NewProvider pusher может быть nil, тогда уведомления только сохраняются
func NewProvider(store inappstore.Provider, pusher push.Provider) Provider {
	return impl{
		store:  store,
		pusher: pusher,
	}
}

type impl struct {
	store  inappstore.Provider
	pusher push.Provider
}

func (i impl) getLogger(userID uint, code models.InAppCode) *log.Entry {
	return log.
		WithField("user_id", userID).
		WithField("in_app_code", code)
}

func (i impl) Notify(ctx context.Context, userID uint, code models.InAppCode, link string, args ...any) bool {
	logger := i.getLogger(userID, code)
	if userID == 0 {
		logger.Debug("уведомление не создано: не указан получатель")
		return false
	}
	tpl, ok := models.InAppCodeMap[code]
	if !ok {
		logger.Error("не найден шаблон уведомления")
		return false
	}
	rec := dbmodels.InAppNotification{
		UserID: userID,
		Code:   code,
		Title:  tpl.Title,
		Msg:    fmt.Sprintf(tpl.Msg, args...),
		Link:   link,
	}
	id, err := i.store.Create(rec)
	if err != nil {
		logger.WithError(err).Error("ошибка сохранения уведомления")
		return false
	}
	if i.pusher != nil {
		view := rec.ToModelView()
		view.ID = id
		view.CreatedAt = time.Now()
		i.pusher.Send(userID, view)
	}
	return true
}

func (i impl) List(userID uint, unreadOnly bool) ([]inappapimodels.NotificationView, error) {
	list, err := i.store.List(userID, unreadOnly)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения уведомлений")
	}
	result := make([]inappapimodels.NotificationView, 0, len(list))
	for _, rec := range list {
		result = append(result, rec.ToModelView())
	}
	return result, nil
}

func (i impl) MarkRead(userID uint, ids []uint) error {
	err := i.store.MarkRead(userID, ids)
	if err != nil {
		return errors.Wrap(err, "ошибка отметки уведомлений")
	}
	return nil
}
