package inapp

import (
	"context"
	"testing"

	"jml-lite/lib/notification/push"
	"jml-lite/models"
	inappapimodels "jml-lite/models/api/inapp"
	dbmodels "jml-lite/models/db"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	records []dbmodels.InAppNotification
}

func (f *fakeStore) Create(rec dbmodels.InAppNotification) (uint, error) {
	rec.ID = uint(len(f.records) + 1)
	f.records = append(f.records, rec)
	return rec.ID, nil
}

func (f *fakeStore) List(userID uint, unreadOnly bool) ([]dbmodels.InAppNotification, error) {
	result := []dbmodels.InAppNotification{}
	for _, rec := range f.records {
		if rec.UserID == userID && (!unreadOnly || !rec.IsRead) {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (f *fakeStore) MarkRead(userID uint, ids []uint) error {
	for k := range f.records {
		if f.records[k].UserID != userID {
			continue
		}
		if len(ids) == 0 {
			f.records[k].IsRead = true
			continue
		}
		for _, id := range ids {
			if f.records[k].ID == id {
				f.records[k].IsRead = true
			}
		}
	}
	return nil
}

type fakePusher struct {
	sent map[uint][]any
}

func (f *fakePusher) AddClient(userID uint, conn push.Conn) func() {
	return func() {}
}

func (f *fakePusher) Send(userID uint, msg any) bool {
	f.sent[userID] = append(f.sent[userID], msg)
	return true
}

func (f *fakePusher) IsConnected(userID uint) bool {
	return len(f.sent[userID]) > 0
}

func TestNotify(t *testing.T) {
	store := &fakeStore{}
	pusher := &fakePusher{sent: map[uint][]any{}}
	h := NewProvider(store, pusher)

	require.True(t, h.Notify(context.Background(), 4, models.InAppTaskAssigned, "/tasks/1", "Выдать ноутбук", "Онбординг"))
	require.False(t, h.Notify(context.Background(), 0, models.InAppTaskAssigned, ""))
	require.False(t, h.Notify(context.Background(), 4, "Unknown", ""))

	list, err := h.List(4, true)
	require.Nil(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Новая задача", list[0].Title)
	require.Equal(t, "Вам назначена задача «Выдать ноутбук» (Онбординг).", list[0].Message)

	require.Len(t, pusher.sent[4], 1)
	pushed, ok := pusher.sent[4][0].(inappapimodels.NotificationView)
	require.True(t, ok)
	require.Equal(t, uint(1), pushed.ID)
	require.Equal(t, list[0].Message, pushed.Message)

	require.Nil(t, h.MarkRead(4, nil))
	list, _ = h.List(4, true)
	require.Empty(t, list)
}

func TestNotifyWithoutPusher(t *testing.T) {
	h := NewProvider(&fakeStore{}, nil)
	require.True(t, h.Notify(context.Background(), 2, models.InAppTaskAssigned, "", "Пропуск", "Онбординг"))
}
