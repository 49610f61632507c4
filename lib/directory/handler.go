package directory

import (
	"jml-lite/db"
	directorystore "jml-lite/lib/directory/store"
	directoryapimodels "jml-lite/models/api/directory"

	"github.com/pkg/errors"
)

// Provider разрешает id сотрудника в имя и почту
type Provider interface {
	GetUser(id uint) (*directoryapimodels.UserView, error)
}

var Instance Provider

func NewHandler() {
	Instance = NewProvider(directorystore.NewInstance(db.DB))
}

func NewProvider(store directorystore.Provider) Provider {
	return impl{
		store: store,
	}
}

type impl struct {
	store directorystore.Provider
}

func (i impl) GetUser(id uint) (*directoryapimodels.UserView, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка получения сотрудника %v", id)
	}
	if rec == nil {
		return nil, nil
	}
	view := rec.ToModelView()
	return &view, nil
}
