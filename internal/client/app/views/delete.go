package views

import (
	"context"
	"errors"

	"sharenotes/internal/client/app/store"
	"sharenotes/internal/client/domain/entities"
	"sharenotes/internal/client/ports/ui"
)

// ErrNothingToDelete возвращается, если заметка для удаления не загружена.
var ErrNothingToDelete = errors.New("no note loaded for deletion")

// DeleteRender - данные окна подтверждения удаления.
type DeleteRender struct {
	Loading      bool          `json:"loading" yaml:"loading"`
	Updating     bool          `json:"updating" yaml:"updating"`
	Note         entities.Note `json:"note" yaml:"note"`
	ErrorMessage string        `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
}

// DeleteView - подтверждение удаления заметки.
type DeleteView struct {
	base
}

// NewDeleteView создает представление удаления.
func NewDeleteView(s *store.Store, nav ui.Navigator) *DeleteView {
	return &DeleteView{base: newBase(s, nav)}
}

// Mount загружает удаляемую заметку.
func (v *DeleteView) Mount(ctx context.Context, id int64) {
	v.mount(ctx)
	v.tasks.spawn(ctx, func(ctx context.Context) {
		v.store.FetchOne(ctx, id)
	})
}

// Confirm удаляет загруженную заметку.
func (v *DeleteView) Confirm(ctx context.Context) error {
	entity := v.store.Snapshot().Entity
	if entity.ID == nil {
		return ErrNothingToDelete
	}
	id := *entity.ID
	v.tasks.spawn(ctx, func(ctx context.Context) {
		v.store.Delete(ctx, id)
	})
	return nil
}

// Cancel закрывает окно без удаления.
func (v *DeleteView) Cancel() {
	if v.navigator != nil {
		v.navigator.Navigate(ui.RouteNoteList)
	}
}

// Render строит данные для отображения.
func (v *DeleteView) Render() DeleteRender {
	st := v.store.Snapshot()
	return DeleteRender{Loading: st.Loading, Updating: st.Updating, Note: st.Entity, ErrorMessage: st.ErrorMessage}
}
