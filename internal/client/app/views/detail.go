package views

import (
	"context"

	"sharenotes/internal/client/app/store"
	"sharenotes/internal/client/domain/entities"
	"sharenotes/internal/client/ports/ui"
)

// DetailRender - данные для отображения заметки.
type DetailRender struct {
	Loading      bool          `json:"loading" yaml:"loading"`
	Note         entities.Note `json:"note" yaml:"note"`
	ErrorMessage string        `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
}

// DetailView - просмотр одной заметки.
type DetailView struct {
	base
}

// NewDetailView создает представление заметки.
func NewDetailView(s *store.Store, nav ui.Navigator) *DetailView {
	return &DetailView{base: newBase(s, nav)}
}

// Mount загружает заметку.
func (v *DetailView) Mount(ctx context.Context, id int64) {
	v.mount(ctx)
	v.tasks.spawn(ctx, func(ctx context.Context) {
		v.store.FetchOne(ctx, id)
	})
}

// Render строит данные для отображения.
func (v *DetailView) Render() DetailRender {
	st := v.store.Snapshot()
	return DetailRender{Loading: st.Loading, Note: st.Entity, ErrorMessage: st.ErrorMessage}
}
