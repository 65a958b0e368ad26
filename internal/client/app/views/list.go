package views

import (
	"context"
	"sync"

	"sharenotes/internal/client/app/store"
	"sharenotes/internal/client/domain/entities"
	"sharenotes/internal/client/ports/api"
	"sharenotes/internal/client/ports/ui"
)

// MsgNoNotes выводится, когда список пуст.
const MsgNoNotes = "No Notes found"

// ListRender - данные для отображения списка.
type ListRender struct {
	Loading bool            `json:"loading" yaml:"loading"`
	Notes   []entities.Note `json:"notes" yaml:"notes"`
	Empty   bool            `json:"empty" yaml:"empty"`
}

// ListView - список заметок пользователя.
type ListView struct {
	base

	mu     sync.Mutex
	params api.ListParams
}

// NewListView создает представление списка.
func NewListView(s *store.Store, nav ui.Navigator) *ListView {
	return &ListView{base: newBase(s, nav)}
}

// Mount загружает список.
func (v *ListView) Mount(ctx context.Context, params api.ListParams) {
	v.mount(ctx)
	v.mu.Lock()
	v.params = params
	v.mu.Unlock()
	v.Refresh(ctx)
}

// Refresh повторно загружает список с параметрами Mount.
func (v *ListView) Refresh(ctx context.Context) {
	v.mu.Lock()
	params := v.params
	v.mu.Unlock()
	v.tasks.spawn(ctx, func(ctx context.Context) {
		v.store.FetchList(ctx, params)
	})
}

// Render строит данные для отображения.
func (v *ListView) Render() ListRender {
	st := v.store.Snapshot()
	return ListRender{
		Loading: st.Loading,
		Notes:   st.Entities,
		Empty:   !st.Loading && len(st.Entities) == 0,
	}
}
