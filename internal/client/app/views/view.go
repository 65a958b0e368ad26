// Package views содержит представления заметок: список, просмотр, редактирование,
// подтверждение удаления и публичный доступ по паролю. Представления вызывают
// операции хранилища и строят данные для отображения из его снимков.
package views

import (
	"context"
	"sync"

	"sharenotes/internal/client/app/store"
	"sharenotes/internal/client/ports/ui"
)

// tasks - группа асинхронных задач представления, отменяемая при Unmount.
type tasks struct {
	mu     sync.Mutex
	life   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (t *tasks) start(parent context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	t.life, t.cancel = context.WithCancel(parent)
}

func (t *tasks) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
}

// spawn запускает fn с контекстом, который отменяется вместе с ctx
// или с временем жизни представления.
func (t *tasks) spawn(ctx context.Context, fn func(ctx context.Context)) {
	t.mu.Lock()
	life := t.life
	t.mu.Unlock()

	taskCtx, cancel := context.WithCancel(ctx)
	stopAfter := func() bool { return true }
	if life != nil {
		stopAfter = context.AfterFunc(life, cancel)
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer cancel()
		defer stopAfter()
		fn(taskCtx)
	}()
}

func (t *tasks) wait() {
	t.wg.Wait()
}

// base - общая часть представлений: задачи, подписка на хранилище и переход
// к списку после успешного изменения.
type base struct {
	store     *store.Store
	navigator ui.Navigator
	tasks     tasks

	navMu       sync.Mutex
	lastSuccess bool
	unsubscribe func()
}

func newBase(s *store.Store, nav ui.Navigator) base {
	return base{store: s, navigator: nav}
}

func (b *base) mount(ctx context.Context) {
	b.tasks.start(ctx)

	b.navMu.Lock()
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
	b.lastSuccess = b.store.Snapshot().UpdateSuccess
	b.navMu.Unlock()

	unsubscribe := b.store.Subscribe(b.onState)
	b.navMu.Lock()
	b.unsubscribe = unsubscribe
	b.navMu.Unlock()
}

func (b *base) onState(st store.State) {
	b.navMu.Lock()
	flipped := st.UpdateSuccess && !b.lastSuccess
	b.lastSuccess = st.UpdateSuccess
	b.navMu.Unlock()

	if flipped && b.navigator != nil {
		b.navigator.Navigate(ui.RouteNoteList)
	}
}

// Unmount отменяет незавершенные задачи и отписывается от хранилища.
func (b *base) Unmount() {
	b.tasks.stop()

	b.navMu.Lock()
	defer b.navMu.Unlock()
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
}

// Wait ожидает завершения запущенных задач.
func (b *base) Wait() {
	b.tasks.wait()
}
