package views

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sharenotes/internal/client/app/store"
	"sharenotes/internal/client/domain/entities"
	"sharenotes/internal/client/ports/api"
	"sharenotes/internal/client/ports/ui"
	"sharenotes/pkg/logger"
)

// ErrInvalidID возвращается для идентификатора заметки, который не является числом.
var ErrInvalidID = errors.New("invalid note id")

// ErrNoteNotLoaded возвращается при сохранении, если хранилище не содержит
// заметку, для которой открыта форма.
var ErrNoteNotLoaded = errors.New("note is not loaded")

const logUsersFailed = "failed to load users for note form"

// EditRender - данные формы создания/редактирования.
type EditRender struct {
	IsNew        bool              `json:"isNew" yaml:"isNew"`
	Loading      bool              `json:"loading" yaml:"loading"`
	Updating     bool              `json:"updating" yaml:"updating"`
	Form         entities.NoteForm `json:"form" yaml:"form"`
	Users        []entities.User   `json:"users" yaml:"users"`
	ErrorMessage string            `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
}

// EditView - форма создания новой или редактирования существующей заметки.
type EditView struct {
	base
	usersAPI api.UsersAPI
	location *time.Location
	now      func() time.Time

	mu     sync.Mutex
	isNew  bool
	noteID int64
	users  []entities.User
}

// NewEditView создает представление формы. Поля даты формы трактуются в loc.
func NewEditView(s *store.Store, usersAPI api.UsersAPI, nav ui.Navigator, loc *time.Location) *EditView {
	if loc == nil {
		loc = time.Local
	}
	return &EditView{
		base:     newBase(s, nav),
		usersAPI: usersAPI,
		location: loc,
		now:      time.Now,
		isNew:    true,
	}
}

// Mount открывает форму. Пустой id означает новую заметку: хранилище сбрасывается.
// Заметка и список пользователей загружаются параллельно.
func (v *EditView) Mount(ctx context.Context, id string) error {
	var noteID int64
	isNew := id == ""
	if !isNew {
		parsed, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
		noteID = parsed
	}

	v.mount(ctx)
	v.mu.Lock()
	v.isNew = isNew
	v.noteID = noteID
	v.users = nil
	v.mu.Unlock()

	if isNew {
		v.store.Reset()
	}

	v.tasks.spawn(ctx, func(ctx context.Context) {
		var g errgroup.Group
		if !isNew {
			g.Go(func() error {
				v.store.FetchOne(ctx, noteID)
				return nil
			})
		}
		if v.usersAPI != nil {
			g.Go(func() error {
				users, err := v.usersAPI.ListUsers(ctx)
				if err != nil {
					return err
				}
				v.mu.Lock()
				v.users = users
				v.mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			logger.Log(ctx).Warn(ctx, logUsersFailed, zap.Error(err))
		}
	})
	return nil
}

// IsNew сообщает, что форма создает новую заметку.
func (v *EditView) IsNew() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.isNew
}

// Defaults возвращает начальные значения формы: для новой заметки срок
// действия равен началу текущего дня, для существующей - значения заметки.
func (v *EditView) Defaults() entities.NoteForm {
	if v.IsNew() {
		return entities.NoteForm{ExpirationDate: entities.DefaultFormDateTime(v.now(), v.location)}
	}
	return entities.FormFromNote(v.store.Snapshot().Entity, v.location)
}

// Save проверяет форму и создает или обновляет заметку от имени owner.
// При ошибках валидации запрос не отправляется. Существующая заметка
// обновляется только по идентификатору, переданному в Mount.
func (v *EditView) Save(ctx context.Context, form entities.NoteForm, owner entities.Account) error {
	if err := form.Validate(); err != nil {
		return err
	}

	v.mu.Lock()
	isNew, noteID := v.isNew, v.noteID
	v.mu.Unlock()

	var entity entities.Note
	if !isNew {
		entity = v.store.Snapshot().Entity
		if entity.ID == nil || *entity.ID != noteID {
			return fmt.Errorf("%w: %d", ErrNoteNotLoaded, noteID)
		}
	}

	note, err := form.Apply(entity, v.location)
	if err != nil {
		return err
	}
	note.User = owner.Owner()

	v.tasks.spawn(ctx, func(ctx context.Context) {
		if isNew {
			v.store.Create(ctx, note)
			return
		}
		note.ID = entities.Int64(noteID)
		v.store.Update(ctx, note)
	})
	return nil
}

// Render строит данные для отображения.
func (v *EditView) Render() EditRender {
	st := v.store.Snapshot()

	v.mu.Lock()
	users := append([]entities.User(nil), v.users...)
	isNew := v.isNew
	v.mu.Unlock()

	return EditRender{
		IsNew:        isNew,
		Loading:      st.Loading,
		Updating:     st.Updating,
		Form:         v.Defaults(),
		Users:        users,
		ErrorMessage: st.ErrorMessage,
	}
}
