package views

import (
	"context"
	"sync"

	"sharenotes/internal/client/app/access"
	"sharenotes/internal/client/app/store"
	"sharenotes/internal/client/config"
	"sharenotes/internal/client/domain/entities"
	"sharenotes/internal/client/ports/ui"
)

// PublicState - состояние публичного представления.
type PublicState int

// Состояния публичного представления.
const (
	PasswordPrompt PublicState = iota
	Unlocked
)

func (s PublicState) String() string {
	if s == Unlocked {
		return "unlocked"
	}
	return "password_prompt"
}

// MarshalText позволяет выводить состояние строкой в JSON и YAML.
func (s PublicState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ActionEnterPassword - действие, повторно открывающее окно ввода пароля.
const ActionEnterPassword = "Enter Password"

// MsgNoteUnavailable - ошибка, когда сервер ответил без содержимого заметки.
const MsgNoteUnavailable = "note content is unavailable"

// PublicRender - данные для отображения публичной заметки.
type PublicRender struct {
	State         PublicState          `json:"state" yaml:"state"`
	PromptVisible bool                 `json:"promptVisible" yaml:"promptVisible"`
	Action        string               `json:"action,omitempty" yaml:"action,omitempty"`
	FieldError    string               `json:"fieldError,omitempty" yaml:"fieldError,omitempty"`
	Attempts      int                  `json:"attempts" yaml:"attempts"`
	Remaining     int                  `json:"remaining" yaml:"remaining"`
	Loading       bool                 `json:"loading" yaml:"loading"`
	Note          *entities.PublicNote `json:"note,omitempty" yaml:"note,omitempty"`
	ErrorMessage  string               `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
}

// PublicView открывает заметку по паролю доступа без аутентификации.
type PublicView struct {
	base
	limiter *access.Limiter
	dismiss string

	mu            sync.Mutex
	id            int64
	state         PublicState
	promptVisible bool
	fieldError    string
	attempts      int
	remaining     int
	note          *entities.PublicNote
	errorMessage  string
}

// NewPublicView создает публичное представление. limiter может быть nil.
func NewPublicView(s *store.Store, nav ui.Navigator, limiter *access.Limiter, dismiss string) *PublicView {
	if dismiss != config.DismissOptimistic {
		dismiss = config.DismissOnSuccess
	}
	return &PublicView{base: newBase(s, nav), limiter: limiter, dismiss: dismiss, remaining: -1}
}

// Mount открывает окно ввода пароля для заметки id.
func (v *PublicView) Mount(ctx context.Context, id int64) {
	v.mount(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.id = id
	v.state = PasswordPrompt
	v.promptVisible = true
	v.fieldError = ""
	v.attempts = 0
	v.remaining = -1
	v.note = nil
	v.errorMessage = ""
}

// OpenPrompt повторно показывает окно ввода пароля.
func (v *PublicView) OpenPrompt() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == PasswordPrompt {
		v.promptVisible = true
	}
}

// Submit отправляет пароль. Пустой пароль дает ошибку поля без запроса,
// исчерпанный лимит попыток - access.ErrTooManyAttempts.
func (v *PublicView) Submit(ctx context.Context, password string) error {
	v.mu.Lock()
	id := v.id
	if v.state == Unlocked {
		v.mu.Unlock()
		return nil
	}
	if password == "" {
		v.fieldError = entities.MsgPasswordNeeded
		v.mu.Unlock()
		return entities.ValidationErrors{"password": entities.MsgPasswordNeeded}
	}
	v.fieldError = ""
	v.mu.Unlock()

	if v.limiter != nil {
		if err := v.limiter.Allow(ctx, id); err != nil {
			v.mu.Lock()
			v.errorMessage = err.Error()
			v.mu.Unlock()
			return err
		}
	}

	v.mu.Lock()
	if v.dismiss == config.DismissOptimistic {
		v.promptVisible = false
	}
	v.mu.Unlock()

	v.tasks.spawn(ctx, func(ctx context.Context) {
		note, err := v.store.FetchPublicOne(ctx, id, password)
		if ctx.Err() != nil {
			return
		}
		v.complete(ctx, id, note, err)
	})
	return nil
}

// complete применяет результат запроса этого представления, а не снимок
// общего хранилища, который мог измениться другим запросом.
func (v *PublicView) complete(ctx context.Context, id int64, note entities.PublicNote, err error) {
	unlocked := err == nil && note.Content != "" && (note.ID == nil || *note.ID == id)

	if unlocked {
		if v.limiter != nil {
			v.limiter.Success(ctx, id)
		}
		v.mu.Lock()
		v.state = Unlocked
		v.promptVisible = false
		v.note = &note
		v.errorMessage = ""
		v.mu.Unlock()
		return
	}

	remaining := -1
	if v.limiter != nil {
		remaining = v.limiter.Failure(ctx, id)
	}
	message := MsgNoteUnavailable
	if err != nil {
		message = err.Error()
	}
	v.mu.Lock()
	v.attempts++
	v.remaining = remaining
	v.errorMessage = message
	v.mu.Unlock()
}

// State возвращает текущее состояние.
func (v *PublicView) State() PublicState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Render строит данные для отображения. Введенный пароль не попадает в вывод.
func (v *PublicView) Render() PublicRender {
	loading := v.store.Snapshot().Loading

	v.mu.Lock()
	defer v.mu.Unlock()

	r := PublicRender{
		State:         v.state,
		PromptVisible: v.promptVisible,
		FieldError:    v.fieldError,
		Attempts:      v.attempts,
		Remaining:     v.remaining,
		Loading:       loading,
		ErrorMessage:  v.errorMessage,
	}
	if v.state == Unlocked && v.note != nil {
		note := *v.note
		r.Note = &note
	}
	if v.state == PasswordPrompt && !v.promptVisible {
		r.Action = ActionEnterPassword
	}
	return r
}
