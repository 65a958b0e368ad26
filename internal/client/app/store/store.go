// Package store содержит хранилище состояния заметок: кэш сущностей,
// флаги жизненного цикла запросов и подписчиков на изменения.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"sharenotes/internal/client/domain/entities"
	"sharenotes/internal/client/ports/api"
	"sharenotes/pkg/logger"
)

// Имена операций хранилища.
const (
	OpFetchList      = "fetchList"
	OpFetchOne       = "fetchOne"
	OpFetchPublicOne = "fetchPublicOne"
	OpCreate         = "create"
	OpUpdate         = "update"
	OpPartialUpdate  = "partialUpdate"
	OpDelete         = "delete"
)

// Исходы операций для наблюдателя.
const (
	OutcomeFulfilled = "fulfilled"
	OutcomeRejected  = "rejected"
	OutcomeDropped   = "dropped"
)

// Константы для логирования.
const (
	LogOperationStarted   = "store operation started"
	LogOperationFulfilled = "store operation fulfilled"
	LogOperationRejected  = "store operation rejected"
	LogOperationDropped   = "store operation completion dropped"
)

// DefaultRefreshTimeout ограничивает обновление списка после изменения.
const DefaultRefreshTimeout = 10 * time.Second

// Observer получает сведения о завершенных операциях.
type Observer interface {
	ObserveOperation(operation, outcome string, duration time.Duration)
}

// Listener вызывается с копией состояния после каждого перехода.
type Listener func(State)

// Store хранит состояние заметок и выполняет запросы через NotesAPI.
type Store struct {
	api            api.NotesAPI
	observer       Observer
	refreshTimeout time.Duration

	mu        sync.Mutex
	state     State
	listeners map[uint64]Listener
	nextID    uint64
}

// Option настраивает Store.
type Option func(*Store)

// WithObserver подключает наблюдателя операций.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observer = o
	}
}

// WithRefreshTimeout задает таймаут обновления списка после изменения.
func WithRefreshTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.refreshTimeout = d
		}
	}
}

// New создает хранилище в начальном состоянии.
func New(notesAPI api.NotesAPI, opts ...Option) *Store {
	s := &Store{
		api:            notesAPI,
		refreshTimeout: DefaultRefreshTimeout,
		state:          initialState(),
		listeners:      make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot возвращает копию текущего состояния.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe регистрирует слушателя и возвращает функцию отписки.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Reset возвращает хранилище в начальное состояние.
func (s *Store) Reset() {
	s.update(func(st *State) {
		*st = initialState()
	})
}

// update применяет переход под блокировкой и уведомляет слушателей вне ее.
func (s *Store) update(transition func(*State)) {
	s.mu.Lock()
	transition(&s.state)
	snapshot := s.state.clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

// FetchList загружает список заметок.
func (s *Store) FetchList(ctx context.Context, params api.ListParams) {
	start := s.begin(ctx, OpFetchList, (*State).readPending)
	notes, err := s.api.ListNotes(ctx, params)
	s.finish(ctx, OpFetchList, start, err, func(st *State) {
		st.listFulfilled(notes)
	})
}

// FetchOne загружает заметку по ID.
func (s *Store) FetchOne(ctx context.Context, id int64) {
	ctx = logger.WithLogger(ctx, logger.Log(ctx).With(zap.Int64("note_id", id)))
	start := s.begin(ctx, OpFetchOne, (*State).readPending)
	note, err := s.api.GetNote(ctx, id)
	s.finish(ctx, OpFetchOne, start, err, func(st *State) {
		st.entityFulfilled(note)
	})
}

// FetchPublicOne загружает публичную проекцию заметки по паролю доступа и
// возвращает тот же результат, который применен к состоянию.
func (s *Store) FetchPublicOne(ctx context.Context, id int64, password string) (entities.PublicNote, error) {
	ctx = logger.WithLogger(ctx, logger.Log(ctx).With(zap.Int64("note_id", id)))
	start := s.begin(ctx, OpFetchPublicOne, (*State).readPending)
	note, err := s.api.GetPublicNote(ctx, id, password)
	s.finish(ctx, OpFetchPublicOne, start, err, func(st *State) {
		st.entityFulfilled(note.AsNote())
	})
	if cancelled(ctx) {
		return entities.PublicNote{}, ctx.Err()
	}
	return note, err
}

// Create создает заметку и обновляет список.
func (s *Store) Create(ctx context.Context, note entities.Note) {
	s.save(ctx, OpCreate, s.api.CreateNote, note)
}

// Update полностью заменяет заметку и обновляет список.
func (s *Store) Update(ctx context.Context, note entities.Note) {
	s.save(ctx, OpUpdate, s.api.UpdateNote, note)
}

// PartialUpdate частично обновляет заметку и обновляет список.
func (s *Store) PartialUpdate(ctx context.Context, note entities.Note) {
	s.save(ctx, OpPartialUpdate, s.api.PartialUpdateNote, note)
}

func (s *Store) save(
	ctx context.Context,
	operation string,
	call func(context.Context, entities.Note) (entities.Note, error),
	note entities.Note,
) {
	start := s.begin(ctx, operation, (*State).mutationPending)
	saved, err := call(ctx, note)
	s.finishMutation(ctx, operation, start, err, func(st *State) {
		st.saveFulfilled(saved)
	})
}

// Delete удаляет заметку и обновляет список.
func (s *Store) Delete(ctx context.Context, id int64) {
	ctx = logger.WithLogger(ctx, logger.Log(ctx).With(zap.Int64("note_id", id)))
	start := s.begin(ctx, OpDelete, (*State).mutationPending)
	err := s.api.DeleteNote(ctx, id)
	s.finishMutation(ctx, OpDelete, start, err, (*State).deleteFulfilled)
}

func clearLoading(st *State) {
	st.Loading = false
}

func clearUpdating(st *State) {
	st.Updating = false
}

func (s *Store) begin(ctx context.Context, operation string, pending func(*State)) time.Time {
	logger.Log(ctx).Debug(ctx, LogOperationStarted, zap.String("operation", operation))
	s.update(pending)
	return time.Now()
}

// cancelled сообщает, что вызывающая сторона отменила операцию.
// Истечение дедлайна отменой не считается и дает rejected.
func cancelled(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}

// finish применяет завершение операции чтения. Завершение после отмены
// контекста сбрасывает только флаг выполнения.
func (s *Store) finish(
	ctx context.Context,
	operation string,
	start time.Time,
	err error,
	fulfilled func(*State),
) {
	switch {
	case cancelled(ctx):
		s.drop(ctx, operation, start, clearLoading)
	case err != nil:
		s.reject(ctx, operation, start, err)
	default:
		s.update(fulfilled)
		s.observe(operation, OutcomeFulfilled, start)
		logger.Log(ctx).Debug(ctx, LogOperationFulfilled, zap.String("operation", operation))
	}
}

// finishMutation применяет завершение изменения. Успех порождает ровно одно
// обновление списка: pending списка, затем fulfilled изменения, затем
// завершение списка.
func (s *Store) finishMutation(ctx context.Context, operation string, start time.Time, err error, fulfilled func(*State)) {
	switch {
	case cancelled(ctx):
		s.drop(ctx, operation, start, clearUpdating)
		return
	case err != nil:
		s.reject(ctx, operation, start, err)
		return
	}

	refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refreshTimeout)
	defer cancel()

	refreshStart := s.begin(refreshCtx, OpFetchList, (*State).readPending)
	s.update(fulfilled)
	s.observe(operation, OutcomeFulfilled, start)
	logger.Log(ctx).Info(ctx, LogOperationFulfilled, zap.String("operation", operation))

	notes, listErr := s.api.ListNotes(refreshCtx, api.ListParams{})
	s.finish(refreshCtx, OpFetchList, refreshStart, listErr, func(st *State) {
		st.listFulfilled(notes)
	})
}

func (s *Store) reject(ctx context.Context, operation string, start time.Time, err error) {
	s.update(func(st *State) {
		st.rejected(err)
	})
	s.observe(operation, OutcomeRejected, start)
	logger.Log(ctx).Warn(ctx, LogOperationRejected, zap.String("operation", operation), zap.Error(err))
}

func (s *Store) drop(ctx context.Context, operation string, start time.Time, inFlight func(*State)) {
	s.update(inFlight)
	s.observe(operation, OutcomeDropped, start)
	logger.Log(ctx).Debug(ctx, LogOperationDropped, zap.String("operation", operation))
}

func (s *Store) observe(operation, outcome string, start time.Time) {
	if s.observer != nil {
		s.observer.ObserveOperation(operation, outcome, time.Since(start))
	}
}
