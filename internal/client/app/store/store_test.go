package store_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sharenotes/internal/client/adapters/rest"
	"sharenotes/internal/client/app/store"
	"sharenotes/internal/client/domain/entities"
	"sharenotes/internal/client/ports/api"
)

type mockNotesAPI struct {
	mock.Mock
}

func (m *mockNotesAPI) ListNotes(ctx context.Context, params api.ListParams) ([]entities.Note, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Note), args.Error(1)
}

func (m *mockNotesAPI) GetNote(ctx context.Context, id int64) (entities.Note, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(entities.Note), args.Error(1)
}

func (m *mockNotesAPI) GetPublicNote(ctx context.Context, id int64, password string) (entities.PublicNote, error) {
	args := m.Called(ctx, id, password)
	return args.Get(0).(entities.PublicNote), args.Error(1)
}

func (m *mockNotesAPI) CreateNote(ctx context.Context, note entities.Note) (entities.Note, error) {
	args := m.Called(ctx, note)
	return args.Get(0).(entities.Note), args.Error(1)
}

func (m *mockNotesAPI) UpdateNote(ctx context.Context, note entities.Note) (entities.Note, error) {
	args := m.Called(ctx, note)
	return args.Get(0).(entities.Note), args.Error(1)
}

func (m *mockNotesAPI) PartialUpdateNote(ctx context.Context, note entities.Note) (entities.Note, error) {
	args := m.Called(ctx, note)
	return args.Get(0).(entities.Note), args.Error(1)
}

func (m *mockNotesAPI) DeleteNote(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveOperation(operation, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, operation+":"+outcome)
}

func recordStates(s *store.Store) *[]store.State {
	var states []store.State
	s.Subscribe(func(st store.State) {
		states = append(states, st)
	})
	return &states
}

func calledMethods(m *mockNotesAPI) []string {
	methods := make([]string, 0, len(m.Calls))
	for _, call := range m.Calls {
		methods = append(methods, call.Method)
	}
	return methods
}

func TestNew_InitialState(t *testing.T) {
	s := store.New(new(mockNotesAPI))

	state := s.Snapshot()
	assert.False(t, state.Loading)
	assert.False(t, state.Updating)
	assert.False(t, state.UpdateSuccess)
	assert.Empty(t, state.ErrorMessage)
	assert.NotNil(t, state.Entities)
	assert.Empty(t, state.Entities)
	assert.True(t, state.Entity.IsEmpty())
}

func TestFetchList(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	notes := []entities.Note{
		{ID: entities.Int64(1), Content: "first note"},
		{ID: entities.Int64(2), Content: "second note"},
	}
	notesAPI.On("ListNotes", mock.Anything, api.ListParams{}).Return(notes, nil).Once()

	s := store.New(notesAPI)
	states := recordStates(s)

	s.FetchList(context.Background(), api.ListParams{})

	require.Len(t, *states, 2)
	assert.True(t, (*states)[0].Loading, "pending sets loading")
	assert.False(t, (*states)[1].Loading)
	assert.Equal(t, notes, s.Snapshot().Entities)
	notesAPI.AssertExpectations(t)
}

func TestFetchOne_DoesNotTouchEntities(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	notesAPI.On("ListNotes", mock.Anything, api.ListParams{}).
		Return([]entities.Note{{ID: entities.Int64(1), Content: "first note"}}, nil)
	notesAPI.On("GetNote", mock.Anything, int64(5)).
		Return(entities.Note{ID: entities.Int64(5), Content: "fifth note"}, nil)

	s := store.New(notesAPI)
	ctx := context.Background()
	s.FetchList(ctx, api.ListParams{})
	s.FetchOne(ctx, 5)

	state := s.Snapshot()
	assert.Equal(t, "fifth note", state.Entity.Content)
	require.Len(t, state.Entities, 1)
	assert.Equal(t, "first note", state.Entities[0].Content)
}

func TestFetchOne_Rejected(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	apiErr := &rest.APIError{Method: http.MethodGet, Path: "api/notes/9", Status: http.StatusNotFound, Title: "Not Found"}
	notesAPI.On("GetNote", mock.Anything, int64(9)).Return(entities.Note{}, apiErr)

	observer := &recordingObserver{}
	s := store.New(notesAPI, store.WithObserver(observer))
	s.FetchOne(context.Background(), 9)

	state := s.Snapshot()
	assert.False(t, state.Loading)
	assert.False(t, state.UpdateSuccess)
	assert.Equal(t, apiErr.Error(), state.ErrorMessage)
	assert.Equal(t, http.StatusNotFound, state.ErrorStatus)
	assert.Equal(t, []string{"fetchOne:rejected"}, observer.outcomes)
}

func TestFetchPublicOne(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	notesAPI.On("GetPublicNote", mock.Anything, int64(42), "secret1").
		Return(entities.PublicNote{ID: entities.Int64(42), Content: "hello world", ExpirationDate: &exp}, nil)
	notesAPI.On("GetPublicNote", mock.Anything, int64(42), "wrong").
		Return(entities.PublicNote{}, &rest.APIError{Status: http.StatusUnauthorized})

	t.Run("correct password", func(t *testing.T) {
		s := store.New(notesAPI)
		note, err := s.FetchPublicOne(context.Background(), 42, "secret1")
		require.NoError(t, err)
		assert.Equal(t, "hello world", note.Content)

		entity := s.Snapshot().Entity
		assert.Equal(t, "hello world", entity.Content)
		assert.Equal(t, &exp, entity.ExpirationDate)
		assert.Empty(t, entity.Password)
		assert.Nil(t, entity.User)
		assert.Nil(t, entity.Link)
	})

	t.Run("wrong password", func(t *testing.T) {
		s := store.New(notesAPI)
		_, err := s.FetchPublicOne(context.Background(), 42, "wrong")
		require.Error(t, err)

		state := s.Snapshot()
		assert.Equal(t, err.Error(), state.ErrorMessage)
		assert.Empty(t, state.Entity.Content)
		assert.Equal(t, http.StatusUnauthorized, state.ErrorStatus)
		assert.NotEmpty(t, state.ErrorMessage)
	})
}

func TestCreate_RefreshesListOnce(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	exp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	input := entities.Note{Content: "hello world", Password: "secret1", ExpirationDate: &exp}
	created := entities.Note{ID: entities.Int64(10), Content: "hello world", Password: "secret1", ExpirationDate: &exp}

	notesAPI.On("CreateNote", mock.Anything, input).Return(created, nil).Once()
	notesAPI.On("ListNotes", mock.Anything, api.ListParams{}).Return([]entities.Note{created}, nil).Once()

	observer := &recordingObserver{}
	s := store.New(notesAPI, store.WithObserver(observer))
	states := recordStates(s)

	s.Create(context.Background(), input)

	assert.Equal(t, []string{"CreateNote", "ListNotes"}, calledMethods(notesAPI))

	state := s.Snapshot()
	assert.Equal(t, "hello world", state.Entity.Content)
	assert.True(t, state.UpdateSuccess)
	assert.False(t, state.Updating)
	assert.False(t, state.Loading)
	assert.Len(t, state.Entities, 1)

	require.Len(t, *states, 4)
	assert.True(t, (*states)[0].Updating, "mutation pending")
	assert.True(t, (*states)[1].Loading, "refresh pending before mutation fulfilled")
	assert.False(t, (*states)[1].UpdateSuccess)
	assert.True(t, (*states)[2].UpdateSuccess, "mutation fulfilled")
	assert.True(t, (*states)[3].UpdateSuccess, "list completion keeps success flag")

	assert.Equal(t, []string{"create:fulfilled", "fetchList:fulfilled"}, observer.outcomes)
	notesAPI.AssertExpectations(t)
}

func TestUpdateAndPartialUpdate(t *testing.T) {
	note := entities.Note{ID: entities.Int64(3), Content: "updated note"}

	tests := []struct {
		name   string
		method string
		run    func(s *store.Store)
	}{
		{name: "update", method: "UpdateNote", run: func(s *store.Store) { s.Update(context.Background(), note) }},
		{name: "partial update", method: "PartialUpdateNote", run: func(s *store.Store) { s.PartialUpdate(context.Background(), note) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notesAPI := new(mockNotesAPI)
			notesAPI.On(tt.method, mock.Anything, note).Return(note, nil).Once()
			notesAPI.On("ListNotes", mock.Anything, api.ListParams{}).Return([]entities.Note{note}, nil).Once()

			s := store.New(notesAPI)
			tt.run(s)

			assert.Equal(t, []string{tt.method, "ListNotes"}, calledMethods(notesAPI))
			assert.True(t, s.Snapshot().UpdateSuccess)
			assert.Equal(t, "updated note", s.Snapshot().Entity.Content)
		})
	}
}

func TestDelete(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	notesAPI.On("GetNote", mock.Anything, int64(7)).Return(entities.Note{ID: entities.Int64(7), Content: "doomed note"}, nil)
	notesAPI.On("DeleteNote", mock.Anything, int64(7)).Return(nil).Once()
	notesAPI.On("ListNotes", mock.Anything, api.ListParams{}).Return([]entities.Note{}, nil).Once()

	s := store.New(notesAPI)
	ctx := context.Background()
	s.FetchOne(ctx, 7)
	s.Delete(ctx, 7)

	assert.Equal(t, []string{"GetNote", "DeleteNote", "ListNotes"}, calledMethods(notesAPI))
	state := s.Snapshot()
	assert.True(t, state.Entity.IsEmpty())
	assert.True(t, state.UpdateSuccess)
	assert.False(t, state.Updating)
}

func TestMutation_RejectedSkipsRefresh(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	notesAPI.On("CreateNote", mock.Anything, mock.Anything).
		Return(entities.Note{}, &rest.APIError{Status: http.StatusBadRequest, Title: "Bad Request"})

	s := store.New(notesAPI)
	s.Create(context.Background(), entities.Note{Content: "hello world"})

	notesAPI.AssertNotCalled(t, "ListNotes", mock.Anything, mock.Anything)
	state := s.Snapshot()
	assert.False(t, state.Updating)
	assert.False(t, state.UpdateSuccess)
	assert.Equal(t, http.StatusBadRequest, state.ErrorStatus)
	assert.Contains(t, state.ErrorMessage, "Bad Request")
}

func TestTransportError_StatusZero(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	notesAPI.On("ListNotes", mock.Anything, mock.Anything).Return(nil, rest.ErrTransport)

	s := store.New(notesAPI)
	s.FetchList(context.Background(), api.ListParams{})

	state := s.Snapshot()
	assert.Equal(t, 0, state.ErrorStatus)
	assert.Equal(t, rest.ErrTransport.Error(), state.ErrorMessage)
}

func TestCancelledCompletionDropped(t *testing.T) {
	t.Run("read", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		notesAPI := new(mockNotesAPI)
		notesAPI.On("GetNote", mock.Anything, int64(5)).
			Run(func(mock.Arguments) { cancel() }).
			Return(entities.Note{ID: entities.Int64(5), Content: "late note"}, nil)

		observer := &recordingObserver{}
		s := store.New(notesAPI, store.WithObserver(observer))
		s.FetchOne(ctx, 5)

		state := s.Snapshot()
		assert.False(t, state.Loading)
		assert.True(t, state.Entity.IsEmpty(), "late completion must not overwrite entity")
		assert.Empty(t, state.ErrorMessage)
		assert.Equal(t, []string{"fetchOne:dropped"}, observer.outcomes)
	})

	t.Run("mutation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		notesAPI := new(mockNotesAPI)
		notesAPI.On("DeleteNote", mock.Anything, int64(7)).Return(context.Canceled)

		s := store.New(notesAPI)
		s.Delete(ctx, 7)

		notesAPI.AssertNotCalled(t, "ListNotes", mock.Anything, mock.Anything)
		state := s.Snapshot()
		assert.False(t, state.Updating)
		assert.False(t, state.UpdateSuccess)
		assert.Empty(t, state.ErrorMessage)
	})

	t.Run("deadline is a rejection", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		<-ctx.Done()

		notesAPI := new(mockNotesAPI)
		notesAPI.On("ListNotes", mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded)

		s := store.New(notesAPI)
		s.FetchList(ctx, api.ListParams{})

		assert.Equal(t, context.DeadlineExceeded.Error(), s.Snapshot().ErrorMessage)
	})
}

func TestRefreshSurvivesCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notesAPI := new(mockNotesAPI)
	note := entities.Note{ID: entities.Int64(1), Content: "hello world"}
	notesAPI.On("CreateNote", mock.Anything, mock.Anything).Return(note, nil)
	notesAPI.On("ListNotes", mock.MatchedBy(func(c context.Context) bool {
		_, hasDeadline := c.Deadline()
		return c.Err() == nil && hasDeadline
	}), api.ListParams{}).Return([]entities.Note{note}, nil).Once()

	s := store.New(notesAPI, store.WithRefreshTimeout(time.Second))
	s.Subscribe(func(st store.State) {
		if st.UpdateSuccess {
			cancel()
		}
	})

	s.Create(ctx, entities.Note{Content: "hello world"})

	require.Error(t, ctx.Err())
	assert.Len(t, s.Snapshot().Entities, 1)
	notesAPI.AssertExpectations(t)
}

func TestSubscribeAndReset(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	notesAPI.On("GetNote", mock.Anything, int64(1)).Return(entities.Note{ID: entities.Int64(1), Content: "first note"}, nil)

	s := store.New(notesAPI)
	calls := 0
	unsubscribe := s.Subscribe(func(store.State) { calls++ })

	s.FetchOne(context.Background(), 1)
	assert.Equal(t, 2, calls)

	unsubscribe()
	unsubscribe()
	s.Reset()
	assert.Equal(t, 2, calls)

	state := s.Snapshot()
	assert.True(t, state.Entity.IsEmpty())
	assert.Empty(t, state.Entities)
}

func TestSnapshotIsCopy(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	notesAPI.On("ListNotes", mock.Anything, mock.Anything).
		Return([]entities.Note{{ID: entities.Int64(1), Content: "first note"}}, nil)

	s := store.New(notesAPI)
	s.FetchList(context.Background(), api.ListParams{})

	snapshot := s.Snapshot()
	snapshot.Entities[0].Content = "changed"
	*snapshot.Entities[0].ID = 99

	fresh := s.Snapshot()
	assert.Equal(t, "first note", fresh.Entities[0].Content)
	assert.Equal(t, int64(1), *fresh.Entities[0].ID)
}

func TestConcurrentOperations(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	notesAPI.On("GetNote", mock.Anything, mock.Anything).Return(entities.Note{Content: "some note"}, nil)
	notesAPI.On("ListNotes", mock.Anything, mock.Anything).Return([]entities.Note{}, nil)

	s := store.New(notesAPI)
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				s.FetchOne(context.Background(), int64(i))
				return
			}
			s.FetchList(context.Background(), api.ListParams{})
		}()
	}
	wg.Wait()

	assert.False(t, s.Snapshot().Loading)
}
