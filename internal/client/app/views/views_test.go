package views

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cacheAdapter "sharenotes/internal/client/adapters/cache"
	"sharenotes/internal/client/adapters/rest"
	"sharenotes/internal/client/app/access"
	"sharenotes/internal/client/app/store"
	"sharenotes/internal/client/config"
	"sharenotes/internal/client/domain/entities"
	"sharenotes/internal/client/ports/api"
	"sharenotes/internal/client/ports/ui"
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

type mockUsersAPI struct {
	mock.Mock
}

func (m *mockUsersAPI) ListUsers(ctx context.Context) ([]entities.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.User), args.Error(1)
}

type routes struct {
	mu   sync.Mutex
	list []string
}

func (r *routes) navigator() ui.Navigator {
	return ui.NavigatorFunc(func(route string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.list = append(r.list, route)
	})
}

func (r *routes) visited() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.list...)
}

func calledMethods(m *mockNotesAPI) []string {
	methods := make([]string, 0, len(m.Calls))
	for _, call := range m.Calls {
		methods = append(methods, call.Method)
	}
	return methods
}

func TestListView(t *testing.T) {
	t.Run("renders notes", func(t *testing.T) {
		notesAPI := new(mockNotesAPI)
		notes := []entities.Note{{ID: entities.Int64(1), Content: "first note"}}
		notesAPI.On("ListNotes", mock.Anything, api.ListParams{Sort: "id,asc"}).Return(notes, nil).Twice()

		v := NewListView(store.New(notesAPI), nil)
		v.Mount(context.Background(), api.ListParams{Sort: "id,asc"})
		v.Wait()

		r := v.Render()
		assert.False(t, r.Loading)
		assert.False(t, r.Empty)
		assert.Equal(t, notes, r.Notes)

		v.Refresh(context.Background())
		v.Wait()
		notesAPI.AssertExpectations(t)
	})

	t.Run("empty", func(t *testing.T) {
		notesAPI := new(mockNotesAPI)
		notesAPI.On("ListNotes", mock.Anything, mock.Anything).Return([]entities.Note{}, nil)

		v := NewListView(store.New(notesAPI), nil)
		v.Mount(context.Background(), api.ListParams{})
		v.Wait()

		assert.True(t, v.Render().Empty)
	})
}

func TestDetailView(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	notesAPI.On("GetNote", mock.Anything, int64(5)).Return(entities.Note{ID: entities.Int64(5), Content: "fifth note"}, nil)

	v := NewDetailView(store.New(notesAPI), nil)
	v.Mount(context.Background(), 5)
	v.Wait()

	r := v.Render()
	assert.Equal(t, "fifth note", r.Note.Content)
	assert.Empty(t, r.ErrorMessage)
}

func TestEditView_CreateNew(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	usersAPI := new(mockUsersAPI)
	nav := &routes{}

	exp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	expected := entities.Note{
		Content:        "hello world",
		Password:       "secret1",
		ExpirationDate: &exp,
		User:           &entities.User{ID: 1, Login: "admin"},
	}
	created := expected
	created.ID = entities.Int64(10)

	usersAPI.On("ListUsers", mock.Anything).Return([]entities.User{{ID: 1, Login: "admin"}}, nil)
	notesAPI.On("CreateNote", mock.Anything, expected).Return(created, nil).Once()
	notesAPI.On("ListNotes", mock.Anything, api.ListParams{}).Return([]entities.Note{created}, nil).Once()

	s := store.New(notesAPI)
	v := NewEditView(s, usersAPI, nav.navigator(), time.UTC)
	v.now = func() time.Time { return time.Date(2024, 6, 15, 13, 45, 0, 0, time.UTC) }

	require.NoError(t, v.Mount(context.Background(), ""))
	v.Wait()

	assert.True(t, v.IsNew())
	assert.Equal(t, "2024-06-15T00:00", v.Defaults().ExpirationDate)
	assert.Equal(t, []entities.User{{ID: 1, Login: "admin"}}, v.Render().Users)

	form := entities.NoteForm{Content: "hello world", Password: "secret1", ExpirationDate: "2025-01-01T00:00"}
	require.NoError(t, v.Save(context.Background(), form, entities.Account{ID: 1, Login: "admin"}))
	v.Wait()

	assert.Equal(t, []string{"CreateNote", "ListNotes"}, calledMethods(notesAPI))
	state := s.Snapshot()
	assert.Equal(t, "hello world", state.Entity.Content)
	assert.True(t, state.UpdateSuccess)
	assert.Equal(t, []string{ui.RouteNoteList}, nav.visited())
}

func TestEditView_UpdateExisting(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	usersAPI := new(mockUsersAPI)

	exp := time.Date(2030, 3, 4, 10, 30, 0, 0, time.UTC)
	link := "http://localhost/public/3"
	existing := entities.Note{
		ID: entities.Int64(3), Content: "old content", Password: "secret1",
		Link: &link, ExpirationDate: &exp, User: &entities.User{ID: 2, Login: "user"},
	}

	notesAPI.On("GetNote", mock.Anything, int64(3)).Return(existing, nil)
	usersAPI.On("ListUsers", mock.Anything).Return(nil, &rest.APIError{Status: http.StatusForbidden})
	notesAPI.On("UpdateNote", mock.Anything, mock.MatchedBy(func(n entities.Note) bool {
		return n.ID != nil && *n.ID == 3 && n.Content == "new content" &&
			n.Link != nil && *n.Link == link && n.User.Login == "admin"
	})).Return(existing, nil).Once()
	notesAPI.On("ListNotes", mock.Anything, api.ListParams{}).Return([]entities.Note{existing}, nil).Once()

	v := NewEditView(store.New(notesAPI), usersAPI, nil, time.UTC)
	require.NoError(t, v.Mount(context.Background(), "3"))
	v.Wait()

	assert.False(t, v.IsNew())
	defaults := v.Defaults()
	assert.Equal(t, "old content", defaults.Content)
	assert.Equal(t, "2030-03-04T10:30", defaults.ExpirationDate)
	assert.Empty(t, v.Render().Users, "users failure does not block the form")

	defaults.Content = "new content"
	require.NoError(t, v.Save(context.Background(), defaults, entities.Account{ID: 1, Login: "admin"}))
	v.Wait()

	notesAPI.AssertNotCalled(t, "CreateNote", mock.Anything, mock.Anything)
	notesAPI.AssertExpectations(t)
}

func TestEditView_ValidationBlocksRequest(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	v := NewEditView(store.New(notesAPI), nil, nil, time.UTC)
	require.NoError(t, v.Mount(context.Background(), ""))

	err := v.Save(context.Background(), entities.NoteForm{Content: "abc", Password: "", ExpirationDate: "tomorrow"}, entities.Account{ID: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrValidation)

	var fields entities.ValidationErrors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, "This field is required to be at least 5 characters.", fields["content"])
	assert.Equal(t, entities.MsgRequired, fields["password"])
	assert.Equal(t, entities.MsgInvalidDate, fields["expirationDate"])

	v.Wait()
	assert.Empty(t, notesAPI.Calls)
}

func TestEditView_InvalidID(t *testing.T) {
	v := NewEditView(store.New(new(mockNotesAPI)), nil, nil, nil)
	assert.ErrorIs(t, v.Mount(context.Background(), "abc"), ErrInvalidID)
}

func TestEditView_SaveRequiresMountedNote(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	notesAPI.On("GetNote", mock.Anything, int64(3)).Return(entities.Note{}, &rest.APIError{Status: http.StatusNotFound})
	notesAPI.On("GetNote", mock.Anything, int64(5)).Return(entities.Note{ID: entities.Int64(5), Content: "other note"}, nil)

	s := store.New(notesAPI)
	v := NewEditView(s, nil, nil, time.UTC)
	require.NoError(t, v.Mount(context.Background(), "3"))
	v.Wait()

	form := entities.NoteForm{Content: "new content", Password: "secret1", ExpirationDate: "2030-01-01T00:00"}
	assert.ErrorIs(t, v.Save(context.Background(), form, entities.Account{ID: 1}), ErrNoteNotLoaded)

	s.FetchOne(context.Background(), 5)
	assert.ErrorIs(t, v.Save(context.Background(), form, entities.Account{ID: 1}), ErrNoteNotLoaded)

	v.Wait()
	notesAPI.AssertNotCalled(t, "UpdateNote", mock.Anything, mock.Anything)
	notesAPI.AssertNotCalled(t, "CreateNote", mock.Anything, mock.Anything)
}

func TestDeleteView(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	nav := &routes{}
	notesAPI.On("GetNote", mock.Anything, int64(7)).Return(entities.Note{ID: entities.Int64(7), Content: "doomed note"}, nil)
	notesAPI.On("DeleteNote", mock.Anything, int64(7)).Return(nil).Once()
	notesAPI.On("ListNotes", mock.Anything, api.ListParams{}).Return([]entities.Note{}, nil).Once()

	s := store.New(notesAPI)
	v := NewDeleteView(s, nav.navigator())
	v.Mount(context.Background(), 7)
	v.Wait()
	assert.Equal(t, "doomed note", v.Render().Note.Content)

	require.NoError(t, v.Confirm(context.Background()))
	v.Wait()

	assert.Equal(t, []string{"GetNote", "DeleteNote", "ListNotes"}, calledMethods(notesAPI))
	state := s.Snapshot()
	assert.True(t, state.Entity.IsEmpty())
	assert.True(t, state.UpdateSuccess)
	assert.Equal(t, []string{ui.RouteNoteList}, nav.visited())

	v.Cancel()
	assert.Equal(t, []string{ui.RouteNoteList, ui.RouteNoteList}, nav.visited())

	assert.ErrorIs(t, v.Confirm(context.Background()), ErrNothingToDelete)
}

func TestUnmount_StopsNavigation(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	nav := &routes{}
	notesAPI.On("GetNote", mock.Anything, int64(0)).Return(entities.Note{}, nil)
	notesAPI.On("DeleteNote", mock.Anything, int64(7)).Return(nil)
	notesAPI.On("ListNotes", mock.Anything, mock.Anything).Return([]entities.Note{}, nil)

	s := store.New(notesAPI)
	v := NewDeleteView(s, nav.navigator())
	v.Mount(context.Background(), 0)
	v.Unmount()
	v.Wait()

	s.Delete(context.Background(), 7)
	assert.Empty(t, nav.visited())
}

func newPublicView(t *testing.T, notesAPI *mockNotesAPI, dismiss string, maxAttempts int) *PublicView {
	t.Helper()

	limiter := access.NewLimiter(
		cacheAdapter.NewMemoryCache(time.Minute),
		&config.AccessConfig{MaxAttempts: maxAttempts, Window: time.Minute},
	)
	return NewPublicView(store.New(notesAPI), nil, limiter, dismiss)
}

func publicNotesAPI() *mockNotesAPI {
	notesAPI := new(mockNotesAPI)
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	notesAPI.On("GetPublicNote", mock.Anything, int64(42), "secret1").
		Return(entities.PublicNote{ID: entities.Int64(42), Content: "hello world", ExpirationDate: &exp}, nil)
	notesAPI.On("GetPublicNote", mock.Anything, int64(42), "wrong").
		Return(entities.PublicNote{}, &rest.APIError{Status: http.StatusUnauthorized, Title: "Incorrect password"})
	return notesAPI
}

func TestPublicView_CorrectPassword(t *testing.T) {
	v := newPublicView(t, publicNotesAPI(), config.DismissOnSuccess, 5)
	v.Mount(context.Background(), 42)

	r := v.Render()
	assert.Equal(t, PasswordPrompt, r.State)
	assert.True(t, r.PromptVisible)
	assert.Nil(t, r.Note)

	require.NoError(t, v.Submit(context.Background(), "secret1"))
	v.Wait()

	r = v.Render()
	assert.Equal(t, Unlocked, r.State)
	assert.False(t, r.PromptVisible)
	require.NotNil(t, r.Note)
	assert.Equal(t, "hello world", r.Note.Content)
	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), *r.Note.ExpirationDate)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret1")
	assert.Contains(t, string(data), `"state":"unlocked"`)
}

func TestPublicView_OutcomeFromOwnRequest(t *testing.T) {
	s := store.New(publicNotesAPI())
	unsubscribe := s.Subscribe(func(st store.State) {
		if st.Entity.Content != "" {
			s.Reset()
		}
	})
	defer unsubscribe()

	v := NewPublicView(s, nil, nil, config.DismissOnSuccess)
	v.Mount(context.Background(), 42)
	require.NoError(t, v.Submit(context.Background(), "secret1"))
	v.Wait()

	assert.Empty(t, s.Snapshot().Entity.Content)
	r := v.Render()
	assert.Equal(t, Unlocked, r.State)
	require.NotNil(t, r.Note)
	assert.Equal(t, "hello world", r.Note.Content)
}

func TestPublicView_WrongPassword(t *testing.T) {
	t.Run("on success keeps prompt", func(t *testing.T) {
		v := newPublicView(t, publicNotesAPI(), config.DismissOnSuccess, 5)
		v.Mount(context.Background(), 42)

		require.NoError(t, v.Submit(context.Background(), "wrong"))
		v.Wait()

		r := v.Render()
		assert.Equal(t, PasswordPrompt, r.State)
		assert.True(t, r.PromptVisible)
		assert.Nil(t, r.Note)
		assert.Equal(t, 1, r.Attempts)
		assert.Equal(t, 4, r.Remaining)
		assert.Contains(t, r.ErrorMessage, "Incorrect password")
	})

	t.Run("optimistic falls back to enter password", func(t *testing.T) {
		v := newPublicView(t, publicNotesAPI(), config.DismissOptimistic, 5)
		v.Mount(context.Background(), 42)

		require.NoError(t, v.Submit(context.Background(), "wrong"))
		v.Wait()

		r := v.Render()
		assert.False(t, r.PromptVisible)
		assert.Equal(t, ActionEnterPassword, r.Action)
		assert.Nil(t, r.Note)

		v.OpenPrompt()
		r = v.Render()
		assert.True(t, r.PromptVisible)
		assert.Empty(t, r.Action)

		require.NoError(t, v.Submit(context.Background(), "secret1"))
		v.Wait()
		assert.Equal(t, Unlocked, v.State())
	})
}

func TestPublicView_EmptyPassword(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	v := newPublicView(t, notesAPI, config.DismissOptimistic, 5)
	v.Mount(context.Background(), 42)

	err := v.Submit(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrValidation)

	r := v.Render()
	assert.Equal(t, entities.MsgPasswordNeeded, r.FieldError)
	assert.True(t, r.PromptVisible)
	assert.Empty(t, notesAPI.Calls)
}

func TestPublicView_Lockout(t *testing.T) {
	notesAPI := publicNotesAPI()
	v := newPublicView(t, notesAPI, config.DismissOnSuccess, 2)
	v.Mount(context.Background(), 42)

	for range 2 {
		require.NoError(t, v.Submit(context.Background(), "wrong"))
		v.Wait()
	}

	err := v.Submit(context.Background(), "secret1")
	assert.ErrorIs(t, err, access.ErrTooManyAttempts)
	v.Wait()
	assert.Len(t, notesAPI.Calls, 2)
	assert.Equal(t, PasswordPrompt, v.State())
}

func TestPublicView_UnmountDropsResult(t *testing.T) {
	notesAPI := new(mockNotesAPI)
	release := make(chan struct{})
	notesAPI.On("GetPublicNote", mock.Anything, int64(42), "secret1").
		Run(func(mock.Arguments) { <-release }).
		Return(entities.PublicNote{ID: entities.Int64(42), Content: "hello world"}, nil)

	v := newPublicView(t, notesAPI, config.DismissOnSuccess, 5)
	v.Mount(context.Background(), 42)
	require.NoError(t, v.Submit(context.Background(), "secret1"))

	v.Unmount()
	close(release)
	v.Wait()

	r := v.Render()
	assert.Equal(t, PasswordPrompt, r.State)
	assert.Nil(t, r.Note)
	assert.Equal(t, 0, r.Attempts)
}
