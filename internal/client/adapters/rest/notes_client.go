package rest

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"sharenotes/internal/client/domain/entities"
	"sharenotes/internal/client/ports/api"
)

// Имена операций для логирования и отказоустойчивости.
const (
	OpListNotes         = "ListNotes"
	OpGetNote           = "GetNote"
	OpGetPublicNote     = "GetPublicNote"
	OpCreateNote        = "CreateNote"
	OpUpdateNote        = "UpdateNote"
	OpPartialUpdateNote = "PartialUpdateNote"
	OpDeleteNote        = "DeleteNote"
	OpListUsers         = "ListUsers"
)

// ErrMissingID возвращается при обновлении заметки без идентификатора.
var ErrMissingID = errors.New("note id is required")

var (
	_ api.NotesAPI = (*Client)(nil)
	_ api.UsersAPI = (*Client)(nil)
)

// ListNotes получает заметки текущего пользователя.
func (c *Client) ListNotes(ctx context.Context, params api.ListParams) ([]entities.Note, error) {
	query := map[string]string{
		"cacheBuster": strconv.FormatInt(c.now().UnixMilli(), 10),
	}
	if params.Page != nil {
		query["page"] = strconv.Itoa(*params.Page)
	}
	if params.Size != nil {
		query["size"] = strconv.Itoa(*params.Size)
	}
	if params.Sort != "" {
		query["sort"] = params.Sort
	}

	notes := make([]entities.Note, 0)
	err := c.call(ctx, OpListNotes, request{
		method: fiber.MethodGet,
		path:   PathNotes,
		auth:   true,
		params: query,
	}, &notes)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// GetNote получает заметку по ID.
func (c *Client) GetNote(ctx context.Context, id int64) (entities.Note, error) {
	var note entities.Note
	err := c.call(ctx, OpGetNote, request{
		method: fiber.MethodGet,
		path:   idPath(PathNotes, id),
		auth:   true,
	}, &note)
	if err != nil {
		return entities.Note{}, fmt.Errorf("get note %d: %w", id, err)
	}
	return note, nil
}

// GetPublicNote получает заметку по паролю доступа, переданному в заголовке.
func (c *Client) GetPublicNote(ctx context.Context, id int64, password string) (entities.PublicNote, error) {
	var note entities.Note
	err := c.call(ctx, OpGetPublicNote, request{
		method:  fiber.MethodGet,
		path:    idPath(PathPublicNote, id),
		headers: map[string]string{HeaderPublicPassword: password},
	}, &note)
	if err != nil {
		return entities.PublicNote{}, fmt.Errorf("get public note %d: %w", id, err)
	}
	return note.Public(), nil
}

// CreateNote создает заметку.
func (c *Client) CreateNote(ctx context.Context, note entities.Note) (entities.Note, error) {
	var created entities.Note
	err := c.call(ctx, OpCreateNote, request{
		method: fiber.MethodPost,
		path:   PathNotes,
		auth:   true,
		body:   note.Clean(),
	}, &created)
	if err != nil {
		return entities.Note{}, fmt.Errorf("create note: %w", err)
	}
	return created, nil
}

// UpdateNote полностью заменяет заметку.
func (c *Client) UpdateNote(ctx context.Context, note entities.Note) (entities.Note, error) {
	if note.ID == nil {
		return entities.Note{}, fmt.Errorf("update note: %w", ErrMissingID)
	}
	var updated entities.Note
	err := c.call(ctx, OpUpdateNote, request{
		method: fiber.MethodPut,
		path:   idPath(PathNotes, *note.ID),
		auth:   true,
		body:   note.Clean(),
	}, &updated)
	if err != nil {
		return entities.Note{}, fmt.Errorf("update note %d: %w", *note.ID, err)
	}
	return updated, nil
}

// PartialUpdateNote обновляет непустые поля заметки (merge patch).
func (c *Client) PartialUpdateNote(ctx context.Context, note entities.Note) (entities.Note, error) {
	if note.ID == nil {
		return entities.Note{}, fmt.Errorf("partial update note: %w", ErrMissingID)
	}
	var updated entities.Note
	err := c.call(ctx, OpPartialUpdateNote, request{
		method:      fiber.MethodPatch,
		path:        idPath(PathNotes, *note.ID),
		auth:        true,
		body:        note.Clean(),
		contentType: MIMEMergePatchJSON,
	}, &updated)
	if err != nil {
		return entities.Note{}, fmt.Errorf("partial update note %d: %w", *note.ID, err)
	}
	return updated, nil
}

// DeleteNote удаляет заметку.
func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	err := c.call(ctx, OpDeleteNote, request{
		method: fiber.MethodDelete,
		path:   idPath(PathNotes, id),
		auth:   true,
	}, nil)
	if err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	return nil
}

// ListUsers получает пользователей для выбора владельца в форме.
func (c *Client) ListUsers(ctx context.Context) ([]entities.User, error) {
	users := make([]entities.User, 0)
	err := c.call(ctx, OpListUsers, request{
		method: fiber.MethodGet,
		path:   PathUsers,
		auth:   true,
	}, &users)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
