// Package api определяет порты удаленного REST API заметок.
package api

import (
	"context"

	"sharenotes/internal/client/domain/entities"
)

// ListParams - необязательные параметры постраничного списка.
type ListParams struct {
	Page *int
	Size *int
	Sort string
}

// NotesAPI определяет операции REST API над заметками.
type NotesAPI interface {
	// ListNotes получает заметки текущего пользователя.
	ListNotes(ctx context.Context, params ListParams) ([]entities.Note, error)

	// GetNote получает заметку по ID.
	GetNote(ctx context.Context, id int64) (entities.Note, error)

	// GetPublicNote получает заметку без аутентификации по паролю доступа.
	GetPublicNote(ctx context.Context, id int64, password string) (entities.PublicNote, error)

	// CreateNote создает заметку.
	CreateNote(ctx context.Context, note entities.Note) (entities.Note, error)

	// UpdateNote полностью заменяет заметку.
	UpdateNote(ctx context.Context, note entities.Note) (entities.Note, error)

	// PartialUpdateNote обновляет переданные поля заметки.
	PartialUpdateNote(ctx context.Context, note entities.Note) (entities.Note, error)

	// DeleteNote удаляет заметку.
	DeleteNote(ctx context.Context, id int64) error
}

// UsersAPI определяет получение списка пользователей для формы редактирования.
type UsersAPI interface {
	ListUsers(ctx context.Context) ([]entities.User, error)
}
