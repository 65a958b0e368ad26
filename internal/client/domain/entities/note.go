// Package entities определяет доменные сущности клиента заметок.
package entities

import "time"

// Note представляет заметку в том виде, в каком ее отдает REST API.
type Note struct {
	ID             *int64     `json:"id,omitempty" yaml:"id,omitempty"`
	Content        string     `json:"content,omitempty" yaml:"content,omitempty"`
	Password       string     `json:"password,omitempty" yaml:"password,omitempty"`
	Link           *string    `json:"link,omitempty" yaml:"link,omitempty"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty" yaml:"expirationDate,omitempty"`
	User           *User      `json:"user,omitempty" yaml:"user,omitempty"`
}

// PublicNote - часть заметки, доступная по паролю без аутентификации.
type PublicNote struct {
	ID             *int64     `json:"id,omitempty" yaml:"id,omitempty"`
	Content        string     `json:"content" yaml:"content"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty" yaml:"expirationDate,omitempty"`
}

// IsNew сообщает, что заметка еще не сохранялась.
func (n Note) IsNew() bool {
	return n.ID == nil
}

// IsEmpty сообщает, что заметка равна пустому значению по умолчанию.
func (n Note) IsEmpty() bool {
	return n.ID == nil && n.Content == "" && n.Password == "" && n.Link == nil &&
		n.ExpirationDate == nil && n.User == nil
}

// Public возвращает публичную проекцию без пароля, ссылки и владельца.
func (n Note) Public() PublicNote {
	return PublicNote{ID: n.ID, Content: n.Content, ExpirationDate: n.ExpirationDate}
}

// AsNote превращает публичную проекцию обратно в Note.
func (p PublicNote) AsNote() Note {
	return Note{ID: p.ID, Content: p.Content, ExpirationDate: p.ExpirationDate}
}

// Clean удаляет из заметки ссылку на владельца без идентификатора.
func (n Note) Clean() Note {
	if n.User != nil && n.User.ID == 0 {
		n.User = nil
	}
	return n
}

// Clone возвращает глубокую копию заметки.
func (n Note) Clone() Note {
	if n.ID != nil {
		id := *n.ID
		n.ID = &id
	}
	if n.Link != nil {
		link := *n.Link
		n.Link = &link
	}
	if n.ExpirationDate != nil {
		exp := *n.ExpirationDate
		n.ExpirationDate = &exp
	}
	if n.User != nil {
		user := *n.User
		n.User = &user
	}
	return n
}

// Int64 возвращает указатель на id.
func Int64(id int64) *int64 {
	return &id
}
