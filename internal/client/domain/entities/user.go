package entities

// User - ссылка на владельца заметки.
type User struct {
	ID    int64  `json:"id" yaml:"id"`
	Login string `json:"login" yaml:"login"`
}

// Account - аутентифицированный пользователь клиента.
type Account struct {
	ID    int64
	Login string
}

// Owner возвращает ссылку на владельца для сохранения заметки.
func (a Account) Owner() *User {
	return &User{ID: a.ID, Login: a.Login}
}
