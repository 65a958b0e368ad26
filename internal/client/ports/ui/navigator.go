// Package ui определяет порты представлений.
package ui

// Маршруты клиента.
const (
	RouteNoteList = "/note"
)

// Navigator переводит пользователя на другой маршрут.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc адаптирует функцию к Navigator.
type NavigatorFunc func(route string)

// Navigate вызывает f(route).
func (f NavigatorFunc) Navigate(route string) {
	f(route)
}
