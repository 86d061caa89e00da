package domain

import "errors"

var (
	// ErrUserNotFound возвращается, если пользователь еще не прошел регистрацию.
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionNotFound возвращается, если у пользователя нет активного диалога.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidCatalog означает, что файл каталога не прошел проверку.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrMissingToken означает, что не задан токен бота.
	ErrMissingToken = errors.New("bot token is not set")
)
