package models

const (
	// HeaderUserID идентифицирует действующего пользователя
	HeaderUserID = "X-Sharer-User-Id"

	// HeaderRequestID проходит от шлюза до сервера
	HeaderRequestID = "X-Request-Id"

	DefaultFrom = 0
	DefaultSize = 10
)

// Page is an offset/limit window over an ordered listing.
type Page struct {
	From int
	Size int
}

func DefaultPage() Page {
	return Page{From: DefaultFrom, Size: DefaultSize}
}
