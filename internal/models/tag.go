package models

import "time"

// Tag — запись реестра тегов. Имя уникально. Удаление тега блокируется,
// пока на него ссылается хотя бы один неудалённый ресурс.
type Tag struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// DummyTag используется для приёма имени тега из JSON-запроса
// при создании и переименовании.
type DummyTag struct {
	Name string `json:"name" validate:"required,min=1,max=64"`
}
