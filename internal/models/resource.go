package models

import "time"

// Видимость ресурса. Открытые ресурсы доступны всем, включая анонимных
// посетителей; ограниченные — только действующим премиум-пользователям
// и администраторам.
const (
	VisibilityOpen       = "open"
	VisibilityRestricted = "restricted"
)

// Resource представляет опубликованный файл библиотеки: документ или медиа.
//
// Теги хранятся денормализованно — по значению имени, а не по ссылке на
// запись реестра. Переименование тега в реестре не переписывает строки
// на ресурсах.
type Resource struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	Visibility string    `json:"visibility"` // open или restricted
	Categories []int64   `json:"categories"` // Ссылки на категории
	Tags       []string  `json:"tags"`       // Имена тегов по значению
	Deleted    bool      `json:"deleted"`    // Мягкое удаление (tombstone)
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DummyResource используется для приёма данных ресурса из JSON-запроса
// при создании и обновлении.
type DummyResource struct {
	Title      string   `json:"title" validate:"required"`
	Visibility string   `json:"visibility" validate:"required,oneof=open restricted"`
	Categories []int64  `json:"categories" validate:"omitempty"`
	Tags       []string `json:"tags" validate:"omitempty"`
}
