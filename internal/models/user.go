// Package models содержит доменные структуры библиотеки ресурсов:
// пользователей, ресурсы, теги и события подписки, а также
// вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Роли пользователей. Значение роли — закрытое множество из двух элементов,
// любое другое значение в поле Role считается ошибкой данных.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Виды премиум-подписки с фиксированной длительностью в днях.
const (
	KindMonthly   = "monthly"
	KindQuarterly = "quarterly"
	KindYearly    = "yearly"
)

// User представляет зарегистрированного пользователя системы.
//
// Поля Premium, PremiumExpiresAt и SubscriptionKind управляются только
// сервисом премиум-подписки: PremiumExpiresAt и SubscriptionKind либо
// оба заполнены, либо оба nil. Флаг Premium сам по себе не означает
// действующую подписку — действительность всегда вычисляется по
// PremiumExpiresAt относительно текущего момента.
type User struct {
	UID              string     // Уникальный идентификатор пользователя
	Email            string     // Электронная почта
	Username         string     // Имя пользователя (уникальное)
	PasswordHash     string     // Хэш пароля пользователя
	Role             string     // Роль пользователя, admin или user
	Premium          bool       // Номинальный флаг премиум-статуса
	PremiumExpiresAt *time.Time // Момент истечения премиум-подписки
	SubscriptionKind *string    // Вид подписки: monthly, quarterly, yearly
	CreatedAt        time.Time  // Дата регистрации
}

// SubscriptionEvent — запись журнала активаций премиум-подписки.
// Создаётся ровно один раз при каждой активации и никогда не изменяется.
type SubscriptionEvent struct {
	ID          int       `json:"id"`
	UserUID     string    `json:"user_uid"`
	Kind        string    `json:"kind"`
	ActivatedAt time.Time `json:"activated_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required,min=8"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required"`
}

// DummyActivate используется для приёма запроса активации премиум-подписки.
type DummyActivate struct {
	Kind string `json:"kind" validate:"required,oneof=monthly quarterly yearly"`
}

// DummyChangeRole используется для приёма запроса смены роли пользователя.
type DummyChangeRole struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}
