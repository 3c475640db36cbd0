// Package access реализует правила доступа к ресурсам: чистую функцию,
// которая по паре «посетитель — ресурс» возвращает решение о просмотре.
// Пакет не хранит состояние и не обращается к хранилищу.
package access

import (
	"fmt"

	"github.com/magabrotheeeer/resource-library/internal/models"
)

// ViewerKind — закрытое множество видов посетителей.
type ViewerKind int

const (
	// Anonymous — неаутентифицированный посетитель.
	Anonymous ViewerKind = iota
	// Member — зарегистрированный пользователь.
	Member
	// Administrator — администратор.
	Administrator
)

// Viewer описывает посетителя на момент запроса. PremiumActive — уже
// вычисленный предикат действующей подписки (см. premium.Effective),
// а не сырой флаг из учётной записи; имеет смысл только для Member.
type Viewer struct {
	Kind          ViewerKind
	PremiumActive bool
}

// DenyReason — причина отказа в просмотре.
type DenyReason string

const (
	// AuthenticationRequired — ресурс ограничен, посетитель анонимен.
	AuthenticationRequired DenyReason = "authentication_required"
	// PremiumRequired — ресурс ограничен, у пользователя нет действующей подписки.
	PremiumRequired DenyReason = "premium_required"
)

// Decision — результат проверки доступа. Отказ — обычный результат,
// а не ошибка: при Allowed == false заполнен Reason.
type Decision struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
}

// Decide возвращает решение о просмотре ресурса посетителем.
//
// Правила в порядке приоритета: администратору разрешено всё; открытый
// ресурс доступен всем, включая анонимных; ограниченный ресурс требует
// аутентификации и действующей премиум-подписки. Функция детерминирована
// и покрывает все комбинации входов; неизвестный вид посетителя —
// ошибка программирования, а не отказ времени выполнения.
func Decide(viewer Viewer, visibility string) Decision {
	if viewer.Kind == Administrator {
		return Decision{Allowed: true}
	}
	if visibility == models.VisibilityOpen {
		return Decision{Allowed: true}
	}

	switch viewer.Kind {
	case Anonymous:
		return Decision{Allowed: false, Reason: AuthenticationRequired}
	case Member:
		if viewer.PremiumActive {
			return Decision{Allowed: true}
		}
		return Decision{Allowed: false, Reason: PremiumRequired}
	default:
		panic(fmt.Sprintf("access: unknown viewer kind %d", viewer.Kind))
	}
}

// ViewerFromUser строит посетителя из учётной записи и вычисленного
// предиката действующей подписки. Для nil-пользователя возвращает
// анонимного посетителя.
func ViewerFromUser(u *models.User, premiumActive bool) Viewer {
	if u == nil {
		return Viewer{Kind: Anonymous}
	}
	if u.Role == models.RoleAdmin {
		return Viewer{Kind: Administrator}
	}
	return Viewer{Kind: Member, PremiumActive: premiumActive}
}
