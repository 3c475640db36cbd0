package models

import (
	"errors"
	"fmt"
)

// Доменные ошибки движка. Все нарушения охранных проверок обнаруживаются
// до мутации и оставляют состояние нетронутым.
var (
	// ErrNotFound — запрошенная сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrNotAuthorized — вызывающий не обладает ролью администратора.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrSelfActionForbidden — администратор пытается удалить собственную
	// учётную запись или сменить собственную роль.
	ErrSelfActionForbidden = errors.New("self action forbidden")
	// ErrDuplicateName — нарушение уникальности имени тега или пользователя.
	ErrDuplicateName = errors.New("duplicate name")
)

// TagInUseError возвращается при попытке удалить тег, на который ссылается
// хотя бы один неудалённый ресурс. Count — число таких ресурсов; вызывающий
// должен сначала снять тег с каждого из них.
type TagInUseError struct {
	Count int
}

func (e *TagInUseError) Error() string {
	return fmt.Sprintf("tag is in use by %d resources", e.Count)
}

// AsTagInUse извлекает TagInUseError из цепочки ошибок.
func AsTagInUse(err error) (*TagInUseError, bool) {
	var inUse *TagInUseError
	if errors.As(err, &inUse) {
		return inUse, true
	}
	return nil, false
}
