// Package permission holds the request level access rules. Each rule is a
// plain predicate over (method, actor) so routes can compose them.
package permission

import (
	"net/http"

	"anoa.com/yamdb/internal/entity"
)

// Rule decides whether actor may perform method. actor is nil for anonymous
// requests.
type Rule func(method string, actor *entity.User) bool

func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func IsAuthenticated(_ string, actor *entity.User) bool {
	return actor != nil
}

func IsAdmin(_ string, actor *entity.User) bool {
	return actor.IsAdmin()
}

func IsAdminOrReadOnly(method string, actor *entity.User) bool {
	return IsSafeMethod(method) || actor.IsAdmin()
}

func IsAuthenticatedOrReadOnly(method string, actor *entity.User) bool {
	return IsSafeMethod(method) || actor != nil
}

// IsAuthorOrAdminOrModerator is the object level rule for reviews and
// comments. Reads are always allowed here; the request level rule decides
// who may read at all.
func IsAuthorOrAdminOrModerator(method string, actor *entity.User, authorID uint) bool {
	if IsSafeMethod(method) {
		return true
	}
	if actor == nil {
		return false
	}
	return actor.ID == authorID || actor.IsAdmin() || actor.IsModerator()
}

// All grants only when every rule grants.
func All(rules ...Rule) Rule {
	return func(method string, actor *entity.User) bool {
		for _, r := range rules {
			if !r(method, actor) {
				return false
			}
		}
		return true
	}
}
