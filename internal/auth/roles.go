package auth

import (
	"github.com/spec-kit/auth-service/internal/domain"
)

// roleRank orders roles; a higher rank satisfies every lower requirement.
var roleRank = map[domain.Role]int{
	domain.RoleUser:  1,
	domain.RoleAdmin: 2,
}

// Satisfies reports whether a principal holding have may access a route requiring need.
// An empty requirement is satisfied by any known role.
func Satisfies(have, need domain.Role) bool {
	haveRank, ok := roleRank[have]
	if !ok {
		return false
	}
	if need == "" {
		return true
	}
	needRank, ok := roleRank[need]
	if !ok {
		return false
	}
	return haveRank >= needRank
}
