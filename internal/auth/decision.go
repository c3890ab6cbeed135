package auth

import "github.com/hitoshi/tutorplanet/internal/model"

// Decision はアカウントページへのアクセス判定の結果。
type Decision int

const (
	// Allow はアクセスを許可する。
	Allow Decision = iota + 1
	// DenyNotAuthenticated はセッションが未認証のため拒否する。
	DenyNotAuthenticated
	// DenyWrongPrincipal は認証済みだが別の主体のリソースのため拒否する。
	DenyWrongPrincipal
)

// String はログとメトリクスのラベルに使う表現を返す。
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyNotAuthenticated:
		return "deny_not_authenticated"
	case DenyWrongPrincipal:
		return "deny_wrong_principal"
	default:
		return "unknown"
	}
}

// Allowed はアクセスが許可されたかどうかを返す。
func (d Decision) Allowed() bool {
	return d == Allow
}

// Resource はアクセス判定の対象。
// Kindはリソースの所有者として要求される主体の種別を表す。
type Resource struct {
	Kind model.PrincipalKind
	ID   int64
}

// TutorResource は講師アカウントのリソースを返す。
func TutorResource(id int64) Resource {
	return Resource{Kind: model.PrincipalTutor, ID: id}
}

// Decide はセッションのIdentityがリソースにアクセスできるかを判定する。
// 副作用を持たない。
func Decide(identity model.Identity, resource Resource) Decision {
	userID, ok := identity.UserID()
	if !ok {
		return DenyNotAuthenticated
	}
	if identity.Kind() != resource.Kind {
		return DenyWrongPrincipal
	}
	if userID != resource.ID {
		return DenyWrongPrincipal
	}
	return Allow
}
