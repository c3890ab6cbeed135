package model

import "fmt"

// PrincipalKind は認証済みの主体の種別を表す。
// 新しい種別（管理者、保護者など）は定数の追加のみで対応できる。
type PrincipalKind string

const (
	// PrincipalTutor は講師としてログインした主体。
	PrincipalTutor PrincipalKind = "Tutor"
)

// Identity はセッションに保持される認証状態を表す。
// ゼロ値は未認証であり、「一度も設定されていない」状態と
// 「ログアウト済み」の状態を区別しない。
type Identity struct {
	userID        int64
	kind          PrincipalKind
	authenticated bool
}

// Unauthenticated は未認証のIdentityを返す。
func Unauthenticated() Identity {
	return Identity{}
}

// Authenticated は指定IDと種別で認証済みのIdentityを返す。
func Authenticated(userID int64, kind PrincipalKind) Identity {
	return Identity{
		userID:        userID,
		kind:          kind,
		authenticated: true,
	}
}

// IsAuthenticated は認証済みかどうかを返す。
func (i Identity) IsAuthenticated() bool {
	return i.authenticated
}

// UserID は認証済みの主体のIDを返す。未認証の場合はfalseを返す。
func (i Identity) UserID() (int64, bool) {
	return i.userID, i.authenticated
}

// Kind は認証済みの主体の種別を返す。未認証の場合は空文字列を返す。
func (i Identity) Kind() PrincipalKind {
	return i.kind
}

// String はログ出力用の表現を返す。
func (i Identity) String() string {
	if !i.authenticated {
		return "unauthenticated"
	}
	return fmt.Sprintf("%s:%d", i.kind, i.userID)
}
