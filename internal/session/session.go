// Package session はクライアントごとのセッション状態とその保存先を提供する。
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/hitoshi/tutorplanet/internal/model"
)

// DefaultCookieName はセッションCookieの既定名。
const DefaultCookieName = "session"

// ErrInvalidSession は改ざん・期限切れ・破損したセッションを表す。
// Loadはこのエラーと共に新しい未認証セッションを返す。
var ErrInvalidSession = errors.New("invalid session")

// Session はクライアント1件分のセッション状態。
// 保持する認証状態はIdentityのみで、ゼロ値は未認証である。
type Session struct {
	id       string
	Identity model.Identity
}

// New は未認証の新しいセッションを返す。
func New() *Session {
	return &Session{}
}

// ID はサーバー側ストアでのセッションIDを返す。Cookieストアでは常に空。
func (s *Session) ID() string {
	return s.id
}

// Clear はセッションを未認証に戻す。
func (s *Session) Clear() {
	s.Identity = model.Unauthenticated()
}

// Store はセッションの読み込みと書き戻しを行う。
type Store interface {
	// Load はリクエストに対応するセッションを返す。
	// セッションが無い場合は新しい未認証セッションを返す。
	// 不正なセッションの場合も新しい未認証セッションを返し、ErrInvalidSessionをラップしたエラーを併せて返す。
	Load(r *http.Request) (*Session, error)

	// Save はセッションを保存し、必要なCookieをレスポンスに設定する。
	Save(w http.ResponseWriter, r *http.Request, s *Session) error
}

// CookieOptions はセッションCookieの属性。
type CookieOptions struct {
	Name   string
	Domain string
	Secure bool
	MaxAge int // 秒
}

// BrowserSessionTTL はブラウザセッションCookie（MaxAge 0）でもサーバー側で
// セッションを有効とみなす上限。ブラウザを閉じたかどうかはサーバーから分からない。
const BrowserSessionTTL = 24 * time.Hour

// lifetime はサーバー側でのセッションの有効期間を返す。
func (o CookieOptions) lifetime() time.Duration {
	if o.MaxAge <= 0 {
		return BrowserSessionTTL
	}
	return time.Duration(o.MaxAge) * time.Second
}

func (o CookieOptions) name() string {
	if o.Name == "" {
		return DefaultCookieName
	}
	return o.Name
}

func (o CookieOptions) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     o.name(),
		Value:    value,
		Path:     "/",
		Domain:   o.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// clearCookie はセッションCookieを削除するCookieを設定する。
func (o CookieOptions) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, o.cookie("", -1))
}

// wireIdentity はセッションの保存形式。未認証の場合は両方ともnullになる。
type wireIdentity struct {
	CurrentUserID   *int64  `json:"current_user_id"`
	CurrentUserType *string `json:"current_user_type"`
}

func encodeIdentity(identity model.Identity) wireIdentity {
	id, ok := identity.UserID()
	if !ok {
		return wireIdentity{}
	}
	kind := string(identity.Kind())
	return wireIdentity{CurrentUserID: &id, CurrentUserType: &kind}
}

// decodeIdentity は保存形式からIdentityを復元する。
// どちらかのキーが欠けている場合は未認証として扱う。
func decodeIdentity(w wireIdentity) model.Identity {
	if w.CurrentUserID == nil || w.CurrentUserType == nil || *w.CurrentUserType == "" {
		return model.Unauthenticated()
	}
	return model.Authenticated(*w.CurrentUserID, model.PrincipalKind(*w.CurrentUserType))
}
