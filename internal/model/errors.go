// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, tutor, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMalformedRequest = "MALFORMED_REQUEST"
	ErrCodeEmailTaken       = "EMAIL_TAKEN"
	ErrCodeTutorNotFound    = "TUTOR_NOT_FOUND"
	ErrCodePermissionDenied = "PERMISSION_DENIED"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeCSRFFailed       = "CSRF_FAILED"
	ErrCodeRequestTooLarge  = "REQUEST_TOO_LARGE"
)

// 利用者に返すメッセージ
const (
	MessageSignupSucceeded = "You've successfully signed up as a tutor!"
	MessageEmailTaken      = "The email you have entered is already in use for an existing tutor account."
	MessageSignupFailed    = "An error occurred while signing up. Please try again later."
	MessageLoginSucceeded  = "Successful login"
	MessageLoginFailed     = "Login failed. Please check the email and password."
	MessageLoggedOut       = "You have been logged out."
)

// NewMalformedRequestError は必須項目の欠落などリクエスト不正のエラーを生成する。
func NewMalformedRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeMalformedRequest,
		Message:  fmt.Sprintf("Malformed request: %s", reason),
		Category: "validation",
		Action:   "Fill in every required field and submit again.",
	}
}

// NewEmailTakenError はメールアドレス重複のエラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  MessageEmailTaken,
		Category: "tutor",
		Action:   "Log in with the existing account or sign up with another email.",
	}
}

// NewTutorNotFoundError は講師が見つからない場合のエラーを生成する。
func NewTutorNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeTutorNotFound,
		Message:  fmt.Sprintf("Tutor not found: %d", id),
		Category: "tutor",
		Action:   "Check the tutor ID.",
	}
}

// NewSignupFailedError は予期しないストア障害によるサインアップ失敗のエラーを生成する。
func NewSignupFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  MessageSignupFailed,
		Category: "system",
		Action:   "Please wait a moment and try again.",
	}
}

// NewRequestTooLargeError はリクエストボディが上限を超えた場合のエラーを生成する。
func NewRequestTooLargeError(limit int64) *APIError {
	return &APIError{
		Code:     ErrCodeRequestTooLarge,
		Message:  fmt.Sprintf("Request body exceeds %d bytes.", limit),
		Category: "validation",
		Action:   "Shorten the submitted values and try again.",
	}
}
