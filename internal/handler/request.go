package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"

	"github.com/hitoshi/tutorplanet/internal/middleware"
	"github.com/hitoshi/tutorplanet/internal/model"
)

// errMalformedBody はリクエストボディを解釈できない場合のエラー。
var errMalformedBody = errors.New("malformed request body")

// loginRequest はログインリクエストの入力。
type loginRequest struct {
	Email    string `form:"email" json:"email" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

func loginRequestFromForm(v url.Values) loginRequest {
	return loginRequest{
		Email:    v.Get("email"),
		Password: v.Get("password"),
	}
}

// decodeBody はContent-Typeに応じて、JSONまたはフォーム形式のボディを読み取る。
// フォームの場合はfromFormでurl.Valuesから値を組み立てる。
func decodeBody[T any](w http.ResponseWriter, r *http.Request, fromForm func(url.Values) T) (T, error) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, middleware.MaxRequestBodyBytes)

	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			return v, fmt.Errorf("%w: %w", errMalformedBody, err)
		}
		return v, nil
	}

	if err := r.ParseForm(); err != nil {
		return v, fmt.Errorf("%w: %w", errMalformedBody, err)
	}
	return fromForm(r.PostForm), nil
}

// bodyError はdecodeBodyのエラーを利用者向けのAPIErrorに変換する。
func bodyError(err error) *model.APIError {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return model.NewRequestTooLargeError(maxErr.Limit)
	}
	return model.NewMalformedRequestError(err.Error())
}

func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
