// Package validation はリクエスト入力の検証を提供する。
package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Validator はstructタグに基づいて入力を検証する。並行利用に安全。
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// New はValidatorを生成する。
// フィールド名はformタグ（無ければjsonタグ、フィールド名の小文字）で報告する。
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return strings.ToLower(field.Name)
	})

	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		panic("failed to register validation translations: " + err.Error())
	}

	return &Validator{validate: v, trans: trans}
}

// Struct はsを検証する。問題がある場合は読みやすいメッセージを持つエラーを返す。
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	messages := make([]string, 0, len(verrs))
	for _, msg := range verrs.Translate(v.trans) {
		messages = append(messages, msg)
	}
	sort.Strings(messages)

	return &Error{Fields: fieldNames(verrs), Message: strings.Join(messages, "; ")}
}

// Error は検証エラー。Fieldsは問題のあったフィールド名。
type Error struct {
	Fields  []string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func fieldNames(verrs validator.ValidationErrors) []string {
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, fe.Field())
	}
	return names
}
