// Package model はドメインモデルを定義する。
package model

import "time"

// Tutor はサービスに登録された講師を表す。
// Emailはログインキーとして使用され、全講師の中で一意である。
type Tutor struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// TutorProfile は講師の公開情報を表す。
// パスワードハッシュなど非公開のフィールドは含まない。
type TutorProfile struct {
	ID    int64
	Name  string
	Email string
}

// Profile は講師の公開情報を返す。
func (t *Tutor) Profile() TutorProfile {
	return TutorProfile{
		ID:    t.ID,
		Name:  t.Name,
		Email: t.Email,
	}
}
