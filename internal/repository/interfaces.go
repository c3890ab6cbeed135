// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/tutorplanet/internal/model"
)

// TutorRepository は講師データの永続化インターフェース。
type TutorRepository interface {
	// Create は講師を作成し、採番されたIDをtutor.IDに設定する。
	// メールアドレスが既に使われている場合はErrEmailTakenを返し、書き込みは一切残さない。
	Create(ctx context.Context, tutor *model.Tutor) error

	// FindByID は指定IDの講師を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Tutor, error)

	// FindByEmailAndPassword はメールアドレスとパスワードが完全一致する講師を取得する。
	// 大文字小文字を区別し、正規化は行わない。一致しない場合はnilを返す。
	FindByEmailAndPassword(ctx context.Context, email, password string) (*model.Tutor, error)

	// List は全講師をID昇順で返す。
	List(ctx context.Context) ([]*model.Tutor, error)

	// DeleteAll は全講師を削除し、ID採番をリセットする。シード投入用。
	DeleteAll(ctx context.Context) error
}
