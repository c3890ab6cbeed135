package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/tutorplanet/internal/model"
	"github.com/hitoshi/tutorplanet/internal/security"
)

// SQLiteTutorRepo はSQLiteを使用した講師リポジトリ。
// ローカル開発とテストで使用する。
type SQLiteTutorRepo struct {
	db *sql.DB
}

// NewSQLiteTutorRepo はSQLiteTutorRepoを生成する。
func NewSQLiteTutorRepo(db *sql.DB) *SQLiteTutorRepo {
	return &SQLiteTutorRepo{db: db}
}

// Create は講師を同一トランザクション内で作成する。
// 一意制約違反の場合はロールバックしてErrEmailTakenを返す。
func (r *SQLiteTutorRepo) Create(ctx context.Context, tutor *model.Tutor) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO tutors (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		tutor.Name, tutor.Email, tutor.PasswordHash, tutor.CreatedAt,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert tutor: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted tutor ID: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	tutor.ID = id
	return nil
}

// FindByID は指定IDの講師を取得する。見つからない場合はnilを返す。
func (r *SQLiteTutorRepo) FindByID(ctx context.Context, id int64) (*model.Tutor, error) {
	tutor := &model.Tutor{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM tutors WHERE id = ?`,
		id,
	).Scan(&tutor.ID, &tutor.Name, &tutor.Email, &tutor.PasswordHash, &tutor.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tutor by ID: %w", err)
	}

	return tutor, nil
}

// FindByEmailAndPassword はメールアドレスで講師を検索し、パスワードを照合する。
// SQLiteの既定の照合順序(BINARY)により、メールアドレスの比較は大文字小文字を区別する。
func (r *SQLiteTutorRepo) FindByEmailAndPassword(ctx context.Context, email, password string) (*model.Tutor, error) {
	tutor := &model.Tutor{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM tutors WHERE email = ? LIMIT 1`,
		email,
	).Scan(&tutor.ID, &tutor.Name, &tutor.Email, &tutor.PasswordHash, &tutor.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tutor by email: %w", err)
	}

	if !security.PasswordMatches(tutor.PasswordHash, password) {
		return nil, nil
	}

	return tutor, nil
}

// List は全講師をID昇順で返す。
func (r *SQLiteTutorRepo) List(ctx context.Context) ([]*model.Tutor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM tutors ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tutors: %w", err)
	}
	defer rows.Close()

	var tutors []*model.Tutor
	for rows.Next() {
		tutor := &model.Tutor{}
		if err := rows.Scan(&tutor.ID, &tutor.Name, &tutor.Email, &tutor.PasswordHash, &tutor.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tutor: %w", err)
		}
		tutors = append(tutors, tutor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tutors: %w", err)
	}

	return tutors, nil
}

// DeleteAll は全講師を削除し、AUTOINCREMENTの採番をリセットする。
func (r *SQLiteTutorRepo) DeleteAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tutors`); err != nil {
		return fmt.Errorf("failed to delete tutors: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = 'tutors'`); err != nil {
		return fmt.Errorf("failed to reset tutor sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TutorRepository = (*SQLiteTutorRepo)(nil)
