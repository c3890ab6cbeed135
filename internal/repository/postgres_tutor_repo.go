package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/tutorplanet/internal/model"
	"github.com/hitoshi/tutorplanet/internal/security"
)

// PostgresTutorRepo はPostgreSQLを使用した講師リポジトリ。
type PostgresTutorRepo struct {
	db *sql.DB
}

// NewPostgresTutorRepo はPostgresTutorRepoを生成する。
func NewPostgresTutorRepo(db *sql.DB) *PostgresTutorRepo {
	return &PostgresTutorRepo{db: db}
}

// Create は講師を同一トランザクション内で作成する。
// 一意制約違反の場合はロールバックしてErrEmailTakenを返す。
func (r *PostgresTutorRepo) Create(ctx context.Context, tutor *model.Tutor) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO tutors (name, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		tutor.Name, tutor.Email, tutor.PasswordHash, tutor.CreatedAt,
	).Scan(&tutor.ID)
	if err != nil {
		if isPostgresUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert tutor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isPostgresUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindByID は指定IDの講師を取得する。見つからない場合はnilを返す。
func (r *PostgresTutorRepo) FindByID(ctx context.Context, id int64) (*model.Tutor, error) {
	tutor := &model.Tutor{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM tutors WHERE id = $1`,
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
// どちらかが一致しない場合はnilを返す。
func (r *PostgresTutorRepo) FindByEmailAndPassword(ctx context.Context, email, password string) (*model.Tutor, error) {
	tutor := &model.Tutor{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM tutors WHERE email = $1`,
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
func (r *PostgresTutorRepo) List(ctx context.Context) ([]*model.Tutor, error) {
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

// DeleteAll は全講師を削除し、IDシーケンスをリセットする。
func (r *PostgresTutorRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `TRUNCATE TABLE tutors RESTART IDENTITY`); err != nil {
		return fmt.Errorf("failed to truncate tutors: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TutorRepository = (*PostgresTutorRepo)(nil)
