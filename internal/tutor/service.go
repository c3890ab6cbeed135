// Package tutor は講師のサインアップ、プロフィール閲覧、一覧表示を提供する。
package tutor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/tutorplanet/internal/metrics"
	"github.com/hitoshi/tutorplanet/internal/model"
	"github.com/hitoshi/tutorplanet/internal/repository"
	"github.com/hitoshi/tutorplanet/internal/security"
	"github.com/hitoshi/tutorplanet/internal/validation"
)

// SignupInput はサインアップの入力。
// 表示名とメールアドレスの上限はtutorsテーブルの列幅に合わせている。
// パスワードはハッシュ化して保存するため長さの上限を持たない。
type SignupInput struct {
	Name     string `form:"name" json:"name" validate:"required,max=100"`
	Email    string `form:"email" json:"email" validate:"required,max=100"`
	Password string `form:"password" json:"password" validate:"required"`
}

// SignupResult はサインアップ成功時の結果。
type SignupResult struct {
	Message string
	TutorID int64
}

// Service は講師に関するビジネスロジックを提供する。
type Service struct {
	tutorRepo repository.TutorRepository
	validator *validation.Validator
	metrics   metrics.MetricsCollector
	hashCost  int
	now       func() time.Time
}

// Option はServiceの任意設定。
type Option func(*Service)

// WithHashCost はbcryptのコストを指定する。テストで計算量を下げるために使う。
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

// WithMetrics はメトリクスの記録先を指定する。
func WithMetrics(collector metrics.MetricsCollector) Option {
	return func(s *Service) { s.metrics = collector }
}

// NewService はServiceを生成する。
func NewService(
	tutorRepo repository.TutorRepository,
	validator *validation.Validator,
	opts ...Option,
) *Service {
	s := &Service{
		tutorRepo: tutorRepo,
		validator: validator,
		metrics:   metrics.Nop{},
		hashCost:  bcrypt.DefaultCost,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup は講師を登録する。セッションには触れない。
//
// 表示名は自由記述として入力どおりに保存し、表示時にテンプレートがエスケープする。
// 必須項目の欠落はMALFORMED_REQUEST、
// メールアドレスの重複はEMAIL_TAKEN、それ以外のストア障害は汎用のサインアップ失敗エラーを返す。
// いずれの失敗でも書き込みは残らない。
func (s *Service) Signup(ctx context.Context, input SignupInput) (*SignupResult, error) {
	if err := s.validator.Struct(input); err != nil {
		s.metrics.RecordSignup(metrics.SignupMalformed)
		return nil, model.NewMalformedRequestError(err.Error())
	}

	hash, err := security.HashPassword(input.Password, s.hashCost)
	if err != nil {
		s.metrics.RecordSignup(metrics.SignupError)
		slog.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, model.NewSignupFailedError()
	}

	tutor := &model.Tutor{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.tutorRepo.Create(ctx, tutor); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			s.metrics.RecordSignup(metrics.SignupEmailTaken)
			slog.Info("signup rejected: email already in use", slog.String("email", input.Email))
			return nil, model.NewEmailTakenError()
		}
		s.metrics.RecordSignup(metrics.SignupError)
		slog.Error("failed to create tutor",
			slog.String("email", input.Email),
			slog.String("error", err.Error()),
		)
		return nil, model.NewSignupFailedError()
	}

	s.metrics.RecordSignup(metrics.SignupCreated)
	slog.Info("tutor signed up",
		slog.Int64("tutor_id", tutor.ID),
		slog.String("email", tutor.Email),
	)

	return &SignupResult{
		Message: model.MessageSignupSucceeded,
		TutorID: tutor.ID,
	}, nil
}

// Profile は講師の公開情報を返す。存在しない場合はTUTOR_NOT_FOUNDを返す。
func (s *Service) Profile(ctx context.Context, id int64) (*model.TutorProfile, error) {
	tutor, err := s.tutorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find tutor: %w", err)
	}
	if tutor == nil {
		return nil, model.NewTutorNotFoundError(id)
	}

	profile := tutor.Profile()
	return &profile, nil
}

// Browse は全講師の公開情報をID昇順で返す。
func (s *Service) Browse(ctx context.Context) ([]model.TutorProfile, error) {
	tutors, err := s.tutorRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tutors: %w", err)
	}

	profiles := make([]model.TutorProfile, 0, len(tutors))
	for _, t := range tutors {
		profiles = append(profiles, t.Profile())
	}
	return profiles, nil
}
