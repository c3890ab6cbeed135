// Package auth はログイン、ログアウト、アカウントページのアクセス判定を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/tutorplanet/internal/metrics"
	"github.com/hitoshi/tutorplanet/internal/model"
	"github.com/hitoshi/tutorplanet/internal/repository"
	"github.com/hitoshi/tutorplanet/internal/session"
)

// ErrTutorNotFound はアクセスが許可されたが講師レコードが存在しない場合のエラー。
var ErrTutorNotFound = errors.New("tutor not found")

// LoginResult はログイン試行の結果。
type LoginResult struct {
	Message string
	TutorID *int64 // 失敗時はnil
}

// Succeeded はログインに成功したかどうかを返す。
func (r LoginResult) Succeeded() bool {
	return r.TutorID != nil
}

// LogoutResult はログアウトの結果。
type LogoutResult struct {
	Message string
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	tutorRepo repository.TutorRepository
	metrics   metrics.MetricsCollector
}

// NewService はServiceを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewService(tutorRepo repository.TutorRepository, collector metrics.MetricsCollector) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		tutorRepo: tutorRepo,
		metrics:   collector,
	}
}

// Login はメールアドレスとパスワードで講師を認証し、セッションを更新する。
//
// 照合の前にセッションを必ず未認証に戻す。そのため、ログイン済みのクライアントが
// 誤った資格情報で再ログインを試みると、ログイン状態は失われる。
// 照合に成功した場合のみ講師IDと種別を同時に設定する。
// ストア障害時はセッションを未認証のままエラーを返す。
func (s *Service) Login(ctx context.Context, sess *session.Session, email, password string) (LoginResult, error) {
	sess.Clear()

	tutor, err := s.tutorRepo.FindByEmailAndPassword(ctx, email, password)
	if err != nil {
		s.metrics.RecordLogin(metrics.LoginError)
		return LoginResult{}, fmt.Errorf("failed to find tutor by credentials: %w", err)
	}

	if tutor == nil {
		s.metrics.RecordLogin(metrics.LoginFailed)
		slog.Info("tutor login failed", slog.String("email", email))
		return LoginResult{Message: model.MessageLoginFailed}, nil
	}

	sess.Identity = model.Authenticated(tutor.ID, model.PrincipalTutor)
	s.metrics.RecordLogin(metrics.LoginSucceeded)
	slog.Info("tutor logged in", slog.Int64("tutor_id", tutor.ID))

	id := tutor.ID
	return LoginResult{Message: model.MessageLoginSucceeded, TutorID: &id}, nil
}

// Logout はセッションを未認証に戻す。
// セッションの状態にかかわらず常に成功し、何度呼んでも結果は同じ。
func (s *Service) Logout(sess *session.Session) LogoutResult {
	if userID, ok := sess.Identity.UserID(); ok {
		slog.Info("tutor logged out", slog.Int64("tutor_id", userID))
	}
	sess.Clear()
	return LogoutResult{Message: model.MessageLoggedOut}
}

// Account は講師アカウントページへのアクセスを判定し、許可された場合のみ講師を取得する。
// 拒否された場合はストアに問い合わせず、講師はnil、エラーもnilを返す。
// 許可されたが講師が存在しない場合はErrTutorNotFoundを返す。
func (s *Service) Account(ctx context.Context, sess *session.Session, tutorID int64) (*model.Tutor, Decision, error) {
	decision := Decide(sess.Identity, TutorResource(tutorID))
	s.metrics.RecordAccessDecision(decision.String())

	if !decision.Allowed() {
		slog.Info("account access denied",
			slog.Int64("tutor_id", tutorID),
			slog.String("identity", sess.Identity.String()),
			slog.String("decision", decision.String()),
		)
		return nil, decision, nil
	}

	tutor, err := s.tutorRepo.FindByID(ctx, tutorID)
	if err != nil {
		return nil, decision, fmt.Errorf("failed to find tutor: %w", err)
	}
	if tutor == nil {
		return nil, decision, ErrTutorNotFound
	}

	return tutor, decision, nil
}
