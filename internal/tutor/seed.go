package tutor

import (
	"context"
	"fmt"
	"log/slog"
)

// SeedTutors は開発用の初期データ。
var SeedTutors = []SignupInput{
	{Name: "John Doe", Email: "john.doe@tutorplanet.co.uk", Password: "password"},
	{Name: "Jane Smith", Email: "jane.smith@tutorplanet.co.uk", Password: "password"},
}

// Seed は全講師を削除したうえで初期データを通常のサインアップ経路で投入する。
// 投入後のIDは1から順に採番される。
func (s *Service) Seed(ctx context.Context) error {
	if err := s.tutorRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to reset tutors: %w", err)
	}

	for _, input := range SeedTutors {
		result, err := s.Signup(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to seed tutor %s: %w", input.Email, err)
		}
		slog.Info("seeded tutor",
			slog.Int64("tutor_id", result.TutorID),
			slog.String("email", input.Email),
		)
	}

	return nil
}
