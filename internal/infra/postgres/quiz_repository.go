package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"quiz-web/internal/domain"
)

// QuizRepository is the bun-backed implementation of app.QuizRepository.
type QuizRepository struct {
	db *bun.DB
}

func NewQuizRepository(db *bun.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) FindByID(ctx context.Context, id int64) (*domain.Quiz, error) {
	quiz := new(domain.Quiz)
	err := r.db.NewSelect().Model(quiz).
		Relation("Author").
		Where("q.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find quiz: %w", err)
	}
	return quiz, nil
}

func (r *QuizRepository) Search(ctx context.Context, pattern string, offset, limit int) ([]*domain.Quiz, error) {
	var quizzes []*domain.Quiz
	query := r.db.NewSelect().Model(&quizzes).
		Relation("Author").
		Order("q.id ASC").
		Offset(offset).Limit(limit)
	if pattern != "" {
		query = query.Where("q.question ILIKE ?", pattern)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("search quizzes: %w", err)
	}
	return quizzes, nil
}

func (r *QuizRepository) CountSearch(ctx context.Context, pattern string) (int, error) {
	query := r.db.NewSelect().Model((*domain.Quiz)(nil))
	if pattern != "" {
		query = query.Where("question ILIKE ?", pattern)
	}
	count, err := query.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count quizzes: %w", err)
	}
	return count, nil
}

func (r *QuizRepository) ListAll(ctx context.Context) ([]*domain.Quiz, error) {
	var quizzes []*domain.Quiz
	if err := r.db.NewSelect().Model(&quizzes).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizzes, nil
}

func (r *QuizRepository) Create(ctx context.Context, quiz *domain.Quiz) error {
	if _, err := r.db.NewInsert().Model(quiz).Exec(ctx); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (r *QuizRepository) Update(ctx context.Context, quiz *domain.Quiz) error {
	res, err := r.db.NewUpdate().Model(quiz).
		Column("question", "answer").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *QuizRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().Model((*domain.Quiz)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
