package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-web/internal/domain"
)

// PlaySource implements app.PlayQuizSource with raw pgx queries. The engine
// hits this on every play request, so it bypasses the ORM and always reads
// current group membership.
type PlaySource struct {
	pool *pgxpool.Pool
}

func NewPlaySource(pool *pgxpool.Pool) *PlaySource {
	return &PlaySource{pool: pool}
}

func (p *PlaySource) QuizByID(ctx context.Context, id int64) (*domain.Quiz, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT id, question, answer, author_id FROM quizzes WHERE id = $1`, id)
	return scanQuiz(row)
}

func (p *PlaySource) CountRemaining(ctx context.Context, groupID int64, resolved []int64) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx,
		`SELECT count(*)
		   FROM quizzes q
		   JOIN group_quizzes gq ON gq.quiz_id = q.id
		  WHERE gq.group_id = $1
		    AND NOT (q.id = ANY($2))`,
		groupID, nonNil(resolved)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count remaining: %w", err)
	}
	return count, nil
}

func (p *PlaySource) PickRemaining(ctx context.Context, groupID int64, resolved []int64, offset int) (*domain.Quiz, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT q.id, q.question, q.answer, q.author_id
		   FROM quizzes q
		   JOIN group_quizzes gq ON gq.quiz_id = q.id
		  WHERE gq.group_id = $1
		    AND NOT (q.id = ANY($2))
		  ORDER BY q.id
		 OFFSET $3
		  LIMIT 1`,
		groupID, nonNil(resolved), offset)
	return scanQuiz(row)
}

func scanQuiz(row pgx.Row) (*domain.Quiz, error) {
	var quiz domain.Quiz
	var authorID sql.NullInt64
	err := row.Scan(&quiz.ID, &quiz.Question, &quiz.Answer, &authorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan quiz: %w", err)
	}
	quiz.AuthorID = authorID.Int64
	return &quiz, nil
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
