package app

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"quiz-web/internal/domain"
)

// QuizzesPerPage is the fixed page size for the quiz listing.
const QuizzesPerPage = 10

var spaceRuns = regexp.MustCompile(` +`)

// QuizService contains the quiz catalog use cases.
type QuizService struct {
	quizzes QuizRepository
}

func NewQuizService(quizzes QuizRepository) *QuizService {
	return &QuizService{quizzes: quizzes}
}

// Index returns one page of quizzes matching search plus the total match
// count. Search is a case-insensitive substring match over the question
// text, with runs of spaces acting as wildcards. Pages are 1-indexed and
// out-of-range pages return an empty page, not an error.
func (s *QuizService) Index(ctx context.Context, search string, page int) ([]*domain.Quiz, int, error) {
	if page < 1 {
		page = 1
	}
	pattern := ""
	if search != "" {
		pattern = "%" + spaceRuns.ReplaceAllString(search, "%") + "%"
	}

	count, err := s.quizzes.CountSearch(ctx, pattern)
	if err != nil {
		return nil, 0, fmt.Errorf("count quizzes: %w", err)
	}
	quizzes, err := s.quizzes.Search(ctx, pattern, QuizzesPerPage*(page-1), QuizzesPerPage)
	if err != nil {
		return nil, 0, fmt.Errorf("search quizzes: %w", err)
	}
	return quizzes, count, nil
}

// Get loads a quiz (with its author) by id.
func (s *QuizService) Get(ctx context.Context, id int64) (*domain.Quiz, error) {
	return s.quizzes.FindByID(ctx, id)
}

// ListAll returns the whole catalog, used by the group edit form.
func (s *QuizService) ListAll(ctx context.Context) ([]*domain.Quiz, error) {
	return s.quizzes.ListAll(ctx)
}

// Create stores a new quiz authored by authorID.
func (s *QuizService) Create(ctx context.Context, authorID int64, question, answer string) (*domain.Quiz, error) {
	if err := validateQuiz(question, answer); err != nil {
		return nil, err
	}
	quiz := &domain.Quiz{Question: question, Answer: answer, AuthorID: authorID}
	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}

// Update replaces the question and answer of an existing quiz.
func (s *QuizService) Update(ctx context.Context, quiz *domain.Quiz, question, answer string) error {
	if err := validateQuiz(question, answer); err != nil {
		return err
	}
	quiz.Question = question
	quiz.Answer = answer
	if err := s.quizzes.Update(ctx, quiz); err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	return nil
}

// Delete removes a quiz. Join rows referencing it cascade away.
func (s *QuizService) Delete(ctx context.Context, id int64) error {
	return s.quizzes.Delete(ctx, id)
}

func validateQuiz(question, answer string) error {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(question) == "" {
		verr.Add("question", "Question must not be empty")
	}
	if strings.TrimSpace(answer) == "" {
		verr.Add("answer", "Answer must not be empty")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// AnswersMatch compares a submitted answer with the stored one after
// trimming surrounding whitespace and case-folding both sides.
func AnswersMatch(submitted, stored string) bool {
	return normalizeAnswer(submitted) == normalizeAnswer(stored)
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
