package memory

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"

	"quiz-web/internal/domain"
)

// QuizRepository is an in-memory implementation of app.QuizRepository.
type QuizRepository struct {
	mu      sync.RWMutex
	nextID  int64
	quizzes map[int64]*domain.Quiz
}

func NewQuizRepository() *QuizRepository {
	return &QuizRepository{
		nextID:  1,
		quizzes: make(map[int64]*domain.Quiz),
	}
}

func (r *QuizRepository) FindByID(_ context.Context, id int64) (*domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	quiz, ok := r.quizzes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *quiz
	return &clone, nil
}

func (r *QuizRepository) Search(_ context.Context, pattern string, offset, limit int) ([]*domain.Quiz, error) {
	matches := r.match(pattern)
	return page(matches, offset, limit), nil
}

func (r *QuizRepository) CountSearch(_ context.Context, pattern string) (int, error) {
	return len(r.match(pattern)), nil
}

func (r *QuizRepository) ListAll(_ context.Context) ([]*domain.Quiz, error) {
	return r.match(""), nil
}

func (r *QuizRepository) Create(_ context.Context, quiz *domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz.ID = r.nextID
	r.nextID++
	clone := *quiz
	r.quizzes[quiz.ID] = &clone
	return nil
}

func (r *QuizRepository) Update(_ context.Context, quiz *domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.quizzes[quiz.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Question = quiz.Question
	existing.Answer = quiz.Answer
	return nil
}

func (r *QuizRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quizzes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.quizzes, id)
	return nil
}

// match filters on a SQL LIKE-style pattern, case-insensitively, ordered by
// id. An empty pattern matches everything.
func (r *QuizRepository) match(pattern string) []*domain.Quiz {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var re *regexp.Regexp
	if pattern != "" {
		parts := strings.Split(pattern, "%")
		for i, part := range parts {
			parts[i] = regexp.QuoteMeta(part)
		}
		re = regexp.MustCompile("(?i)^" + strings.Join(parts, ".*") + "$")
	}

	matches := make([]*domain.Quiz, 0, len(r.quizzes))
	for _, quiz := range r.quizzes {
		if re != nil && !re.MatchString(quiz.Question) {
			continue
		}
		clone := *quiz
		matches = append(matches, &clone)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches
}

func (r *QuizRepository) detachAuthor(authorID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, quiz := range r.quizzes {
		if quiz.AuthorID == authorID {
			quiz.AuthorID = 0
		}
	}
}
