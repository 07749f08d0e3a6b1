package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"quiz-web/internal/app"
	"quiz-web/internal/domain"
	"quiz-web/internal/infra/memory"
)

func newQuizService(t *testing.T, n int) *app.QuizService {
	t.Helper()
	ctx := context.Background()
	quizzes := memory.NewQuizRepository()
	svc := app.NewQuizService(quizzes)
	for i := 1; i <= n; i++ {
		if _, err := svc.Create(ctx, 1, fmt.Sprintf("Question %02d", i), fmt.Sprintf("answer %d", i)); err != nil {
			t.Fatalf("create quiz %d: %v", i, err)
		}
	}
	return svc
}

func TestQuizIndexPagination(t *testing.T) {
	ctx := context.Background()
	svc := newQuizService(t, 23)

	page1, count, err := svc.Index(ctx, "", 1)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if count != 23 {
		t.Fatalf("expected count 23, got %d", count)
	}
	if len(page1) != app.QuizzesPerPage {
		t.Fatalf("page 1: expected %d quizzes, got %d", app.QuizzesPerPage, len(page1))
	}
	if page1[0].Question != "Question 01" {
		t.Fatalf("page 1 starts at %q", page1[0].Question)
	}

	page3, _, err := svc.Index(ctx, "", 3)
	if err != nil {
		t.Fatalf("index page 3: %v", err)
	}
	if len(page3) != 3 {
		t.Fatalf("page 3: expected 3 quizzes, got %d", len(page3))
	}
	if page3[2].Question != "Question 23" {
		t.Fatalf("page 3 ends at %q", page3[2].Question)
	}

	page4, _, err := svc.Index(ctx, "", 4)
	if err != nil {
		t.Fatalf("index page 4: %v", err)
	}
	if len(page4) != 0 {
		t.Fatalf("page 4 should be empty, got %d", len(page4))
	}
}

func TestQuizIndexSearch(t *testing.T) {
	ctx := context.Background()
	quizzes := memory.NewQuizRepository()
	svc := app.NewQuizService(quizzes)

	for _, q := range []string{
		"Capital of France",
		"Capital of Spain",
		"Largest ocean on Earth",
	} {
		if _, err := svc.Create(ctx, 1, q, "x"); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	hits, count, err := svc.Index(ctx, "capital", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if count != 2 || len(hits) != 2 {
		t.Fatalf("case-insensitive search: count=%d len=%d", count, len(hits))
	}

	// Runs of spaces act as wildcards between terms.
	hits, _, err = svc.Index(ctx, "capital france", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].Question != "Capital of France" {
		t.Fatalf("wildcard search: got %v", hits)
	}
}

func TestQuizValidation(t *testing.T) {
	ctx := context.Background()
	svc := app.NewQuizService(memory.NewQuizRepository())

	_, err := svc.Create(ctx, 1, "   ", "")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %v", verr.Errors)
	}
}

func TestQuizUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	quizzes := memory.NewQuizRepository()
	svc := app.NewQuizService(quizzes)

	quiz, err := svc.Create(ctx, 1, "Q", "A")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Update(ctx, quiz, "Q2", "A2"); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := svc.Get(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Question != "Q2" || got.Answer != "A2" {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := svc.Delete(ctx, quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, quiz.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestAnswersMatch(t *testing.T) {
	cases := []struct {
		submitted, stored string
		want              bool
	}{
		{"Paris", "Paris", true},
		{"  paris  ", "Paris", true},
		{"PARIS", " paris", true},
		{"", "", true},
		{"Lyon", "Paris", false},
		{"Par is", "Paris", false},
	}
	for _, c := range cases {
		if got := app.AnswersMatch(c.submitted, c.stored); got != c.want {
			t.Fatalf("AnswersMatch(%q, %q) = %v, want %v", c.submitted, c.stored, got, c.want)
		}
	}
}
