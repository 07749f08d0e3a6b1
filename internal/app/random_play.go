package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"quiz-web/internal/domain"
)

// RandomPlayEngine drives a random-play run through a group's quizzes. It is
// a set of pure transitions over an explicit GroupPlayState value; the caller
// persists the returned state after each request.
//
// Per (session, group) the run moves between three situations: no pending
// quiz (LastQuizID == 0), awaiting an answer for a pending quiz, and done
// (nothing left to present). A wrong answer ends the run and loses all
// progress for that group.
type RandomPlayEngine struct {
	source PlayQuizSource
	rnd    *rand.Rand
}

func NewRandomPlayEngine(source PlayQuizSource) *RandomPlayEngine {
	return NewRandomPlayEngineWithRand(source, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewRandomPlayEngineWithRand allows a deterministic source in tests.
func NewRandomPlayEngineWithRand(source PlayQuizSource, rnd *rand.Rand) *RandomPlayEngine {
	return &RandomPlayEngine{source: source, rnd: rnd}
}

// PresentNext selects the quiz to show for a group. A pending quiz is
// re-presented as is, so a page refresh neither skips it nor draws a new
// one. Otherwise it picks uniformly at random among the group's quizzes not
// yet resolved; membership is re-queried on every call, so quizzes edited
// out of the group mid-run simply stop being candidates. A nil quiz means
// the run is complete and the caller must discard the state.
func (e *RandomPlayEngine) PresentNext(ctx context.Context, groupID int64, state domain.GroupPlayState) (domain.GroupPlayState, *domain.Quiz, int, error) {
	score := state.Score()

	if state.LastQuizID != 0 {
		quiz, err := e.source.QuizByID(ctx, state.LastQuizID)
		if err == nil {
			return state, quiz, score, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return state, nil, score, fmt.Errorf("refetch pending quiz: %w", err)
		}
		// The pending quiz was deleted mid-run; fall through to a fresh pick.
		state.LastQuizID = 0
	}

	remaining, err := e.source.CountRemaining(ctx, groupID, state.Resolved)
	if err != nil {
		return state, nil, score, fmt.Errorf("count remaining: %w", err)
	}
	if remaining <= 0 {
		return state, nil, score, nil
	}

	quiz, err := e.source.PickRemaining(ctx, groupID, state.Resolved, e.rnd.Intn(remaining))
	if err != nil {
		return state, nil, score, fmt.Errorf("pick quiz: %w", err)
	}
	state.LastQuizID = quiz.ID
	return state, quiz, score, nil
}

// CheckAnswer evaluates a submitted answer against the given quiz.
//
// A correct answer clears the pending quiz and marks it resolved, once,
// however often it is re-answered; the returned score is the updated total.
// A wrong answer reports discard=true: the caller must drop the whole play
// state for this group, and the reported score is the pre-discard value so
// the player sees what they had.
func (e *RandomPlayEngine) CheckAnswer(state domain.GroupPlayState, quiz *domain.Quiz, submitted string) (next domain.GroupPlayState, correct bool, score int, discard bool) {
	if !AnswersMatch(submitted, quiz.Answer) {
		return state, false, state.Score(), true
	}

	state.LastQuizID = 0
	if !state.HasResolved(quiz.ID) {
		state.Resolved = append(state.Resolved, quiz.ID)
	}
	return state, true, state.Score(), false
}
