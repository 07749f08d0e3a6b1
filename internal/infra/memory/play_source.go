package memory

import (
	"context"
	"sort"

	"quiz-web/internal/domain"
)

// PlaySource implements app.PlayQuizSource over the in-memory repositories.
// Membership is re-read on every call, matching the relational source.
type PlaySource struct {
	quizzes *QuizRepository
	groups  *GroupRepository
}

func NewPlaySource(quizzes *QuizRepository, groups *GroupRepository) *PlaySource {
	return &PlaySource{quizzes: quizzes, groups: groups}
}

func (p *PlaySource) QuizByID(ctx context.Context, id int64) (*domain.Quiz, error) {
	return p.quizzes.FindByID(ctx, id)
}

func (p *PlaySource) CountRemaining(ctx context.Context, groupID int64, resolved []int64) (int, error) {
	remaining, err := p.remaining(ctx, groupID, resolved)
	if err != nil {
		return 0, err
	}
	return len(remaining), nil
}

func (p *PlaySource) PickRemaining(ctx context.Context, groupID int64, resolved []int64, offset int) (*domain.Quiz, error) {
	remaining, err := p.remaining(ctx, groupID, resolved)
	if err != nil {
		return nil, err
	}
	if offset < 0 || offset >= len(remaining) {
		return nil, domain.ErrNotFound
	}
	return p.quizzes.FindByID(ctx, remaining[offset])
}

// remaining returns the group's member quiz ids not in resolved, in stable
// ascending id order.
func (p *PlaySource) remaining(ctx context.Context, groupID int64, resolved []int64) ([]int64, error) {
	memberIDs, err := p.groups.QuizIDs(ctx, groupID)
	if err != nil {
		return nil, err
	}
	excluded := make(map[int64]struct{}, len(resolved))
	for _, id := range resolved {
		excluded[id] = struct{}{}
	}
	remaining := make([]int64, 0, len(memberIDs))
	for _, id := range memberIDs {
		if _, ok := excluded[id]; ok {
			continue
		}
		// A member whose quiz row is gone is not a candidate.
		if _, err := p.quizzes.FindByID(ctx, id); err != nil {
			continue
		}
		remaining = append(remaining, id)
	}
	sort.Slice(remaining, func(i, j int) bool { return remaining[i] < remaining[j] })
	return remaining, nil
}
