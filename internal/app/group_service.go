package app

import (
	"context"
	"fmt"
	"strings"

	"quiz-web/internal/domain"
)

// GroupService contains the group catalog use cases.
type GroupService struct {
	groups GroupRepository
}

func NewGroupService(groups GroupRepository) *GroupService {
	return &GroupService{groups: groups}
}

// Index returns every group.
func (s *GroupService) Index(ctx context.Context) ([]*domain.Group, error) {
	return s.groups.List(ctx)
}

// Get loads a group by id.
func (s *GroupService) Get(ctx context.Context, id int64) (*domain.Group, error) {
	return s.groups.FindByID(ctx, id)
}

// QuizIDs returns the ids of the group's current members.
func (s *GroupService) QuizIDs(ctx context.Context, groupID int64) ([]int64, error) {
	return s.groups.QuizIDs(ctx, groupID)
}

// Create stores a new empty group.
func (s *GroupService) Create(ctx context.Context, name string) (*domain.Group, error) {
	if err := validateGroupName(name); err != nil {
		return nil, err
	}
	group := &domain.Group{Name: strings.TrimSpace(name)}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Update renames the group and replaces its whole membership with quizIDs.
// Members missing from quizIDs are detached and new ones attached; no quiz
// or group row is deleted as a side effect.
func (s *GroupService) Update(ctx context.Context, group *domain.Group, name string, quizIDs []int64) error {
	if err := validateGroupName(name); err != nil {
		return err
	}
	if err := s.groups.Update(ctx, group, strings.TrimSpace(name), quizIDs); err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	return nil
}

// Delete removes a group and its membership rows.
func (s *GroupService) Delete(ctx context.Context, id int64) error {
	return s.groups.Delete(ctx, id)
}

func validateGroupName(name string) error {
	if strings.TrimSpace(name) == "" {
		verr := &domain.ValidationError{}
		return verr.Add("name", "Name must not be empty")
	}
	return nil
}
