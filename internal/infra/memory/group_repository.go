package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-web/internal/domain"
)

// GroupRepository is an in-memory implementation of app.GroupRepository.
type GroupRepository struct {
	mu      sync.RWMutex
	nextID  int64
	groups  map[int64]*domain.Group
	members map[int64][]int64 // group id -> member quiz ids, insertion order
}

func NewGroupRepository() *GroupRepository {
	return &GroupRepository{
		nextID:  1,
		groups:  make(map[int64]*domain.Group),
		members: make(map[int64][]int64),
	}
}

func (r *GroupRepository) FindByID(_ context.Context, id int64) (*domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	group, ok := r.groups[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *group
	return &clone, nil
}

func (r *GroupRepository) List(_ context.Context) ([]*domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*domain.Group, 0, len(r.groups))
	for _, group := range r.groups {
		clone := *group
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (r *GroupRepository) QuizIDs(_ context.Context, groupID int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.groups[groupID]; !ok {
		return nil, domain.ErrNotFound
	}
	ids := make([]int64, len(r.members[groupID]))
	copy(ids, r.members[groupID])
	return ids, nil
}

func (r *GroupRepository) Create(_ context.Context, group *domain.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.groups {
		if existing.Name == group.Name {
			return &domain.DuplicateError{Field: "name", Value: group.Name}
		}
	}
	group.ID = r.nextID
	r.nextID++
	clone := *group
	r.groups[group.ID] = &clone
	return nil
}

func (r *GroupRepository) Update(_ context.Context, group *domain.Group, name string, quizIDs []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.groups[group.ID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, other := range r.groups {
		if other.ID != group.ID && other.Name == name {
			return &domain.DuplicateError{Field: "name", Value: name}
		}
	}
	existing.Name = name
	group.Name = name
	members := make([]int64, len(quizIDs))
	copy(members, quizIDs)
	r.members[group.ID] = members
	return nil
}

func (r *GroupRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.groups, id)
	delete(r.members, id)
	return nil
}

// Detach removes a quiz from every group, mirroring the cascade a relational
// join table would apply on quiz deletion.
func (r *GroupRepository) Detach(quizID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for groupID, ids := range r.members {
		kept := ids[:0]
		for _, id := range ids {
			if id != quizID {
				kept = append(kept, id)
			}
		}
		r.members[groupID] = kept
	}
}
