package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"quiz-web/internal/domain"
)

// GroupRepository is the bun-backed implementation of app.GroupRepository.
type GroupRepository struct {
	db *bun.DB
}

func NewGroupRepository(db *bun.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) FindByID(ctx context.Context, id int64) (*domain.Group, error) {
	group := new(domain.Group)
	err := r.db.NewSelect().Model(group).Where("g.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find group: %w", err)
	}
	return group, nil
}

func (r *GroupRepository) List(ctx context.Context) ([]*domain.Group, error) {
	var groups []*domain.Group
	if err := r.db.NewSelect().Model(&groups).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

func (r *GroupRepository) QuizIDs(ctx context.Context, groupID int64) ([]int64, error) {
	var ids []int64
	err := r.db.NewSelect().Model((*domain.GroupQuiz)(nil)).
		Column("quiz_id").
		Where("group_id = ?", groupID).
		Order("quiz_id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("group quiz ids: %w", err)
	}
	return ids, nil
}

func (r *GroupRepository) Create(ctx context.Context, group *domain.Group) error {
	if _, err := r.db.NewInsert().Model(group).Exec(ctx); err != nil {
		return mapError(err, "name", group.Name)
	}
	return nil
}

// Update renames the group and replaces its whole membership inside one
// transaction, so a failure never leaves half-applied membership behind.
func (r *GroupRepository) Update(ctx context.Context, group *domain.Group, name string, quizIDs []int64) error {
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().Model((*domain.Group)(nil)).
			Set("name = ?", name).
			Where("id = ?", group.ID).
			Exec(ctx)
		if err != nil {
			return mapError(err, "name", name)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrNotFound
		}

		if _, err := tx.NewDelete().Model((*domain.GroupQuiz)(nil)).
			Where("group_id = ?", group.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("detach quizzes: %w", err)
		}
		if len(quizIDs) > 0 {
			joins := make([]domain.GroupQuiz, 0, len(quizIDs))
			for _, quizID := range quizIDs {
				joins = append(joins, domain.GroupQuiz{GroupID: group.ID, QuizID: quizID})
			}
			if _, err := tx.NewInsert().Model(&joins).Exec(ctx); err != nil {
				return fmt.Errorf("attach quizzes: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	group.Name = name
	return nil
}

func (r *GroupRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().Model((*domain.Group)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
