package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/leaf-oneplus/todolist/internal/database"
	"github.com/leaf-oneplus/todolist/internal/models"
)

// AccessService computes the visible-user set for an actor and holds the role
// gates shared by the user and todo services. Every todo query is scoped
// through VisibleUserIDs; there is no unscoped path.
type AccessService struct {
	db        *database.DB
	hierarchy *HierarchyService
}

func NewAccessService(db *database.DB, hierarchy *HierarchyService) *AccessService {
	return &AccessService{db: db, hierarchy: hierarchy}
}

// VisibleUserIDs returns the ids whose todos the actor may see, sorted
// ascending. Super admins see everyone, admins see themselves plus their
// transitive subordinates, users see only themselves.
func (s *AccessService) VisibleUserIDs(ctx context.Context, actor *models.User) ([]int64, error) {
	switch actor.Role {
	case models.RoleSuperAdmin:
		rows, err := s.db.Pool.Query(ctx, `SELECT id FROM users ORDER BY id`)
		if err != nil {
			return nil, fmt.Errorf("failed to list user ids: %w", err)
		}
		defer rows.Close()

		var ids []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, rows.Err()

	case models.RoleAdmin:
		subs, err := s.hierarchy.SubordinatesOf(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		ids := make([]int64, 0, len(subs)+1)
		ids = append(ids, actor.ID)
		for id := range subs {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		return ids, nil

	default:
		return []int64{actor.ID}, nil
	}
}

// CanManageUsers reports whether the actor may create, update, or delete
// users and manager assignments.
func (s *AccessService) CanManageUsers(actor *models.User) bool {
	return actor.IsManager()
}

// CanTargetUser enforces that admins never act on super admin accounts.
func (s *AccessService) CanTargetUser(actor, target *models.User) error {
	if actor.Role == models.RoleAdmin && target.Role == models.RoleSuperAdmin {
		return ErrForbiddenTarget
	}
	return nil
}

// CanGrantRole enforces that only super admins hand out the super admin role.
func (s *AccessService) CanGrantRole(actor *models.User, role string) error {
	if actor.Role == models.RoleAdmin && role == models.RoleSuperAdmin {
		return ErrRoleEscalation
	}
	return nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
