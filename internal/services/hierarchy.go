package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/leaf-oneplus/todolist/internal/database"
	"github.com/leaf-oneplus/todolist/internal/models"
)

// HierarchyService answers reachability questions over the manager graph and
// admits supplementary manager edges. Two relations feed the same logical
// graph: the primary users.manager_id pointer and the user_managers table.
type HierarchyService struct {
	db *database.DB
}

func NewHierarchyService(db *database.DB) *HierarchyService {
	return &HierarchyService{db: db}
}

// querier is satisfied by both the pool and a transaction, so traversals can
// run inside the same transaction that mutates the graph.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SubordinatesOf returns every user transitively reporting to userID through
// either relation. The result never contains userID itself.
func (s *HierarchyService) SubordinatesOf(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	edges, err := loadSubordinateEdges(ctx, s.db.Pool)
	if err != nil {
		return nil, err
	}
	return subordinateClosure(edges, userID), nil
}

// WouldCreateCycle reports whether assigning managerID as a manager of userID
// would make some user their own transitive manager. It walks the union of
// both relations, so a cycle spanning the primary pointer and the edge table
// is rejected too.
func (s *HierarchyService) WouldCreateCycle(ctx context.Context, userID, managerID int64) (bool, error) {
	if userID == managerID {
		return true, nil
	}
	edges, err := loadSubordinateEdges(ctx, s.db.Pool)
	if err != nil {
		return false, err
	}
	_, cyclic := subordinateClosure(edges, userID)[managerID]
	return cyclic, nil
}

// AddManagerEdge inserts a supplementary manager assignment. The cycle check
// and the insert run in one transaction with both user rows locked, so two
// concurrent inserts cannot both pass the check before either commits.
func (s *HierarchyService) AddManagerEdge(ctx context.Context, userID, managerID int64) error {
	if userID == managerID {
		return ErrCyclicHierarchy
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	locked, err := lockUserRows(ctx, tx, userID, managerID)
	if err != nil {
		return fmt.Errorf("failed to lock user rows: %w", err)
	}
	if locked != 2 {
		return ErrUserNotFound
	}

	edges, err := loadSubordinateEdges(ctx, tx)
	if err != nil {
		return err
	}
	if _, cyclic := subordinateClosure(edges, userID)[managerID]; cyclic {
		return ErrCyclicHierarchy
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO user_managers (user_id, manager_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, manager_id) DO NOTHING
	`, userID, managerID)
	if err != nil {
		return fmt.Errorf("failed to insert manager edge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrManagerAlreadySet
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *HierarchyService) RemoveManagerEdge(ctx context.Context, userID, managerID int64) error {
	tag, err := s.db.Pool.Exec(ctx, `
		DELETE FROM user_managers
		WHERE user_id = $1 AND manager_id = $2
	`, userID, managerID)
	if err != nil {
		return fmt.Errorf("failed to delete manager edge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrManagerEdgeNotFound
	}
	return nil
}

// ManagersOf lists the supplementary managers assigned to a user.
func (s *HierarchyService) ManagersOf(ctx context.Context, userID int64) ([]models.ManagerRef, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT um.manager_id, u.username, u.role
		FROM user_managers um
		JOIN users u ON um.manager_id = u.id
		WHERE um.user_id = $1
		ORDER BY u.username
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	managers := []models.ManagerRef{}
	for rows.Next() {
		var m models.ManagerRef
		if err := rows.Scan(&m.ID, &m.Username, &m.Role); err != nil {
			return nil, err
		}
		managers = append(managers, m)
	}
	return managers, rows.Err()
}

func lockUserRows(ctx context.Context, tx pgx.Tx, ids ...int64) (int, error) {
	rows, err := tx.Query(ctx, `
		SELECT id FROM users WHERE id = $1 OR id = $2
		ORDER BY id
		FOR UPDATE
	`, ids[0], ids[1])
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		count++
	}
	return count, rows.Err()
}

// loadSubordinateEdges builds a manager -> direct subordinates adjacency map
// from both relations.
func loadSubordinateEdges(ctx context.Context, q querier) (map[int64][]int64, error) {
	edges := make(map[int64][]int64)

	rows, err := q.Query(ctx, `SELECT id, manager_id FROM users WHERE manager_id IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to load primary manager edges: %w", err)
	}
	if err := appendEdges(rows, edges); err != nil {
		return nil, err
	}

	rows, err = q.Query(ctx, `SELECT user_id, manager_id FROM user_managers`)
	if err != nil {
		return nil, fmt.Errorf("failed to load supplementary manager edges: %w", err)
	}
	if err := appendEdges(rows, edges); err != nil {
		return nil, err
	}

	return edges, nil
}

func appendEdges(rows pgx.Rows, edges map[int64][]int64) error {
	defer rows.Close()
	for rows.Next() {
		var userID, managerID int64
		if err := rows.Scan(&userID, &managerID); err != nil {
			return err
		}
		edges[managerID] = append(edges[managerID], userID)
	}
	return rows.Err()
}

// subordinateClosure is an iterative BFS with an explicit visited set. The
// visited check guarantees termination even when the stored data already
// contains a cycle.
func subordinateClosure(edges map[int64][]int64, root int64) map[int64]struct{} {
	visited := map[int64]struct{}{root: {}}
	result := make(map[int64]struct{})
	queue := []int64{root}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, sub := range edges[current] {
			if _, seen := visited[sub]; seen {
				continue
			}
			visited[sub] = struct{}{}
			result[sub] = struct{}{}
			queue = append(queue, sub)
		}
	}
	return result
}
