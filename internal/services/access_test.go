package services

import (
	"context"
	"testing"

	"github.com/leaf-oneplus/todolist/internal/database"
	"github.com/leaf-oneplus/todolist/internal/models"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAccessService(t *testing.T) (*AccessService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewAccessService(db, NewHierarchyService(db)), mock
}

func TestAccessService_VisibleUserIDs_SuperAdmin(t *testing.T) {
	svc, mock := setupAccessService(t)

	mock.ExpectQuery(`SELECT id FROM users ORDER BY id`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).
			AddRow(int64(1)).AddRow(int64(2)).AddRow(int64(3)))

	ids, err := svc.VisibleUserIDs(context.Background(), &models.User{ID: 2, Role: models.RoleSuperAdmin})

	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessService_VisibleUserIDs_AdminIncludesSelfAndSubordinates(t *testing.T) {
	svc, mock := setupAccessService(t)

	// 5 <- 3 through the primary pointer, 3 <- 8 through the edge table.
	expectGraphLoad(mock, []edge{{3, 5}}, []edge{{8, 3}})

	ids, err := svc.VisibleUserIDs(context.Background(), &models.User{ID: 5, Role: models.RoleAdmin})

	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5, 8}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessService_VisibleUserIDs_AdminWithoutSubordinates(t *testing.T) {
	svc, mock := setupAccessService(t)

	expectGraphLoad(mock, nil, nil)

	ids, err := svc.VisibleUserIDs(context.Background(), &models.User{ID: 5, Role: models.RoleAdmin})

	require.NoError(t, err)
	assert.Equal(t, []int64{5}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessService_VisibleUserIDs_User(t *testing.T) {
	svc, mock := setupAccessService(t)

	ids, err := svc.VisibleUserIDs(context.Background(), &models.User{ID: 9, Role: models.RoleUser})

	require.NoError(t, err)
	assert.Equal(t, []int64{9}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessService_CanManageUsers(t *testing.T) {
	svc, _ := setupAccessService(t)

	assert.True(t, svc.CanManageUsers(&models.User{Role: models.RoleSuperAdmin}))
	assert.True(t, svc.CanManageUsers(&models.User{Role: models.RoleAdmin}))
	assert.False(t, svc.CanManageUsers(&models.User{Role: models.RoleUser}))
}

func TestAccessService_CanTargetUser(t *testing.T) {
	svc, _ := setupAccessService(t)

	admin := &models.User{Role: models.RoleAdmin}
	super := &models.User{Role: models.RoleSuperAdmin}
	user := &models.User{Role: models.RoleUser}

	assert.ErrorIs(t, svc.CanTargetUser(admin, super), ErrForbiddenTarget)
	assert.NoError(t, svc.CanTargetUser(admin, user))
	assert.NoError(t, svc.CanTargetUser(admin, admin))
	assert.NoError(t, svc.CanTargetUser(super, super))
}

func TestAccessService_CanGrantRole(t *testing.T) {
	svc, _ := setupAccessService(t)

	admin := &models.User{Role: models.RoleAdmin}
	super := &models.User{Role: models.RoleSuperAdmin}

	assert.ErrorIs(t, svc.CanGrantRole(admin, models.RoleSuperAdmin), ErrRoleEscalation)
	assert.NoError(t, svc.CanGrantRole(admin, models.RoleAdmin))
	assert.NoError(t, svc.CanGrantRole(admin, models.RoleUser))
	assert.NoError(t, svc.CanGrantRole(super, models.RoleSuperAdmin))
}
