package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shiftline-dev/shiftline/internal/models"
	"github.com/shiftline-dev/shiftline/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.createUser(t, "Alice", "a@x.com", models.RoleOwner, true)
	env.createUser(t, "Bob", "b@x.com", models.RoleEmployee, true)

	w := env.do(t, http.MethodGet, "/users/all", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var users []types.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 2)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := env.createUser(t, "Alice", "a@x.com", models.RoleEmployee, true)
	token := env.token(t, user)

	w := env.do(t, http.MethodPut, "/users/me", token, map[string]string{"name": "Alice Updated"})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, env.DB.First(&user, "id = ?", user.ID).Error)
	assert.Equal(t, "Alice Updated", user.Name)
}

func TestUpdateProfile_NoFields(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := env.createUser(t, "Alice", "a@x.com", models.RoleEmployee, true)

	w := env.do(t, http.MethodPut, "/users/me", env.token(t, user), map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProfile_EmailConflict(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := env.createUser(t, "Alice", "a@x.com", models.RoleEmployee, true)
	env.createUser(t, "Bob", "b@x.com", models.RoleEmployee, true)

	w := env.do(t, http.MethodPut, "/users/me", env.token(t, user), map[string]string{"email": "b@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProfile_Unauthenticated(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	w := env.do(t, http.MethodPut, "/users/me", "", map[string]string{"name": "X"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminUpdateUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	owner := env.createUser(t, "Olive", "o@x.com", models.RoleOwner, true)
	target := env.createUser(t, "Bob", "b@x.com", models.RoleEmployee, true)

	w := env.do(t, http.MethodPut, "/admin/user/"+target.ID, env.token(t, owner), map[string]interface{}{
		"role":       "MANAGER",
		"hourlyWage": 25.5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, env.DB.First(&target, "id = ?", target.ID).Error)
	assert.Equal(t, models.RoleManager, target.Role)
	require.NotNil(t, target.HourlyWage)
	assert.InDelta(t, 25.5, *target.HourlyWage, 0.001)
}

func TestAdminUpdateUser_ForbiddenForNonOwner(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	manager := env.createUser(t, "Mia", "m@x.com", models.RoleManager, true)
	target := env.createUser(t, "Bob", "b@x.com", models.RoleEmployee, true)

	w := env.do(t, http.MethodPut, "/admin/user/"+target.ID, env.token(t, manager), map[string]string{"name": "X"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminUpdateUser_NotFoundBeforeForbidden(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	employee := env.createUser(t, "Eve", "e@x.com", models.RoleEmployee, true)

	// A missing target yields 404 even for a caller who would be
	// forbidden anyway.
	w := env.do(t, http.MethodPut, "/admin/user/missing-id", env.token(t, employee), map[string]string{"name": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminUpdateUser_InvalidRole(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	owner := env.createUser(t, "Olive", "o@x.com", models.RoleOwner, true)
	target := env.createUser(t, "Bob", "b@x.com", models.RoleEmployee, true)

	w := env.do(t, http.MethodPut, "/admin/user/"+target.ID, env.token(t, owner), map[string]string{"role": "SUPREME_LEADER"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	owner := env.createUser(t, "Olive", "o@x.com", models.RoleOwner, true)
	target := env.createUser(t, "Bob", "b@x.com", models.RoleEmployee, true)

	require.NoError(t, env.DB.Create(&models.VerificationToken{
		Identifier: target.Email,
		Token:      "123456",
		Expires:    mustTime(t, "2030-01-01T00:00:00Z"),
	}).Error)

	w := env.do(t, http.MethodDelete, "/users/delete/"+target.ID, env.token(t, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.User{}).Where("id = ?", target.ID).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, env.DB.Model(&models.VerificationToken{}).Where("identifier = ?", target.Email).Count(&count).Error)
	assert.Zero(t, count, "the user's verification tokens must be deleted with them")
}

func TestDeleteUser_ForbiddenForManager(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	manager := env.createUser(t, "Mia", "m@x.com", models.RoleManager, true)
	target := env.createUser(t, "Bob", "b@x.com", models.RoleEmployee, true)

	w := env.do(t, http.MethodDelete, "/users/delete/"+target.ID, env.token(t, manager), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteUser_NotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	owner := env.createUser(t, "Olive", "o@x.com", models.RoleOwner, true)

	w := env.do(t, http.MethodDelete, "/users/delete/missing-id", env.token(t, owner), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteUser_Unauthenticated(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	target := env.createUser(t, "Bob", "b@x.com", models.RoleEmployee, true)

	w := env.do(t, http.MethodDelete, "/users/delete/"+target.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
