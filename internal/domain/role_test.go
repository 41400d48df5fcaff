package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Can(t *testing.T) {
	all := []Permission{PermManageEvents, PermCheckIn, PermViewAllRegistrations, PermViewPayments, PermCancelRegistrations, PermViewUsers}
	for _, p := range all {
		assert.True(t, RoleAdmin.Can(p), "admin should have %s", p)
		assert.False(t, RoleStudent.Can(p), "student should not have %s", p)
		assert.False(t, Role("guest").Can(p))
	}
	assert.True(t, RoleStudent.Valid())
	assert.False(t, Role("guest").Valid())
}
