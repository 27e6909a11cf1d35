package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_TableIsExhaustive(t *testing.T) {
	roles := []Role{RoleVendor, RoleAdmin, RoleAffiliate}
	for _, a := range Actions {
		rule, ok := Transition(a)
		require.True(t, ok)
		for _, role := range roles {
			for _, st := range Statuses {
				got, err := Check(a, role, st)
				switch {
				case role != rule.Actor:
					assert.ErrorIs(t, err, ErrUnauthorized, "%s by %s from %s", a, role, st)
				case st != rule.From:
					assert.ErrorIs(t, err, ErrInvalidTransition, "%s by %s from %s", a, role, st)
				default:
					require.NoError(t, err)
					assert.True(t, got.To.Valid())
					assert.Equal(t, rule.To, got.To)
				}
			}
		}
	}
}

func TestCheck_UnknownActionAndRole(t *testing.T) {
	_, err := Check(Action("delete"), RoleAdmin, StatusPending)
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = Check(ActionApprove, Role("consumer"), StatusPending)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTerminalStatesHaveNoActions(t *testing.T) {
	for _, role := range []Role{RoleVendor, RoleAdmin, RoleAffiliate} {
		assert.Empty(t, AllowedActions(StatusRejected, role))
		assert.Empty(t, AllowedActions(StatusTakenDown, role))
	}
}

func TestAllowedActions(t *testing.T) {
	assert.Equal(t, []Action{ActionApprove, ActionReject}, AllowedActions(StatusPending, RoleAdmin))
	assert.Equal(t, []Action{ActionApproveTakedown, ActionRejectTakedown}, AllowedActions(StatusPendingTakedown, RoleAdmin))
	assert.Equal(t, []Action{ActionRequestTakedown}, AllowedActions(StatusApproved, RoleVendor))
	assert.Empty(t, AllowedActions(StatusApproved, RoleAffiliate))
}

func TestProductStatusValid(t *testing.T) {
	assert.True(t, StatusPendingTakedown.Valid())
	assert.False(t, ProductStatus("archived").Valid())
	assert.False(t, ProductStatus("").Valid())
}

func TestPrimaryImage(t *testing.T) {
	assert.Equal(t, "", Product{}.PrimaryImage())
	assert.Equal(t, "a.png", Product{Images: []string{"a.png", "b.png"}}.PrimaryImage())
}
