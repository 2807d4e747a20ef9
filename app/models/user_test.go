package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasActivePremium(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name string
		user User
		want bool
	}{
		{"premium with future expiry", User{PlanType: PlanPremium, PremiumExpiresAt: &future}, true},
		{"premium with lapsed expiry", User{PlanType: PlanPremium, PremiumExpiresAt: &past}, false},
		{"premium without expiry", User{PlanType: PlanPremium}, false},
		{"free user", User{PlanType: PlanFree, PremiumExpiresAt: &future}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.HasActivePremium(now))
		})
	}
}

func TestCreateUserDefaults(t *testing.T) {
	u, err := CreateUser("taro", "taro@example.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, ROLE_USER, u.Role)
	assert.Equal(t, STATUS_ACTIVE, u.Status)
	assert.Equal(t, PlanFree, u.PlanType)
	assert.Nil(t, u.PremiumExpiresAt)
	assert.True(t, u.CheckPassword("secret123"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestUserRoleHelpers(t *testing.T) {
	admin := User{Role: ROLE_ADMIN, Status: STATUS_ACTIVE}
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.IsActive())

	disabled := User{Role: ROLE_USER, Status: STATUS_DISABLED}
	assert.False(t, disabled.IsAdmin())
	assert.False(t, disabled.IsActive())
}
