package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/perm"
	"github.com/trezcool/lmsadmin/core/user"
	"github.com/trezcool/lmsadmin/testutil"
)

func newUser(pwd string) user.NewUser {
	return user.NewUser{
		FirstName:       "Mary",
		LastName:        "Jackson",
		Email:           " Mary@School.test",
		Role:            "Teacher",
		Password:        pwd,
		PasswordConfirm: pwd,
	}
}

func TestService_Create(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := env.Services.Users
	ctx := context.Background()

	tests := []struct {
		name    string
		pwd     string
		wantErr string
	}{
		{name: "too short", pwd: "Ab1!", wantErr: "password must contain at least 8 characters"},
		{name: "whitespace", pwd: "Abcd 1234!", wantErr: "password must not contain whitespace"},
		{name: "numeric", pwd: "1234567890", wantErr: "password cannot be entirely numeric"},
		{name: "not complex", pwd: "abcdefgh1", wantErr: "password must contain at least 1 uppercase character"},
		{name: "similar to last name", pwd: "Jackson1!", wantErr: "password cannot be similar to user attributes"},
		{name: "valid", pwd: "Wind-Tunnel-42"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			usr, err := svc.Create(ctx, newUser(tc.pwd))
			if tc.wantErr != "" {
				require.True(t, core.IsValidation(err), "got %v", err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "mary@school.test", usr.Email)
			assert.Equal(t, perm.RoleTeacher, usr.Role)
			assert.True(t, usr.IsActive)
			assert.NoError(t, usr.CheckPassword(tc.pwd))
		})
	}

	_, err := svc.Create(ctx, newUser("Wind-Tunnel-42"))
	require.True(t, core.IsValidation(err))
	assert.Equal(t, user.ErrEmailExists.Error(), err.Error())
}

func TestService_Authenticate(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := env.Services.Users
	ctx := context.Background()
	active := testutil.CreateUser(t, env.Stores.Users, "Ada", "L", "ada@school.test", "Analytical-1", perm.RoleStudent, "", true)
	testutil.CreateUser(t, env.Stores.Users, "Old", "Timer", "old@school.test", "Analytical-1", perm.RoleTeacher, "", false)

	usr, err := svc.Authenticate(ctx, " ADA@school.test", "Analytical-1")
	require.NoError(t, err)
	assert.Equal(t, active.ID, usr.ID)
	assert.False(t, usr.LastLogin.IsZero())

	_, err = svc.Authenticate(ctx, "ada@school.test", "wrong")
	assert.Equal(t, user.ErrAuthenticationFailed, err)
	_, err = svc.Authenticate(ctx, "nobody@school.test", "Analytical-1")
	assert.Equal(t, user.ErrAuthenticationFailed, err)
	_, err = svc.Authenticate(ctx, "old@school.test", "Analytical-1")
	assert.Equal(t, user.ErrAccountDeactivated, err)
}

func TestService_PasswordReset(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := env.Services.Users
	ctx := context.Background()
	usr := testutil.CreateUser(t, env.Stores.Users, "Ada", "L", "ada@school.test", "Analytical-1", perm.RoleStudent, "", true)

	require.NoError(t, svc.RequestPasswordReset(ctx, "ada@school.test"))
	sent := env.Mail.SentMessages()
	require.Len(t, sent, 1)
	data := sent[0].TemplateData.(map[string]string)
	assert.Equal(t, user.EncodeUID(usr), data["UID"])

	err := svc.ResetPassword(ctx, user.ResetUserPassword{
		Token: "1-bad", UID: data["UID"], Password: "Difference-Engine-2", PasswordConfirm: "Difference-Engine-2",
	})
	assert.True(t, core.IsValidation(err))

	require.NoError(t, svc.ResetPassword(ctx, user.ResetUserPassword{
		Token: data["Token"], UID: data["UID"], Password: "Difference-Engine-2", PasswordConfirm: "Difference-Engine-2",
	}))
	_, err = svc.Authenticate(ctx, "ada@school.test", "Difference-Engine-2")
	assert.NoError(t, err)

	assert.Equal(t, user.ErrNotFound, svc.RequestPasswordReset(ctx, "nobody@school.test"))
}

func TestService_Upsert(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := env.Services.Users
	ctx := context.Background()

	created, err := svc.Upsert(ctx, user.User{FirstName: "Root", Email: "root@school.test", Role: perm.RoleAdmin}, "pwd")
	require.NoError(t, err)

	updated, err := svc.Upsert(ctx, user.User{FirstName: "Admin", Email: "root@school.test", Role: perm.RoleAdmin}, "pwd2")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Admin", updated.FirstName)
	assert.NoError(t, updated.CheckPassword("pwd2"))

	users, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
