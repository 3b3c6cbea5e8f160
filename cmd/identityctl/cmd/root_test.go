package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pilab-dev/shadow-identity/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--memory"}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "identityctl %s", strings.Join(args, " "))
	return out
}

func TestIdentityctl_UsersAndRoles(t *testing.T) {
	mustRun(t, "reset", "--yes")

	mustRun(t, "role", "create", "admin")
	out := mustRun(t, "user", "create", "alice", "--email", "alice@example.com", "--password", "s3cret!")
	var created userView
	require.NoError(t, yaml.Unmarshal([]byte(out), &created))
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.HasPassword)

	_, err := run(t, "user", "create", "ALICE")
	assert.ErrorContains(t, err, domain.CodeDuplicateKey)

	mustRun(t, "user", "add-role", "alice", "admin")
	assert.Equal(t, "- admin\n", mustRun(t, "user", "roles", "alice"))
	assert.Equal(t, "- alice\n", mustRun(t, "role", "members", "Admin"))

	_, err = run(t, "user", "add-role", "alice", "ghost")
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)

	mustRun(t, "user", "claim-add", "alice", "dept", "ops")
	assert.Equal(t, "- alice\n", mustRun(t, "user", "with-claim", "dept", "ops"))

	mustRun(t, "user", "login-add", "alice", "github", "42", "--display-name", "GitHub")
	out = mustRun(t, "user", "find-login", "github", "42")
	assert.Contains(t, out, "user_name: alice")

	mustRun(t, "role", "rename", "admin", "administrators")
	assert.Equal(t, "- administrators\n", mustRun(t, "user", "roles", "alice"))

	mustRun(t, "user", "remove-role", "alice", "administrators")
	assert.Equal(t, "[]\n", mustRun(t, "user", "roles", "alice"))

	mustRun(t, "user", "delete", "alice")
	_, err = run(t, "user", "get", "alice")
	assert.ErrorIs(t, err, errUserNotFound)
}

func TestIdentityctl_TwoFactor(t *testing.T) {
	mustRun(t, "reset", "--yes")
	mustRun(t, "user", "create", "bob")

	var codes []string
	require.NoError(t, yaml.Unmarshal([]byte(mustRun(t, "codes", "replace", "bob", "--count", "3")), &codes))
	require.Len(t, codes, 3)
	assert.Equal(t, "3\n", mustRun(t, "codes", "count", "bob"))

	mustRun(t, "codes", "redeem", "bob", codes[1])
	_, err := run(t, "codes", "redeem", "bob", codes[1])
	assert.Error(t, err, "a code is single use")
	assert.Equal(t, "2\n", mustRun(t, "codes", "count", "bob"))

	uri := strings.TrimSpace(mustRun(t, "authenticator", "reset", "bob"))
	key, err := otp.NewKeyFromURL(uri)
	require.NoError(t, err)
	code, err := totp.GenerateCode(key.Secret(), time.Now())
	require.NoError(t, err)
	mustRun(t, "authenticator", "verify", "bob", code)
}

func TestIdentityctl_ResetNeedsConfirmation(t *testing.T) {
	_, err := run(t, "reset")
	assert.Error(t, err)
}
