package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/funnytourism/tourism-api/internal/admin"
	"github.com/funnytourism/tourism-api/internal/agent"
	"github.com/funnytourism/tourism-api/internal/utils/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func sqliteEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", path)
	t.Setenv("JWT_SECRET", "cli-test")
	t.Setenv("LOG_LEVEL", "error")
	return path
}

func TestMigrateAndCreateAccounts(t *testing.T) {
	path := sqliteEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Database migrated.")

	out, err = run(t, "create-admin", "--email", "Ops@FunnyTourism.com", "--password", "long-enough")
	require.NoError(t, err)
	assert.Contains(t, out, "ops@funnytourism.com")

	_, err = run(t, "create-admin", "--email", "ops@funnytourism.com", "--password", "long-enough")
	assert.ErrorIs(t, err, admin.ErrEmailTaken)

	out, err = run(t, "create-agent", "--email", "desk@andes.test", "--company", "Andes", "--contact", "Rosa",
		"--phone", "+51 1", "--rate", "12.5")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated password: ")
	assert.Contains(t, out, "12.50% commission")

	database, err := db.OpenSQLite(path)
	require.NoError(t, err)
	a, err := agent.NewRepository(database).FindByEmail(context.Background(), "desk@andes.test")
	require.NoError(t, err)
	assert.Equal(t, agent.StatusActive, a.Status)
	assert.Equal(t, "cli", a.ApprovedBy)
	assert.NotNil(t, a.ApprovedAt)
}

func TestCreateAgentRejectsBadRate(t *testing.T) {
	sqliteEnv(t)
	_, err := run(t, "create-agent", "--email", "x@y.z", "--company", "c", "--contact", "c", "--phone", "1", "--rate", "150")
	assert.EqualError(t, err, "rate must be between 0 and 100")
}

func TestCreateAdminNeedsEmail(t *testing.T) {
	sqliteEnv(t)
	_, err := run(t, "create-admin", "--password", "long-enough")
	assert.Error(t, err)
}

func TestConfigErrorsSurface(t *testing.T) {
	sqliteEnv(t)
	t.Setenv("JWT_SECRET", "")
	_, err := run(t, "migrate")
	assert.EqualError(t, err, "JWT_SECRET is not set")
}
