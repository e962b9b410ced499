package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/config"
	"saldo/internal/database"
	"saldo/internal/events"
	"saldo/internal/logger"
	"saldo/internal/middleware"
	"saldo/internal/models"
	"saldo/internal/services"
	"saldo/internal/testutil"
)

const testSecret = "cli-secret"

func init() {
	logger.Init("test")
}

// setupEnv points the configuration at a fresh sqlite file and returns its path.
func setupEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "saldo.db")
	t.Setenv("ENV", "test")
	t.Setenv("DB_DRIVER", config.DriverSQLite)
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("JWT_ISSUER", "")
	t.Setenv("REPORT_BUCKET", "")
	return path
}

func runSaldoctl(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// openTestDB opens the migrated sqlite file directly.
func openTestDB(t *testing.T, path string) *database.Manager {
	t.Helper()
	m, err := database.NewManager(&database.Config{Driver: config.DriverSQLite, SQLitePath: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestMigrate(t *testing.T) {
	setupEnv(t)

	out, err := runSaldoctl(t, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: none")

	out, err = runSaldoctl(t, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "applied")

	out, err = runSaldoctl(t, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: 1, Dirty: false")

	out, err = runSaldoctl(t, "migrate", "down")
	require.NoError(t, err)
	assert.Contains(t, out, "Rolled back 1")

	_, err = runSaldoctl(t, "migrate", "down", "zero")
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	setupEnv(t)
	userID := testutil.NewUserID()

	out, err := runSaldoctl(t, "token", "--user", userID, "--ttl", "1h")
	require.NoError(t, err)

	claims, err := middleware.ParseToken(testSecret, "", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)

	_, err = runSaldoctl(t, "token", "--user", "not-a-uuid")
	assert.Error(t, err)

	t.Setenv("ENV", "production")
	_, err = runSaldoctl(t, "token")
	assert.Error(t, err)
}

func TestReconcile(t *testing.T) {
	path := setupEnv(t)
	_, err := runSaldoctl(t, "migrate", "up")
	require.NoError(t, err)

	db := openTestDB(t, path).DB()
	userID := testutil.NewUserID()
	account, err := services.NewAccountService(db, nil).CreateAccount(context.Background(), userID, services.AccountInput{
		Name:           "Checking",
		InitialBalance: decimal.RequireFromString("250"),
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Account{}).Where("id = ?", account.ID).Update("balance", "10").Error)

	out, err := runSaldoctl(t, "reconcile", "--user", userID)
	require.NoError(t, err)
	assert.Contains(t, out, account.ID)
	assert.Contains(t, out, "240.00")

	out, err = runSaldoctl(t, "reconcile", "--apply")
	require.NoError(t, err)
	assert.Contains(t, out, "true")

	out, err = runSaldoctl(t, "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "All balances match.")
}

func TestReportExport(t *testing.T) {
	path := setupEnv(t)
	_, err := runSaldoctl(t, "migrate", "up")
	require.NoError(t, err)

	db := openTestDB(t, path).DB()
	userID := testutil.NewUserID()
	txSvc := services.NewTransactionService(db, services.NewAccountService(db, nil), events.NopPublisher{})
	category := "Housing"
	_, err = txSvc.CreateTransaction(context.Background(), userID, services.TransactionInput{
		Description: "Rent",
		Amount:      decimal.RequireFromString("-900"),
		Date:        testutil.Date(2024, 3, 1),
		Type:        models.TransactionTypeExpense,
		Category:    &category,
	})
	require.NoError(t, err)

	outFile := filepath.Join(t.TempDir(), "march.csv")
	_, err = runSaldoctl(t, "report", "export", "--user", userID,
		"--type", "expense", "--from", "2024-03-01", "--to", "2024-03-31", "-o", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Rent")
	assert.Contains(t, string(data), "Housing,-900.00,1")

	t.Run("invalid_dates", func(t *testing.T) {
		_, err := runSaldoctl(t, "report", "export", "--user", userID, "--from", "March", "--to", "2024-03-31")
		assert.Error(t, err)
	})

	t.Run("upload_requires_bucket", func(t *testing.T) {
		_, err := runSaldoctl(t, "report", "export", "--user", userID,
			"--from", "2024-03-01", "--to", "2024-03-31", "--upload")
		assert.ErrorContains(t, err, "REPORT_BUCKET")
	})
}
