package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
)

// Flags keep their values between executions of the shared root command, so
// every case spells out the flags it depends on.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestScheduleCommand(t *testing.T) {
	t.Run("debtor term table", func(t *testing.T) {
		out, err := runCLI(t, "schedule",
			"--valor", "9000", "--prazos", "30/60/90",
			"--data-operacao", "2024-01-10", "--data-nf", "2024-01-05",
			"--taxa", "3", "--valor-fixo", "0", "--prazo-sacado=true", "--peso-fixo=false", "--json=false")
		require.NoError(t, err)

		assert.Contains(t, out, "2024-02-04")
		assert.Contains(t, out, "2024-04-04")
		assert.Contains(t, out, "270.00")
		assert.Contains(t, out, "540.00")
		assert.Contains(t, out, "8460.00")
	})

	t.Run("weighted flat fee as json", func(t *testing.T) {
		out, err := runCLI(t, "schedule",
			"--valor", "3000", "--prazos", "30",
			"--data-operacao", "2024-01-10", "--data-nf", "2024-01-05",
			"--taxa", "0", "--valor-fixo", "50", "--peso-fixo=true", "--peso", "2.5",
			"--prazo-sacado=false", "--json=true")
		require.NoError(t, err)

		var response domain.ComputeScheduleResponse
		require.NoError(t, json.Unmarshal([]byte(out), &response))
		assert.Equal(t, "125", response.TotalInterest.String())
		assert.Equal(t, "2875", response.NetValue.String())
		require.Len(t, response.Installments, 1)
		assert.Equal(t, "2024-02-04", response.Installments[0].DueDate.String())
	})

	t.Run("invalid date", func(t *testing.T) {
		_, err := runCLI(t, "schedule",
			"--valor", "1000", "--prazos", "30",
			"--data-operacao", "10/01/2024", "--data-nf", "2024-01-05",
			"--taxa", "3", "--valor-fixo", "0", "--json=false")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--data-operacao")
	})

	t.Run("invalid offsets", func(t *testing.T) {
		_, err := runCLI(t, "schedule",
			"--valor", "1000", "--prazos", "30/abc",
			"--data-operacao", "2024-01-10", "--data-nf", "2024-01-05",
			"--taxa", "3", "--valor-fixo", "0", "--json=false")
		assert.Error(t, err)
	})
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	_, err := runCLI(t, "migrate", "--database-url", "", "--file", "../../scripts/init.sql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
