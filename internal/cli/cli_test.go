package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dexsolver/dexsolver/internal/config"
	"github.com/dexsolver/dexsolver/internal/logging"
	"github.com/stretchr/testify/require"
)

const sampleInstanceJSON = `{
	"accounts": {
		"acct1": {"B": "1000000", "F": "0"},
		"acct2": {"S": "1000000", "F": "0"},
		"acct3": {"F": "1000000000", "B": "0"}
	},
	"orders": [
		{"accountID": "acct1", "buyToken": "S", "sellToken": "B", "buyAmount": "11000", "sellAmount": "11109"},
		{"accountID": "acct2", "buyToken": "B", "sellToken": "S", "buyAmount": "11100", "sellAmount": "11132"},
		{"accountID": "acct3", "buyToken": "B", "sellToken": "F", "buyAmount": "1000000000", "sellAmount": "10000000000"}
	],
	"fee": {"token": "F", "ratio": "0.001"}
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func resetGlobals(t *testing.T) {
	t.Helper()
	solverCfg = config.Defaults()
	logger = logging.New(logging.Options{Level: "error"})
	verbose = false
	xrateFlag = ""
	solutionPath = ""
}

func TestTokenPairCommandProducesSolution(t *testing.T) {
	resetGlobals(t)

	instancePath = writeTemp(t, "instance.json", sampleInstanceJSON)
	solutionPath = filepath.Join(t.TempDir(), "solution.json")

	err := tokenPairCmd.RunE(tokenPairCmd, []string{"B", "S"})
	require.NoError(t, err)

	raw, err := os.ReadFile(solutionPath)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Contains(t, out, "prices")
	require.Contains(t, out, "objVals")
}

func TestTokenPairCommandHonorsPresetXrate(t *testing.T) {
	resetGlobals(t)

	instancePath = writeTemp(t, "instance.json", sampleInstanceJSON)
	solutionPath = filepath.Join(t.TempDir(), "solution.json")
	xrateFlag = "10/11"

	err := tokenPairCmd.RunE(tokenPairCmd, []string{"B", "S"})
	require.NoError(t, err)

	raw, err := os.ReadFile(solutionPath)
	require.NoError(t, err)
	require.True(t, bytes.Contains(raw, []byte("objVals")))
}

func TestTokenPairCommandRejectsMalformedXrate(t *testing.T) {
	resetGlobals(t)

	instancePath = writeTemp(t, "instance.json", sampleInstanceJSON)
	solutionPath = filepath.Join(t.TempDir(), "solution.json")
	xrateFlag = "not-a-fraction"

	err := tokenPairCmd.RunE(tokenPairCmd, []string{"B", "S"})
	require.Error(t, err)
}

func TestBestTokenPairCommandProducesSolution(t *testing.T) {
	resetGlobals(t)

	instancePath = writeTemp(t, "instance.json", sampleInstanceJSON)
	solutionPath = filepath.Join(t.TempDir(), "solution.json")

	err := bestTokenPairCmd.RunE(bestTokenPairCmd, nil)
	require.NoError(t, err)

	raw, err := os.ReadFile(solutionPath)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Contains(t, out, "orders")
}
