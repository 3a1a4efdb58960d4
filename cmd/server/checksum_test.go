package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	goldenConsent = `{
  "consentId": "7a2d9b6c-0e0f-4f3e-9a43-1c2d3e4f5a6b",
  "consentStatus": "RECEIVED",
  "validUntil": "2026-12-31",
  "tppFrequencyPerDay": 4,
  "tppAccess": {"accounts": [{"iban": "DE52500105173911841934", "currency": "EUR"}]}
}`
	goldenChecksum = "003_%_N/lPkYZxgJx17WWTSipd3cmGNhynN4BM3YJ7rFcJ4W8bMjIqZsqROlTb+J7CAIMhBLgK4HhT1VyYd3VlvSlyKQ=="
)

func runChecksum(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := checksumCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestChecksumCalculate_FromStdin(t *testing.T) {
	out, err := runChecksum(t, goldenConsent, "calculate")
	require.NoError(t, err)
	assert.Equal(t, goldenChecksum, out)
}

func TestChecksumCalculate_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consent.json")
	require.NoError(t, os.WriteFile(path, []byte(goldenConsent), 0o600))

	out, err := runChecksum(t, "", "calculate", path)
	require.NoError(t, err)
	assert.Equal(t, goldenChecksum, out)
}

func TestChecksumVerify(t *testing.T) {
	out, err := runChecksum(t, goldenConsent, "verify", "--checksum", goldenChecksum)
	require.NoError(t, err)
	assert.Equal(t, "checksum matches", out)

	tampered := strings.Replace(goldenConsent, `"tppFrequencyPerDay": 4`, `"tppFrequencyPerDay": 5`, 1)
	_, err = runChecksum(t, tampered, "verify", "--checksum", goldenChecksum)
	assert.ErrorContains(t, err, "does not match")
}

func TestChecksumCalculate_InvalidInput(t *testing.T) {
	_, err := runChecksum(t, "{", "calculate")
	assert.ErrorContains(t, err, "failed to decode consent")

	_, err = runChecksum(t, `{"validUntil": "31.12.2026"}`, "calculate")
	assert.ErrorContains(t, err, "invalid validUntil")

	_, err = runChecksum(t, "", "calculate", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to open consent file")
}
