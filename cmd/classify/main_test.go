package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamcoop/numclass/numbers"
)

// execute runs the root command from an empty working directory so no
// config.yaml is picked up
func execute(t *testing.T, args ...string) ([]string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	var lines []string
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, err
}

func decodeResult(t *testing.T, line string) numbers.Result {
	t.Helper()
	var r numbers.Result
	require.NoError(t, json.Unmarshal([]byte(line), &r))
	return r
}

func TestClassifyArgs(t *testing.T) {
	lines, err := execute(t, "--", "28", "-17", "371")
	require.NoError(t, err)
	require.Len(t, lines, 3)

	r := decodeResult(t, lines[0])
	assert.Equal(t, float64(28), r.Number)
	assert.True(t, r.IsPerfect)
	assert.Equal(t, []numbers.Property{numbers.PropertyEven, numbers.PropertyPerfect}, r.Properties)
	assert.Equal(t, "28 is a perfect number.", r.FunFact)

	r = decodeResult(t, lines[1])
	assert.Equal(t, numbers.Negative, r.Sign)
	assert.Equal(t, 8, r.DigitSum)

	r = decodeResult(t, lines[2])
	assert.Equal(t, []numbers.Property{numbers.PropertyArmstrong, numbers.PropertyOdd}, r.Properties)
}

// TestClassifyInvalidArgument verifies bad input prints an error line,
// keeps going, and fails the run
func TestClassifyInvalidArgument(t *testing.T) {
	lines, err := execute(t, "abc", "7")
	require.ErrorIs(t, err, errInvalidInput)
	require.Len(t, lines, 2)

	var bad lineError
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &bad))
	assert.Equal(t, lineError{Error: "Invalid input - non-numeric value", Number: "abc"}, bad)

	r := decodeResult(t, lines[1])
	assert.True(t, r.IsPrime)
}

func TestClassifyRequiresArgs(t *testing.T) {
	_, err := execute(t)
	assert.Error(t, err)
}

func TestClassifyStandardPolicyFlag(t *testing.T) {
	lines, err := execute(t, "--policy", "STANDARD", "6")
	require.NoError(t, err)
	require.Len(t, lines, 1)

	r := decodeResult(t, lines[0])
	assert.Equal(t, []numbers.Property{numbers.PropertyArmstrong, numbers.PropertyEven, numbers.PropertyPerfect}, r.Properties)
}

func TestClassifyUnknownPolicyFlag(t *testing.T) {
	_, err := execute(t, "--policy", "lua", "6")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "policy.engine")
}

func TestClassifyFetch(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/42/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"42 is the answer.","number":42,"found":true,"type":"math"}`))
	}))
	defer api.Close()

	t.Setenv("NUMCLASS_FUNFACT__BASE_URL", api.URL)

	lines, err := execute(t, "--fetch", "42", "43")
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "42 is the answer.", decodeResult(t, lines[0]).FunFact)
	assert.Equal(t, "43 is a prime number.", decodeResult(t, lines[1]).FunFact, "404 falls back")
}
