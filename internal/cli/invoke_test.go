package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/aspectswrl/internal/builtin"
)

func TestInvokeCommand_Check(t *testing.T) {
	db := loadedDB(t)

	out, err := execute(t, "invoke", "opa", "class:Trust", "prop:knows", "ind:alice", "ind:bob", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "opa: true\n", out)

	out, err = execute(t, "invoke", "opa", "class:Trust", "prop:knows", "ind:bob", "ind:carol", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "opa: false\n", out)
}

func TestInvokeCommand_Enumerate(t *testing.T) {
	db := loadedDB(t)

	out, err := execute(t, "invoke", "opa", "?C", "prop:knows", "ind:alice", "ind:bob", "--db", db, "--format", "json")
	require.NoError(t, err)

	result, cliErr := decode[InvokeResult](t, out)
	require.Nil(t, cliErr)
	assert.True(t, result.Result)
	assert.Equal(t, "cli", result.Rule)
	assert.Empty(t, result.Bindings)
	assert.Equal(t, map[string][]string{"C": {"class:Trust", "class:Work"}}, result.Multi)
}

func TestInvokeCommand_EnumerateText(t *testing.T) {
	db := loadedDB(t)

	out, err := execute(t, "invoke", "opa", "?C", "prop:knows", "?X", "ind:bob", "--bind", "X=ind:alice", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "opa: true\n  ?X = ind:alice\n  ?C in {class:Trust, class:Work}\n", out)
}

func TestInvokeCommand_CreateThenList(t *testing.T) {
	db := loadedDB(t)

	out, err := execute(t, "invoke", "createOPA", "prop:knows", "ind:bob", "ind:alice", "?A", "--db", db, "--ids", "ulid", "--format", "json")
	require.NoError(t, err)

	result, _ := decode[InvokeResult](t, out)
	require.True(t, result.Result)
	aspect := result.Bindings["A"]
	require.True(t, strings.HasPrefix(aspect, "class:"), aspect)

	out, err = execute(t, "aspects", "knows", "bob", "alice", "--db", db, "--format", "json")
	require.NoError(t, err)

	listed, _ := decode[AspectsResult](t, out)
	assert.Equal(t, "ObjectPropertyAssertion(knows bob alice)", listed.Axiom)
	assert.Equal(t, []string{strings.TrimPrefix(aspect, "class:")}, listed.Aspects)
}

func TestInvokeCommand_Metrics(t *testing.T) {
	db := loadedDB(t)

	out, err := execute(t, "invoke", "temporal", "?T", "prop:after", "ind:noon", "lit:true^^xsd:boolean", "--db", db, "--metrics")
	require.NoError(t, err)
	assert.Contains(t, out, "temporal: true")
	assert.Contains(t, out, "?T = class:")
	assert.Contains(t, out, "aspectswrl_builtin_invocations_total")
	assert.Contains(t, out, "aspectswrl_entities_synthesized_total")
}

func TestInvokeCommand_BuiltInError(t *testing.T) {
	db := loadedDB(t)

	out, err := execute(t, "invoke", "opa", "?A", "--db", db, "--rule", "r1", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, cliErr := decode[InvokeResult](t, out)
	require.NotNil(t, cliErr)
	assert.Equal(t, ErrCodeBuiltIn, cliErr.Code)
	details, ok := cliErr.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ARITY_MISMATCH", details["code"])
	assert.Equal(t, builtin.Namespace+builtin.NameOPA, details["builtin"])
	assert.Equal(t, "r1", details["rule"])
}

func TestInvokeCommand_UnknownBuiltIn(t *testing.T) {
	db := loadedDB(t)

	out, err := execute(t, "invoke", "nest2", "--db", db, "--format", "json")
	require.Error(t, err)

	_, cliErr := decode[InvokeResult](t, out)
	require.NotNil(t, cliErr)
	assert.Equal(t, "UNKNOWN_BUILTIN", cliErr.Details.(map[string]any)["code"])
}

func TestInvokeCommand_BadArguments(t *testing.T) {
	db := loadedDB(t)

	tests := []struct {
		name string
		args []string
	}{
		{"bad prefix", []string{"invoke", "opa", "person:alice"}},
		{"bind without value", []string{"invoke", "opa", "--bind", "X"}},
		{"bind to variable", []string{"invoke", "opa", "--bind", "X=?Y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append(tt.args, "--db", db, "--format", "json")...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			_, cliErr := decode[InvokeResult](t, out)
			require.NotNil(t, cliErr)
			assert.Equal(t, ErrCodeArguments, cliErr.Code)
		})
	}
}

func TestInvokeCommand_EmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")

	out, err := execute(t, "invoke", "deontic", "--db", db, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, cliErr := decode[InvokeResult](t, out)
	require.NotNil(t, cliErr)
	assert.Equal(t, ErrCodeStore, cliErr.Code)
}

func TestParseBindFlags(t *testing.T) {
	base := "http://example.org/family#"
	b, err := parseBindFlags([]string{"?X=ind:alice", "P=prop:knows"}, base)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"X": "ind:alice", "P": "prop:knows"}, b.Map(base))
}
