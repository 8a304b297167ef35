package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpCommand(t *testing.T) {
	db := loadedDB(t)

	out, err := execute(t, "dump", "--db", db, "--format", "json")
	require.NoError(t, err)

	result, cliErr := decode[DumpResult](t, out)
	require.Nil(t, cliErr)
	assert.Equal(t, "http://example.org/family#", result.OntologyIRI)
	assert.Len(t, result.Axioms, 13)
	assert.Contains(t, result.Axioms, "ObjectPropertyAssertion(knows alice bob)")
	assert.Contains(t, result.Axioms, "EquivalentClasses(Afternoon ObjectUnionOf(ObjectHasValue(after noon) ObjectOneOf(noon)))")
	assert.Equal(t, []AspectMembership{
		{Axiom: "ObjectPropertyAssertion(knows alice bob)", Aspect: "Trust"},
		{Axiom: "ObjectPropertyAssertion(knows alice bob)", Aspect: "Work"},
		{Axiom: "NegativeObjectPropertyAssertion(knows carol alice)", Aspect: "Work"},
	}, result.Aspects)
}

func TestDumpCommand_Text(t *testing.T) {
	db := loadedDB(t)

	out, err := execute(t, "dump", "--db", db)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "Ontology(<http://example.org/family#>", lines[0])
	assert.Equal(t, ")", lines[14])
	assert.Equal(t, "ObjectPropertyAssertion(knows alice bob) in Trust", lines[15])
	assert.Len(t, lines, 18)
}

func TestDumpCommand_TracksInvocations(t *testing.T) {
	db := loadedDB(t)

	_, err := execute(t, "invoke", "createNegativeOPA", "prop:knows", "ind:bob", "ind:carol", "class:Trust", "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "dump", "--db", db, "--format", "json")
	require.NoError(t, err)

	result, _ := decode[DumpResult](t, out)
	assert.Len(t, result.Axioms, 14)
	assert.Equal(t, "NegativeObjectPropertyAssertion(knows bob carol)", result.Axioms[13])
	assert.Contains(t, result.Aspects, AspectMembership{Axiom: "NegativeObjectPropertyAssertion(knows bob carol)", Aspect: "Trust"})
}
