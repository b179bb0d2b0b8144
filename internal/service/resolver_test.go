package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcondori/biblioteca-api/internal/models"
)

func TestResolveStudentExactMatch(t *testing.T) {
	roster := []models.Student{
		{ID: "s1", NombreCompleto: "Ana Quispe", CI: "1234567"},
		{ID: "s2", NombreCompleto: "Luis Mamani", CI: "7654321"},
	}

	match := ResolveStudent(roster, "7654321")
	require.NotNil(t, match)
	assert.Equal(t, "s2", match.ID)
	assert.Equal(t, "Luis Mamani", match.NombreCompleto)
}

func TestResolveStudentTrimsWhitespace(t *testing.T) {
	roster := []models.Student{{ID: "s1", CI: " 1234567 "}}

	match := ResolveStudent(roster, "  1234567  ")
	require.NotNil(t, match)
	assert.Equal(t, "s1", match.ID)
}

func TestResolveStudentNoPartialMatch(t *testing.T) {
	roster := []models.Student{{ID: "s1", CI: "1234567"}}

	assert.Nil(t, ResolveStudent(roster, "123"))
	assert.Nil(t, ResolveStudent(roster, "12345678"))
	assert.Nil(t, ResolveStudent(roster, "9999999"))
}

func TestResolveStudentEmptyInput(t *testing.T) {
	roster := []models.Student{{ID: "s1", CI: "1234567"}}

	assert.Nil(t, ResolveStudent(roster, ""))
	assert.Nil(t, ResolveStudent(roster, "   "))
	assert.Nil(t, ResolveStudent(nil, "1234567"))
}
