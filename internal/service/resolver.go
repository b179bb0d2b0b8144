package service

import (
	"strings"

	"github.com/jcondori/biblioteca-api/internal/models"
)

// ResolveStudent matches a typed national ID against the known roster. The
// match is exact equality of the trimmed strings; there is no fuzzy or prefix
// matching. Returns the matched student, or nil when no student matches.
func ResolveStudent(known []models.Student, input string) *models.Student {
	ci := strings.TrimSpace(input)
	if ci == "" {
		return nil
	}
	for i := range known {
		if strings.TrimSpace(known[i].CI) == ci {
			return &known[i]
		}
	}
	return nil
}
