package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ContactRules(t *testing.T) {
	rules := ContactRules()

	errs := Validate(rules, map[string]string{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"subject":   "Sizing",
		"message":   "Does the wool coat run small or true to size?",
	})
	assert.Empty(t, errs)
}

func TestValidate_RequiredAndBlank(t *testing.T) {
	rules := ContactRules()

	errs := Validate(rules, map[string]string{
		"firstName": "   ",
		"email":     "ada@example.com",
	})

	assert.Equal(t, "First name is required.", errs["firstName"])
	assert.Equal(t, "Last name is required.", errs["lastName"])
	assert.NotContains(t, errs, "email")
}

func TestValidate_MinLength(t *testing.T) {
	errs := Validate(ContactRules(), map[string]string{
		"firstName": "A",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"subject":   "Hi",
		"message":   "too short",
	})

	assert.Equal(t, "First name must be at least 2 characters.", errs["firstName"])
	assert.Equal(t, "Subject must be at least 3 characters.", errs["subject"])
	assert.Equal(t, "Message must be at least 20 characters.", errs["message"])
}

func TestValidate_EmailPattern(t *testing.T) {
	for _, bad := range []string{"nope", "a@b", "a b@c.com", "@c.com"} {
		errs := Validate(ContactRules(), map[string]string{
			"firstName": "Ada",
			"lastName":  "Lovelace",
			"email":     bad,
			"subject":   "Sizing",
			"message":   "Does the wool coat run small or true to size?",
		})
		require.Contains(t, errs, "email", "email %q should be rejected", bad)
		assert.Equal(t, "Please enter a valid email.", errs["email"])
	}
}

func TestRequiredOnly(t *testing.T) {
	rules := RequiredOnly(map[string]string{"city": "City", "zip": "Postal code"})

	errs := Validate(rules, map[string]string{"city": "Lisbon"})
	assert.Len(t, errs, 1)
	assert.Equal(t, "Postal code is required.", errs["zip"])

	errs = Validate(rules, map[string]string{"city": "Lisbon", "zip": "1000-001"})
	assert.Empty(t, errs)
}
