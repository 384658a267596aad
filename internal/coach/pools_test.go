package coach

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/prepwise/internal/interview"
)

func TestEmbeddedPoolsAreTotal(t *testing.T) {
	p, err := LoadPools()
	require.NoError(t, err)

	roles := []string{"", "Backend Engineer", "Senior Frontend Developer", "Data Scientist", "DevOps", "Chef", "  BACKEND  "}
	for _, role := range roles {
		for _, d := range append(interview.Difficulties(), interview.Difficulty("Expert")) {
			assert.NotEmpty(t, p.Lookup(role, d), "role %q difficulty %q", role, d)
		}
	}
	assert.NotEmpty(t, p.FollowUps())
}

func TestLookupMatchesRoleBySubstring(t *testing.T) {
	p, err := LoadPools()
	require.NoError(t, err)

	backend := p.Lookup("backend", interview.Advanced)
	assert.Equal(t, backend, p.Lookup("Senior Backend Engineer", interview.Advanced))
	assert.NotEqual(t, backend, p.Lookup("Chef", interview.Advanced))
	assert.Equal(t, p.Lookup(DefaultRole, interview.Advanced), p.Lookup("Chef", interview.Advanced))
}

func TestParsePoolsFallbacks(t *testing.T) {
	p, err := ParsePools([]byte(`
follow_ups: ["Why?"]
roles:
  default:
    advanced: ["D-adv"]
  "site reliability":
    intermediate: ["SRE-int"]
  reliability:
    beginner: ["REL-beg"]
  empty:
    beginner: ["  "]
`))
	require.NoError(t, err)

	// The longer key wins when both match.
	assert.Equal(t, []string{"SRE-int"}, p.Lookup("Site Reliability Engineer", interview.Beginner))
	assert.Equal(t, []string{"REL-beg"}, p.Lookup("reliability", interview.Advanced))
	// Missing difficulty without Intermediate falls back to any list.
	assert.Equal(t, []string{"D-adv"}, p.Lookup("unknown", interview.Beginner))
	// A role whose lists are all blank is dropped.
	assert.Equal(t, []string{"D-adv"}, p.Lookup("empty", interview.Beginner))
}

func TestParsePoolsRejectsIncompleteFiles(t *testing.T) {
	tests := map[string]string{
		"no default":     "follow_ups: [a]\nroles:\n  backend:\n    beginner: [q]\n",
		"no follow-ups":  "roles:\n  default:\n    beginner: [q]\n",
		"bad difficulty": "follow_ups: [a]\nroles:\n  default:\n    expert: [q]\n",
		"not yaml":       "roles: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePools([]byte(doc))
			assert.Error(t, err)
		})
	}
}
