package coach

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/prepwise/internal/interview"
)

//go:embed pools.yaml
var defaultPools []byte

// DefaultRole is the pool used for roles that match no other entry.
const DefaultRole = "default"

// Pools holds the fallback questions by role and difficulty.
type Pools struct {
	followUps []string
	roles     map[string]map[interview.Difficulty][]string

	// keys lists the non-default roles, longest first, so that the most
	// specific substring wins.
	keys []string
}

type poolFile struct {
	FollowUps []string                       `yaml:"follow_ups"`
	Roles     map[string]map[string][]string `yaml:"roles"`
}

// LoadPools parses the embedded pool file.
func LoadPools() (*Pools, error) {
	return ParsePools(defaultPools)
}

// ParsePools parses a YAML pool file. The default role must define at
// least one question and the follow-up list must not be empty.
func ParsePools(data []byte) (*Pools, error) {
	var f poolFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse question pools: %w", err)
	}

	p := &Pools{
		followUps: nonBlank(f.FollowUps),
		roles:     make(map[string]map[interview.Difficulty][]string, len(f.Roles)),
	}
	for role, byDifficulty := range f.Roles {
		key := normalizeText(role)
		lists := make(map[interview.Difficulty][]string, len(byDifficulty))
		for d, qs := range byDifficulty {
			diff, err := interview.ParseDifficulty(d)
			if err != nil {
				return nil, fmt.Errorf("role %q: %w", role, err)
			}
			if qs = nonBlank(qs); len(qs) > 0 {
				lists[diff] = qs
			}
		}
		if len(lists) == 0 {
			continue
		}
		p.roles[key] = lists
		if key != DefaultRole {
			p.keys = append(p.keys, key)
		}
	}
	sort.Slice(p.keys, func(i, j int) bool {
		if len(p.keys[i]) != len(p.keys[j]) {
			return len(p.keys[i]) > len(p.keys[j])
		}
		return p.keys[i] < p.keys[j]
	})

	if _, ok := p.roles[DefaultRole]; !ok {
		return nil, errors.New("question pools: default role has no questions")
	}
	if len(p.followUps) == 0 {
		return nil, errors.New("question pools: no follow-up questions")
	}
	return p, nil
}

// Lookup returns the fallback questions for role and difficulty. It never
// returns an empty list: an unknown role uses the default pool and a
// missing difficulty falls back to Intermediate, then to any difficulty.
func (p *Pools) Lookup(role string, d interview.Difficulty) []string {
	lists := p.roles[p.roleKey(role)]
	if qs, ok := lists[d]; ok {
		return qs
	}
	if qs, ok := lists[interview.Intermediate]; ok {
		return qs
	}
	for _, diff := range interview.Difficulties() {
		if qs, ok := lists[diff]; ok {
			return qs
		}
	}
	// Unreachable for a pool built by ParsePools.
	return p.followUps
}

// FollowUps returns the generic follow-up questions.
func (p *Pools) FollowUps() []string {
	return p.followUps
}

func (p *Pools) roleKey(role string) string {
	r := normalizeText(role)
	if _, ok := p.roles[r]; ok {
		return r
	}
	for _, k := range p.keys {
		if strings.Contains(r, k) {
			return k
		}
	}
	return DefaultRole
}

func normalizeText(role string) string {
	return strings.Join(strings.Fields(strings.ToLower(role)), " ")
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
