package section

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Rule is a named profile selection criterion. The profile with the
// highest score wins; on a tie the first profile found is kept.
type Rule struct {
	Name  string
	Score func(Profile) float64
}

// FarthestAlong scores a profile by how far its centroid lies from origin
// in direction dir. With origin at the pitch apex and dir along a gear's
// back axis it picks that gear's root-cone profile.
func FarthestAlong(name string, origin, dir r2.Vec) Rule {
	dir = r2.Unit(dir)
	return Rule{
		Name: name,
		Score: func(p Profile) float64 {
			return r2.Dot(r2.Sub(p.Centroid, origin), dir)
		},
	}
}

// Select returns the index of the profile preferred by rule.
func Select(profiles []Profile, rule Rule) (int, error) {
	if len(profiles) == 0 {
		return -1, fmt.Errorf("%w: rule %q has nothing to choose from", ErrNoProfile, rule.Name)
	}
	best, bestScore := 0, rule.Score(profiles[0])
	for i := 1; i < len(profiles); i++ {
		if s := rule.Score(profiles[i]); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, nil
}
