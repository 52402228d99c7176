package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"skill-readiness/internal/domain/skill"
)

const rankCachePrefix = "jobs:ranked:"

type rankCacheKeyInput struct {
	Skills []string `json:"skills"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
}

func normalizeSkillName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// RankedJobsCacheKey depends only on the set of skill names and the page, so
// two learners with the same names share a cached page. Proficiency does not
// affect job matching.
func RankedJobsCacheKey(inv skill.Inventory, limit, offset int) string {
	seen := make(map[string]struct{}, len(inv))
	names := make([]string, 0, len(inv))
	for _, us := range inv {
		n := normalizeSkillName(us.Name)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}
	sort.Strings(names)

	in := rankCacheKeyInput{Skills: names, Limit: limit, Offset: offset}
	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return rankCachePrefix + hex.EncodeToString(sum[:])
}
