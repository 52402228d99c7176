package jobmatch

import (
	"math"
	"sort"
	"strings"
	"time"

	"skill-readiness/internal/domain/skill"
)

const (
	exactWeight   = 1.0
	partialWeight = 0.6

	// NeutralScore is given to postings that list no skills at all.
	NeutralScore = 50
)

// Job is an external posting. Skills are free-text tags as published.
type Job struct {
	JobID      string    `json:"job_id"`
	Title      string    `json:"title"`
	Company    string    `json:"company"`
	Location   string    `json:"location,omitempty"`
	URL        string    `json:"url,omitempty"`
	Skills     []string  `json:"skills"`
	PostedDate time.Time `json:"posted_date"`
}

type RankedJob struct {
	Job
	MatchScore     int      `json:"match_score"`
	MatchingSkills []string `json:"matching_skills"`
	ExactMatches   int      `json:"exact_matches"`
	PartialMatches int      `json:"partial_matches"`
}

type MatchResult struct {
	Score          int
	MatchingSkills []string
	Exact          int
	Partial        int
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Match scores one posting's tags against the learner's skill names. A tag
// equal to a skill name (case-insensitive) is exact; otherwise a tag that
// contains or is contained in a skill name is partial.
func Match(jobSkills []string, inv skill.Inventory) MatchResult {
	if len(jobSkills) == 0 {
		return MatchResult{Score: NeutralScore, MatchingSkills: []string{}}
	}

	names := make([]string, 0, len(inv))
	exactSet := make(map[string]struct{}, len(inv))
	for _, us := range inv {
		n := normalize(us.Name)
		if n == "" {
			continue
		}
		names = append(names, n)
		exactSet[n] = struct{}{}
	}

	res := MatchResult{MatchingSkills: make([]string, 0, len(jobSkills))}
	for _, tag := range jobSkills {
		t := normalize(tag)
		if t == "" {
			continue
		}
		if _, ok := exactSet[t]; ok {
			res.Exact++
			res.MatchingSkills = append(res.MatchingSkills, tag)
			continue
		}
		for _, n := range names {
			if strings.Contains(n, t) || strings.Contains(t, n) {
				res.Partial++
				res.MatchingSkills = append(res.MatchingSkills, tag)
				break
			}
		}
	}

	weighted := exactWeight*float64(res.Exact) + partialWeight*float64(res.Partial)
	score := int(math.Round(100 * weighted / math.Max(1, float64(len(jobSkills)))))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	res.Score = score
	return res
}

// Rank annotates every job and orders them by match score, newest first on
// ties. Jobs equal on both keys keep their input order.
func Rank(jobs []Job, inv skill.Inventory) []RankedJob {
	out := make([]RankedJob, 0, len(jobs))
	for _, j := range jobs {
		m := Match(j.Skills, inv)
		out = append(out, RankedJob{
			Job:            j,
			MatchScore:     m.Score,
			MatchingSkills: m.MatchingSkills,
			ExactMatches:   m.Exact,
			PartialMatches: m.Partial,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MatchScore != out[j].MatchScore {
			return out[i].MatchScore > out[j].MatchScore
		}
		return out[i].PostedDate.After(out[j].PostedDate)
	})
	return out
}

func Jobs(ranked []RankedJob) []Job {
	out := make([]Job, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.Job)
	}
	return out
}
