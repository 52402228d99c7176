package jobmatch

import (
	"testing"
	"time"

	"skill-readiness/internal/domain/proficiency"
	"skill-readiness/internal/domain/skill"
)

func inventory(names ...string) skill.Inventory {
	inv := make(skill.Inventory, 0, len(names))
	for _, n := range names {
		inv = append(inv, skill.UserSkill{Skill: skill.Skill{ID: skill.ID(n), Name: n}, Proficiency: proficiency.Intermediate})
	}
	return inv
}

func TestMatch_ExactOnly(t *testing.T) {
	m := Match([]string{"React", "Node.js"}, inventory("React"))
	if m.Exact != 1 || m.Partial != 0 {
		t.Fatalf("expected 1 exact 0 partial, got %d/%d", m.Exact, m.Partial)
	}
	if m.Score != 50 {
		t.Fatalf("expected score 50, got %d", m.Score)
	}
	if len(m.MatchingSkills) != 1 || m.MatchingSkills[0] != "React" {
		t.Fatalf("unexpected matching skills: %v", m.MatchingSkills)
	}
}

func TestMatch_CaseInsensitiveExact(t *testing.T) {
	m := Match([]string{"postgresql"}, inventory("PostgreSQL"))
	if m.Exact != 1 || m.Score != 100 {
		t.Fatalf("expected exact match with score 100, got %+v", m)
	}
}

func TestMatch_PartialBothDirections(t *testing.T) {
	// "react" is inside "react native"; "node.js" contains "node".
	m := Match([]string{"React Native", "Node.js", "Kubernetes"}, inventory("React", "Node"))
	if m.Exact != 0 || m.Partial != 2 {
		t.Fatalf("expected 0 exact 2 partial, got %d/%d", m.Exact, m.Partial)
	}
	// round(100 * 1.2 / 3) = 40
	if m.Score != 40 {
		t.Fatalf("expected score 40, got %d", m.Score)
	}
}

func TestMatch_ExactNotDoubleCounted(t *testing.T) {
	m := Match([]string{"Go"}, inventory("Go", "Golang"))
	if m.Exact != 1 || m.Partial != 0 {
		t.Fatalf("expected exact only, got %d/%d", m.Exact, m.Partial)
	}
}

func TestMatch_NoSkillsIsNeutral(t *testing.T) {
	for _, inv := range []skill.Inventory{nil, inventory("React", "Go")} {
		m := Match([]string{}, inv)
		if m.Score != 50 {
			t.Fatalf("expected neutral 50, got %d", m.Score)
		}
	}
}

func TestMatch_EmptyTagsAndNamesNeverMatch(t *testing.T) {
	m := Match([]string{"  ", "Rust"}, inventory("", "Go"))
	if m.Exact != 0 || m.Partial != 0 || m.Score != 0 {
		t.Fatalf("expected no matches, got %+v", m)
	}
}

func TestRank_ScoreThenPostedDate(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	jobs := []Job{
		{JobID: "low", Skills: []string{"Rust"}, PostedDate: now},
		{JobID: "old-high", Skills: []string{"Go"}, PostedDate: now.Add(-48 * time.Hour)},
		{JobID: "new-high", Skills: []string{"Go"}, PostedDate: now},
		{JobID: "neutral", Skills: nil, PostedDate: now.Add(-time.Hour)},
	}

	got := Rank(jobs, inventory("Go"))
	want := []string{"new-high", "old-high", "neutral", "low"}
	for i, id := range want {
		if got[i].JobID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].JobID)
		}
	}
	if jobs[0].JobID != "low" {
		t.Fatalf("input slice reordered")
	}
}

func TestRank_StableOnFullTies(t *testing.T) {
	posted := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	jobs := []Job{
		{JobID: "a", Skills: []string{"Go"}, PostedDate: posted},
		{JobID: "b", Skills: []string{"Go"}, PostedDate: posted},
		{JobID: "c", Skills: []string{"Go"}, PostedDate: posted},
	}
	got := Rank(jobs, inventory("Go"))
	for i, id := range []string{"a", "b", "c"} {
		if got[i].JobID != id {
			t.Fatalf("expected input order preserved, got %v", Jobs(got))
		}
	}
}

func TestRank_Idempotent(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	jobs := []Job{
		{JobID: "1", Skills: []string{"Docker", "Go"}, PostedDate: now.Add(-time.Hour)},
		{JobID: "2", Skills: []string{"Go"}, PostedDate: now},
		{JobID: "3", Skills: []string{"Java"}, PostedDate: now},
		{JobID: "4", Skills: []string{"Golang", "SQL"}, PostedDate: now.Add(-2 * time.Hour)},
		{JobID: "5", Skills: []string{}, PostedDate: now.Add(-3 * time.Hour)},
	}
	inv := inventory("Go", "SQL")

	first := Rank(jobs, inv)
	second := Rank(Jobs(first), inv)
	for i := range first {
		if first[i].JobID != second[i].JobID || first[i].MatchScore != second[i].MatchScore {
			t.Fatalf("ranking not idempotent at %d: %s vs %s", i, first[i].JobID, second[i].JobID)
		}
	}
}
