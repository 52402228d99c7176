package dto

import "time"

type RankedJobResponse struct {
	JobID          string    `json:"job_id"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location,omitempty"`
	URL            string    `json:"url,omitempty"`
	Skills         []string  `json:"skills"`
	PostedDate     time.Time `json:"posted_date"`
	MatchScore     int       `json:"match_score"`
	MatchingSkills []string  `json:"matching_skills"`
}

type RankedJobsResponse struct {
	Items  []RankedJobResponse `json:"items"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

type RoleMatchResponse struct {
	RoleID          string  `json:"role_id"`
	Title           string  `json:"title"`
	Category        string  `json:"category"`
	AvgSalary       int     `json:"avg_salary"`
	Demand          string  `json:"demand"`
	RequiredSkills  int     `json:"required_skills"`
	MatchPercentage float64 `json:"match_percentage"`
}
