package dto

type SelectRoleRequest struct {
	RoleID string `json:"role_id"`
}

type RoadmapItemRequest struct {
	ID            string `json:"id"`
	SkillID       string `json:"skill_id"`
	SkillName     string `json:"skill_name"`
	Difficulty    string `json:"difficulty"`
	EstimatedTime string `json:"estimated_time"`
	Completed     bool   `json:"completed"`
}

type ReplaceRoadmapRequest struct {
	Items []RoadmapItemRequest `json:"items"`
}
