package dto

type UserSkillResponse struct {
	SkillID     string `json:"skill_id"`
	SkillName   string `json:"skill_name"`
	Category    string `json:"category,omitempty"`
	Proficiency string `json:"proficiency"`
}

type AddSkillRequest struct {
	SkillID     string `json:"skill_id"`
	SkillName   string `json:"skill_name"`
	Category    string `json:"category"`
	Proficiency string `json:"proficiency"`
}

type UpdateSkillRequest struct {
	Proficiency string `json:"proficiency"`
}
