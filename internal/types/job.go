package types

// JobDescription is the caller-supplied description of the role a candidate
// is screened against. Optional fields enrich the scoring prompt when
// present.
type JobDescription struct {
	ID               string   `json:"id" validate:"required"`
	Title            string   `json:"title" validate:"required"`
	Company          string   `json:"company" validate:"required"`
	Description      string   `json:"description" validate:"required"`
	Requirements     string   `json:"requirements" validate:"required"`
	DailyTasks       string   `json:"dailyTasks,omitempty"`
	ExpectedOutcomes string   `json:"expectedOutcomes,omitempty"`
	TechStack        []string `json:"techStack,omitempty"`
	ExperienceLevel  string   `json:"experienceLevel,omitempty"`
}
