package domain

// Concern vocabulary offered to users. Other keywords are still matched literally.
var ConcernVocabulary = []string{"Acne", "Aging", "Blackheads", "Dryness", "Dullness", "Pores"}

// UserProfile describes one user's skin and daily routine for a single evaluation
type UserProfile struct {
	SkinType           SkinType    `json:"skinType"`
	Concerns           []string    `json:"concerns"`
	UsedCleanser       bool        `json:"usedCleanser"`
	UsedMoisturizer    bool        `json:"usedMoisturizer"`
	UsedSunscreen      bool        `json:"usedSunscreen"`
	WaterIntakeGlasses int         `json:"waterIntakeGlasses"`
	SleepHours         int         `json:"sleepHours"`
	StressLevel        StressLevel `json:"stressLevel"`
}

// RoutineCheck names one item of the routine checklist
type RoutineCheck string

const (
	CheckCleanser    RoutineCheck = "cleanser"
	CheckMoisturizer RoutineCheck = "moisturizer"
	CheckSunscreen   RoutineCheck = "sunscreen"
	CheckWater       RoutineCheck = "water_intake"
	CheckSleep       RoutineCheck = "sleep"
)

// Feedback is the outcome of one routine check
type Feedback struct {
	Check   RoutineCheck `json:"check"`
	Passed  bool         `json:"passed"`
	Message string       `json:"message"`
}

// RoutineAssessment is the 0-100 routine score with one feedback line per check
type RoutineAssessment struct {
	Score    int        `json:"score"`
	Feedback []Feedback `json:"feedback"`
}

// Evaluation bundles everything produced for one profile
type Evaluation struct {
	Recommendations   []Recommendation  `json:"recommendations"`
	Routine           RoutineAssessment `json:"routine"`
	PriceDistribution Histogram         `json:"priceDistribution"`
}
