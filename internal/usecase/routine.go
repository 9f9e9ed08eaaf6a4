package usecase

import "github.com/dermalens/backend/internal/domain"

// Routine checklist thresholds
const (
	pointsPerCheck  = 20
	minWaterGlasses = 8
	minSleepHours   = 7
)

// routineCheck is one fixed checklist item. Order determines feedback order.
type routineCheck struct {
	id     domain.RoutineCheck
	passed func(domain.UserProfile) bool
	pass   string
	fail   string
}

var routineChecklist = []routineCheck{
	{
		id:     domain.CheckCleanser,
		passed: func(p domain.UserProfile) bool { return p.UsedCleanser },
		pass:   "Great job using a cleanser!",
		fail:   "Consider adding a cleanser to your routine",
	},
	{
		id:     domain.CheckMoisturizer,
		passed: func(p domain.UserProfile) bool { return p.UsedMoisturizer },
		pass:   "Good work with moisturizing!",
		fail:   "Adding a moisturizer could help your skin",
	},
	{
		id:     domain.CheckSunscreen,
		passed: func(p domain.UserProfile) bool { return p.UsedSunscreen },
		pass:   "Excellent sun protection!",
		fail:   "Don't forget your sunscreen",
	},
	{
		id:     domain.CheckWater,
		passed: func(p domain.UserProfile) bool { return p.WaterIntakeGlasses >= minWaterGlasses },
		pass:   "Great water intake!",
		fail:   "Try to drink more water",
	},
	{
		id:     domain.CheckSleep,
		passed: func(p domain.UserProfile) bool { return p.SleepHours >= minSleepHours },
		pass:   "Good sleep habits!",
		fail:   "More sleep could benefit your skin",
	},
}

// AssessRoutine scores the profile's routine out of 100, 20 points per check,
// with exactly one feedback line per check. Stress level is not scored.
func AssessRoutine(profile domain.UserProfile) domain.RoutineAssessment {
	assessment := domain.RoutineAssessment{
		Feedback: make([]domain.Feedback, 0, len(routineChecklist)),
	}

	for _, check := range routineChecklist {
		ok := check.passed(profile)
		message := check.fail
		if ok {
			assessment.Score += pointsPerCheck
			message = check.pass
		}
		assessment.Feedback = append(assessment.Feedback, domain.Feedback{
			Check:   check.id,
			Passed:  ok,
			Message: message,
		})
	}

	return assessment
}
