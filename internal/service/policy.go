package service

import "time"

// GamificationPolicy holds the reward constants applied by the gamification services.
type GamificationPolicy struct {
	QuizXP                  int
	AssignmentXP            int
	StreakBonusXP           int
	StreakMilestone         int
	ReferralUnlockThreshold int
	Timezone                *time.Location
}

// DefaultGamificationPolicy returns the standard reward values.
func DefaultGamificationPolicy() GamificationPolicy {
	return GamificationPolicy{
		QuizXP:                  50,
		AssignmentXP:            50,
		StreakBonusXP:           100,
		StreakMilestone:         7,
		ReferralUnlockThreshold: 3,
		Timezone:                time.UTC,
	}
}

func (p GamificationPolicy) normalized() GamificationPolicy {
	defaults := DefaultGamificationPolicy()
	if p.StreakMilestone <= 0 {
		p.StreakMilestone = defaults.StreakMilestone
	}
	if p.ReferralUnlockThreshold <= 0 {
		p.ReferralUnlockThreshold = defaults.ReferralUnlockThreshold
	}
	if p.Timezone == nil {
		p.Timezone = time.UTC
	}
	return p
}
