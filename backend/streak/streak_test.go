package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chemsnap/backend/policy"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFirstActivityStartsStreak(t *testing.T) {
	today := date(2024, time.January, 10)

	upd, ok := ComputeUpdate(policy.RoleStudent, 0, nil, today)

	assert.True(t, ok)
	assert.Equal(t, 1, upd.Streak)
	assert.Equal(t, today, upd.ActivityDate)
}

func TestSameDayIsIdempotent(t *testing.T) {
	today := date(2024, time.January, 10)
	// Morning call already recorded today; afternoon call at any hour is a no-op.
	afternoon := time.Date(2024, time.January, 10, 17, 45, 3, 0, time.UTC)

	for i := 0; i < 2; i++ {
		_, ok := ComputeUpdate(policy.RoleStudent, 5, &today, afternoon)
		assert.False(t, ok)
	}
}

func TestConsecutiveDayIncrements(t *testing.T) {
	yesterday := date(2024, time.January, 9)
	today := date(2024, time.January, 10)

	upd, ok := ComputeUpdate(policy.RoleStudent, 5, &yesterday, today)

	assert.True(t, ok)
	assert.Equal(t, 6, upd.Streak)
	assert.Equal(t, today, upd.ActivityDate)
}

func TestGapResetsToOne(t *testing.T) {
	fiveDaysAgo := date(2024, time.January, 5)
	today := date(2024, time.January, 10)

	upd, ok := ComputeUpdate(policy.RoleStudent, 10, &fiveDaysAgo, today)

	assert.True(t, ok)
	assert.Equal(t, 1, upd.Streak)
}

func TestTwoDayGapResets(t *testing.T) {
	last := date(2024, time.January, 8)
	today := date(2024, time.January, 10)

	upd, ok := ComputeUpdate(policy.RoleStudent, 7, &last, today)

	assert.True(t, ok)
	assert.Equal(t, 1, upd.Streak)
}

func TestNonStudentRolesNeverAccrue(t *testing.T) {
	yesterday := date(2024, time.January, 9)
	today := date(2024, time.January, 10)

	for _, role := range []policy.Role{policy.RoleTeacher, policy.RolePersonal, policy.RoleAdmin} {
		_, ok := ComputeUpdate(role, 3, &yesterday, today)
		assert.False(t, ok, "role %s should not accrue streaks", role)

		_, ok = ComputeUpdate(role, 0, nil, today)
		assert.False(t, ok, "role %s should not start a streak", role)
	}
}

func TestTimeOfDayIsNormalizedAway(t *testing.T) {
	lastLateEvening := time.Date(2024, time.January, 9, 23, 59, 0, 0, time.UTC)
	todayEarlyMorning := time.Date(2024, time.January, 10, 0, 1, 0, 0, time.UTC)

	upd, ok := ComputeUpdate(policy.RoleStudent, 2, &lastLateEvening, todayEarlyMorning)

	// Two minutes apart on the clock but one whole calendar day apart.
	assert.True(t, ok)
	assert.Equal(t, 3, upd.Streak)
}

func TestScenarioIncrementThenNoopThenReset(t *testing.T) {
	jan10 := date(2024, time.January, 10)

	// Student at streak 3, last active Jan 10, calls on Jan 11.
	upd, ok := ComputeUpdate(policy.RoleStudent, 3, &jan10, date(2024, time.January, 11))
	assert.True(t, ok)
	assert.Equal(t, 4, upd.Streak)
	assert.Equal(t, date(2024, time.January, 11), upd.ActivityDate)

	// Same student calls again the same day.
	last := upd.ActivityDate
	_, ok = ComputeUpdate(policy.RoleStudent, upd.Streak, &last, date(2024, time.January, 11))
	assert.False(t, ok)

	// Three days later the streak resets.
	upd, ok = ComputeUpdate(policy.RoleStudent, 4, &last, date(2024, time.January, 14))
	assert.True(t, ok)
	assert.Equal(t, 1, upd.Streak)
	assert.Equal(t, date(2024, time.January, 14), upd.ActivityDate)
}

func TestCorruptNegativeStreakRecovers(t *testing.T) {
	yesterday := date(2024, time.January, 9)

	upd, ok := ComputeUpdate(policy.RoleStudent, -3, &yesterday, date(2024, time.January, 10))

	assert.True(t, ok)
	assert.Equal(t, 1, upd.Streak)
}

func TestNormalize(t *testing.T) {
	ts := time.Date(2024, time.June, 1, 18, 30, 12, 500, time.UTC)

	day := Normalize(ts)

	assert.Equal(t, date(2024, time.June, 1), day)
	assert.Equal(t, day, Normalize(day))
}
