package streak

import (
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"chemsnap/backend/models"
	"chemsnap/backend/policy"
)

// Tracker is the single owner of streak writes. Multiple call sites (login,
// profile entry, quiz and assignment submissions) all funnel through Touch,
// which serializes per user id so two same-day calls cannot double-increment.
type Tracker struct {
	DB  *gorm.DB
	Log *log.Logger

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewTracker(db *gorm.DB, logger *log.Logger) *Tracker {
	return &Tracker{
		DB:    db,
		Log:   logger,
		locks: make(map[uint]*sync.Mutex),
	}
}

func (t *Tracker) userLock(userID uint) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[userID] = l
	}
	return l
}

// Touch records activity for today. Failures are logged and swallowed: a stale
// streak self-heals on the next successful call, so nothing here may fail the
// caller's request.
func (t *Tracker) Touch(userID uint) {
	l := t.userLock(userID)
	l.Lock()
	defer l.Unlock()

	var user models.User
	if err := t.DB.First(&user, userID).Error; err != nil {
		t.Log.Printf("streak: load user %d: %v", userID, err)
		return
	}

	upd, ok := ComputeUpdate(policy.Role(user.Role), user.CurrentStreak, user.LastActivityDate, time.Now())
	if !ok {
		return
	}

	// Conditional on the previously observed activity date, so a concurrent
	// writer from another instance loses cleanly instead of double-counting.
	tx := t.DB.Model(&models.User{}).Where("id = ?", userID)
	if user.LastActivityDate == nil {
		tx = tx.Where("last_activity_date IS NULL")
	} else {
		tx = tx.Where("last_activity_date = ?", *user.LastActivityDate)
	}
	err := tx.Updates(map[string]interface{}{
		"current_streak":     upd.Streak,
		"last_activity_date": upd.ActivityDate,
	}).Error
	if err != nil {
		t.Log.Printf("streak: persist for user %d: %v", userID, err)
	}
}
