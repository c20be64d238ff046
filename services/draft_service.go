package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robsammonsdfw/EmbraceMacro-sub000/models"
)

// draftTTL bounds how long an uncommitted draft survives; expired
// drafts are swept on the next create and miss on Get.
const draftTTL = 2 * time.Hour

// Draft is a post-analysis record under user editing, before commit.
type Draft struct {
	ID     string
	UserID uint
	Ledger *Ledger

	createdAt time.Time
}

// DraftService tracks open drafts by id. Drafts live in memory only;
// nothing persists until a commit.
type DraftService struct {
	mu     sync.Mutex
	drafts map[string]*Draft

	ttl time.Duration
	now func() time.Time
}

func NewDraftService() *DraftService {
	return &DraftService{
		drafts: make(map[string]*Draft),
		ttl:    draftTTL,
		now:    time.Now,
	}
}

func (ds *DraftService) Create(userID uint, info models.NutritionInfo) *Draft {
	d := &Draft{
		ID:        uuid.NewString(),
		UserID:    userID,
		Ledger:    NewLedger(info),
		createdAt: ds.now(),
	}
	ds.mu.Lock()
	ds.sweepLocked()
	ds.drafts[d.ID] = d
	ds.mu.Unlock()
	return d
}

func (ds *DraftService) Get(userID uint, id string) (*Draft, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	d, ok := ds.drafts[id]
	if !ok || d.UserID != userID {
		return nil, false
	}
	if d.createdAt.Before(ds.now().Add(-ds.ttl)) {
		delete(ds.drafts, id)
		return nil, false
	}
	return d, true
}

// caller must hold ds.mu
func (ds *DraftService) sweepLocked() {
	cutoff := ds.now().Add(-ds.ttl)
	for id, d := range ds.drafts {
		if d.createdAt.Before(cutoff) {
			delete(ds.drafts, id)
		}
	}
}

func (ds *DraftService) Delete(userID uint, id string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if d, ok := ds.drafts[id]; ok && d.UserID == userID {
		delete(ds.drafts, id)
	}
}
