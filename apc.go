package redisdns

import (
	"expvar"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Score weights. Recency dominates, frequency refines, remaining TTL only
// tie-breaks: alpha > beta > gamma by design.
const (
	apcAlpha = 0.5
	apcBeta  = 0.3
	apcGamma = 0.2
)

// keyStats is the per-key metadata record the APC maintains. It never
// holds the value itself, only enough information to score the key for
// eviction.
type keyStats struct {
	accessCount uint64
	lastAccess  time.Time
	ttlInitial  time.Duration // 0 means "no TTL"
	ttlSetTime  time.Time
	score       float64
}

// remaining returns the TTL left on s at the given instant. It is zero if
// s has no TTL or the TTL has elapsed.
func (s *keyStats) remaining(now time.Time) time.Duration {
	if s.ttlInitial <= 0 {
		return 0
	}
	left := s.ttlInitial - now.Sub(s.ttlSetTime)
	if left < 0 {
		return 0
	}
	return left
}

// expired reports whether s carries a TTL that has elapsed by now.
func (s *keyStats) expired(now time.Time) bool {
	return s.ttlInitial > 0 && s.remaining(now) <= 0
}

// computeScore recomputes and caches s.score for the given instant,
// following the formula score = alpha*recency +
// beta*frequency + gamma*ttlFactor, or negative infinity for a key whose
// TTL has already elapsed.
func (s *keyStats) computeScore(now time.Time) float64 {
	if s.expired(now) {
		s.score = math.Inf(-1)
		return s.score
	}
	recency := 1 / (1 + now.Sub(s.lastAccess).Seconds())
	frequency := math.Log1p(float64(s.accessCount))
	var ttlFactor float64
	if s.ttlInitial > 0 {
		ttlFactor = s.remaining(now).Seconds() / s.ttlInitial.Seconds()
	}
	s.score = apcAlpha*recency + apcBeta*frequency + apcGamma*ttlFactor
	return s.score
}

type apcMetrics struct {
	hit      *expvar.Int
	miss     *expvar.Int
	eviction *expvar.Int
}

// APC is the Adaptive Predictive Cache: the eviction policy engine. It
// owns only KeyStats, never value data, so it can be shared by reference
// between the Datastore and anything that wants to inspect scores
// without taking the Datastore's lock.
type APC struct {
	id string

	mu    sync.Mutex
	stats map[string]*keyStats

	metrics *apcMetrics

	// now is overridable so tests can advance the clock deterministically
	// without sleeping, the same idea as a SetNowFunc hook.
	now func() time.Time
}

// NewAPC creates an APC instance identified by id, used only to namespace
// its expvar counters.
func NewAPC(id string) *APC {
	return &APC{
		id:    id,
		stats: make(map[string]*keyStats),
		metrics: &apcMetrics{
			hit:      getVarInt("apc", id, "hit"),
			miss:     getVarInt("apc", id, "miss"),
			eviction: getVarInt("apc", id, "eviction"),
		},
		now: time.Now,
	}
}

// RecordAccess creates the stats record for key if absent, increments its
// access count, refreshes last_access, and recomputes its score. It counts
// a hit when key already had a record and a miss when this call created
// one.
func (a *APC) RecordAccess(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, existed := a.stats[key]
	if existed {
		a.metrics.hit.Add(1)
	} else {
		a.metrics.miss.Add(1)
	}
	s := a.getOrCreate(key)
	s.accessCount++
	s.lastAccess = a.now()
	s.computeScore(a.now())
}

// SetTTL sets the TTL window for key starting now. d == 0 clears any
// existing TTL.
func (a *APC) SetTTL(key string, d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.getOrCreate(key)
	now := a.now()
	s.ttlInitial = d
	s.ttlSetTime = now
	s.lastAccess = now
	s.computeScore(now)
}

// TTLRemaining returns the time left on key's TTL, or zero if key has no
// record or no TTL.
func (a *APC) TTLRemaining(key string) time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.stats[key]
	if !ok {
		return 0
	}
	return s.remaining(a.now())
}

// Expired reports whether key carries a TTL that has elapsed.
func (a *APC) Expired(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.stats[key]
	if !ok {
		return false
	}
	return s.expired(a.now())
}

// UpdateScore recomputes key's score from its current stats and returns
// it. The second return value is false if key has no record.
func (a *APC) UpdateScore(key string) (float64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.stats[key]
	if !ok {
		return 0, false
	}
	return s.computeScore(a.now()), true
}

// Score returns key's cached score without recomputing it.
func (a *APC) Score(key string) (float64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.stats[key]
	if !ok {
		return 0, false
	}
	return s.score, true
}

// EvictCandidate scans all records, refreshing each score, and returns
// the key that should be evicted. A key whose TTL has already elapsed is
// returned immediately; otherwise the key with the minimum score is
// returned. Ties resolve to whichever key the map visits first.
func (a *APC) EvictCandidate() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.now()

	var (
		best      string
		bestScore = math.Inf(1)
		found     bool
	)
	for key, s := range a.stats {
		score := s.computeScore(now)
		if s.expired(now) {
			a.metrics.eviction.Add(1)
			Log.WithField("key", key).Debug("apc evicting expired key")
			return key, true
		}
		if !found || score < bestScore {
			best, bestScore, found = key, score, true
		}
	}
	if found {
		a.metrics.eviction.Add(1)
		Log.WithFields(logrus.Fields{"key": best, "score": bestScore}).Debug("apc evicting lowest-score key")
	}
	return best, found
}

// RemoveKey deletes key's stats record, if any.
func (a *APC) RemoveKey(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.stats, key)
}

// Contains reports whether key has a stats record.
func (a *APC) Contains(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.stats[key]
	return ok
}

// Clear removes every stats record.
func (a *APC) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats = make(map[string]*keyStats)
}

// Size returns the number of stats records currently held.
func (a *APC) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.stats)
}

// transferStats moves from's stats to to, then records one additional
// access on to, per the RENAME contract in the datastore.
func (a *APC) transferStats(from, to string) {
	a.mu.Lock()
	s, ok := a.stats[from]
	if ok {
		delete(a.stats, from)
		a.stats[to] = s
	} else {
		s = a.getOrCreate(to)
	}
	s.accessCount++
	s.lastAccess = a.now()
	s.computeScore(a.now())
	a.mu.Unlock()
}

func (a *APC) getOrCreate(key string) *keyStats {
	s, ok := a.stats[key]
	if !ok {
		s = &keyStats{lastAccess: a.now()}
		a.stats[key] = s
	}
	return s
}
