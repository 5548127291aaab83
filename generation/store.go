package generation

import (
	"sync"
	"time"

	"reddit-persona/models"
)

// Store holds the single GenerationState record shared by the worker and readers.
// Every write replaces the whole record under one mutex so readers never see a
// half-updated stage/progress/message combination.
type Store struct {
	mu    sync.RWMutex
	state models.GenerationState
	// run 은 현재 실행의 토큰이다. Reset 이나 새 실행이 시작되면 증가하며
	// 이전 토큰으로 들어온 쓰기는 버려진다.
	run uint64

	subs    map[int]chan models.GenerationState
	nextSub int

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		state: models.IdleState(),
		subs:  map[int]chan models.GenerationState{},
		now:   time.Now,
	}
}

// Read returns a copy of the current state. It never blocks on the worker.
func (s *Store) Read() models.GenerationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe returns a channel that receives the current snapshot followed by every
// later write. A subscriber that falls behind loses intermediate snapshots but
// always keeps the newest one. Call the returned func to unsubscribe.
func (s *Store) Subscribe(buffer int) (<-chan models.GenerationState, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan models.GenerationState, buffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.state
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
}

// begin 은 입장 제어와 초기화를 하나의 임계 구역에서 수행한다.
// 거절 시 상태는 바뀌지 않는다.
func (s *Store) begin(generationID, username string, autoAcknowledge bool) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Locked {
		switch s.state.Stage {
		case models.StageIdle:
		case models.StageCompleted:
			if !autoAcknowledge {
				return 0, ErrAwaitingReset
			}
		default:
			return 0, ErrAlreadyInProgress
		}
	}

	now := s.now()
	s.run++
	s.state = models.GenerationState{
		GenerationID: generationID,
		Username:     username,
		Stage:        models.StageInitializing,
		Message:      "Initializing generation...",
		Locked:       true,
		StartedAt:    now,
		UpdatedAt:    now,
	}
	s.broadcastLocked()
	return s.run, nil
}

// reset restores the idle baseline and invalidates the running worker's token.
func (s *Store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run++
	s.state = models.IdleState()
	s.state.UpdatedAt = s.now()
	s.broadcastLocked()
}

// alive reports whether token still owns the record.
func (s *Store) alive(token uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return token == s.run
}

// apply mutates a copy of the record and stores it if token is still current.
// Stage regressions are ignored and overall progress never decreases within a run.
func (s *Store) apply(token uint64, fn func(st *models.GenerationState)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.run {
		return false
	}

	prev := s.state
	next := prev
	fn(&next)
	next.Progress = clamp(next.Progress, 0, 100)

	if next.Stage == models.StageError {
		next.OverallProgress = prev.OverallProgress
	} else {
		switch pi, ni := stageIndex(prev.Stage), stageIndex(next.Stage); {
		case prev.Stage == models.StageError || ni < 0:
			return false
		case ni < pi:
			next.Stage = prev.Stage
			next.Progress = prev.Progress
		case ni == pi && next.Progress < prev.Progress:
			next.Progress = prev.Progress
		}
		next.OverallProgress = max(prev.OverallProgress, OverallProgress(next.Stage, next.Progress))
	}
	next.UpdatedAt = s.now()

	s.state = next
	s.broadcastLocked()
	return true
}

// broadcastLocked 는 쓰기를 막지 않는다. 버퍼가 찬 구독자는 가장 오래된 스냅샷을 버린다.
func (s *Store) broadcastLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- s.state:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s.state:
		default:
		}
	}
}
