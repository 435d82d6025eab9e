package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"score-engine/internal/model"
	"score-engine/internal/repository"
)

// FormulaStore (대학, 연도)별 환산 공식 캐시
//
// 동작 규칙：
//   - 첫 조회 시 활성 공식 전체를 한 번에 적재한다 (동시 호출은 같은 적재를 기다린다)
//   - 저장소 오류로 적재에 실패해도 빈 캐시로 초기화하고 계속 동작한다
//   - Upsert 는 저장소에 쓴 뒤 해당 항목 하나만 캐시에 반영한다
type FormulaStore interface {
	Load(ctx context.Context) error
	Get(ctx context.Context, universityName string, year int) (*model.Formula, bool)
	// GetMany 요청한 이름 순서대로 반환하며 없는 이름은 빠진다
	GetMany(ctx context.Context, universityNames []string, year int) []*model.Formula
	GetAll(ctx context.Context, year int) []*model.Formula
	// Reload 캐시를 비우고 다시 적재한다. 적재된 공식 수를 반환
	Reload(ctx context.Context) (int, error)
	Upsert(ctx context.Context, formula *model.Formula) (*model.Formula, error)
	Stats() FormulaCacheStats
}

// FormulaCacheStats 캐시 상태
type FormulaCacheStats struct {
	Loaded   bool
	Entries  int
	LoadedAt time.Time
}

type formulaKey struct {
	university string
	year       int
}

const loadFlightKey = "formula:load"

type formulaStore struct {
	repo   repository.FormulaRepository
	logger *zap.Logger
	group  singleflight.Group

	mu       sync.RWMutex
	cache    map[formulaKey]*model.Formula
	loaded   bool
	loadedAt time.Time
	// 적재마다 세대 번호를 받는다. 가장 최근에 시작한 세대만 캐시를 교체한다
	gen uint64
	// 세대별로 적재 중에 들어온 Upsert. 적재 결과 위에 다시 적용한다
	pending map[uint64]map[formulaKey]*model.Formula
}

// NewFormulaStore FormulaStore 생성. 적재는 첫 조회 또는 Load 호출 시 일어난다
func NewFormulaStore(repo repository.FormulaRepository, logger *zap.Logger) FormulaStore {
	return &formulaStore{
		repo:    repo,
		logger:  logger,
		cache:   make(map[formulaKey]*model.Formula),
		pending: make(map[uint64]map[formulaKey]*model.Formula),
	}
}

// ────────────────────── Load ──────────────────────

func (s *formulaStore) Load(ctx context.Context) error {
	_, err, shared := s.group.Do(loadFlightKey, func() (interface{}, error) {
		// 먼저 온 호출자의 취소가 함께 기다리는 호출자에게 번지지 않게 한다
		return nil, s.load(context.WithoutCancel(ctx))
	})
	if shared {
		s.logger.Debug("진행 중인 공식 적재에 합류")
	}
	return err
}

func (s *formulaStore) load(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.pending[gen] = make(map[formulaKey]*model.Formula)
	s.mu.Unlock()

	formulas, err := s.repo.ListActive(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.pending[gen]
	delete(s.pending, gen)
	if gen != s.gen {
		// 뒤에 시작한 적재가 캐시를 채운다
		s.logger.Debug("이전 세대 공식 적재 결과 폐기", zap.Uint64("generation", gen))
		return err
	}

	cache := make(map[formulaKey]*model.Formula, len(formulas))
	if err != nil {
		s.logger.Error("환산 공식 적재 실패, 빈 캐시로 시작", zap.Error(err))
	} else {
		for i := range formulas {
			f := formulas[i]
			cache[formulaKey{f.UniversityName, f.Year}] = &f
		}
	}
	for k, f := range pending {
		applyToCache(cache, k, f)
	}

	s.cache = cache
	s.loaded = true
	s.loadedAt = time.Now()

	s.logger.Info("환산 공식 캐시 적재 완료", zap.Int("entries", len(cache)))
	return err
}

func (s *formulaStore) isLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// ensureLoaded 아직 적재 전이면 적재한다. 적재 직후 도착한 호출자가 다시 스캔하지 않도록
// singleflight 안에서 한 번 더 확인한다. 오류는 load 에서 기록하고 빈 캐시로 계속 진행한다
func (s *formulaStore) ensureLoaded(ctx context.Context) {
	if s.isLoaded() {
		return
	}
	_, _, _ = s.group.Do(loadFlightKey, func() (interface{}, error) {
		if s.isLoaded() {
			return nil, nil
		}
		return nil, s.load(context.WithoutCancel(ctx))
	})
}

// ────────────────────── 조회 ──────────────────────

func (s *formulaStore) Get(ctx context.Context, universityName string, year int) (*model.Formula, bool) {
	s.ensureLoaded(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.cache[formulaKey{universityName, year}]
	return f, ok
}

func (s *formulaStore) GetMany(ctx context.Context, universityNames []string, year int) []*model.Formula {
	s.ensureLoaded(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Formula, 0, len(universityNames))
	seen := make(map[string]bool, len(universityNames))
	for _, name := range universityNames {
		if seen[name] {
			continue
		}
		seen[name] = true
		if f, ok := s.cache[formulaKey{name, year}]; ok {
			out = append(out, f)
		}
	}
	return out
}

func (s *formulaStore) GetAll(ctx context.Context, year int) []*model.Formula {
	s.ensureLoaded(ctx)

	s.mu.RLock()
	out := make([]*model.Formula, 0)
	for k, f := range s.cache {
		if k.year == year {
			out = append(out, f)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].UniversityName < out[j].UniversityName
	})
	return out
}

// ────────────────────── Reload ──────────────────────

func (s *formulaStore) Reload(ctx context.Context) (int, error) {
	s.mu.Lock()
	s.cache = make(map[formulaKey]*model.Formula)
	s.loaded = false
	s.mu.Unlock()

	// 이미 진행 중인 적재는 재적재 요청 이전의 스캔이므로 합류하지 않는다
	s.group.Forget(loadFlightKey)
	err := s.Load(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache), err
}

// ────────────────────── Upsert ──────────────────────

func (s *formulaStore) Upsert(ctx context.Context, formula *model.Formula) (*model.Formula, error) {
	if err := s.repo.Upsert(ctx, formula); err != nil {
		s.logger.Error("환산 공식 저장 실패",
			zap.String("university", formula.UniversityName),
			zap.Int("year", formula.Year),
			zap.Error(err),
		)
		return nil, err
	}

	stored := *formula
	key := formulaKey{stored.UniversityName, stored.Year}

	s.mu.Lock()
	applyToCache(s.cache, key, &stored)
	for _, p := range s.pending {
		p[key] = &stored
	}
	s.mu.Unlock()

	return &stored, nil
}

// Stats 캐시 상태 조회 (적재를 유발하지 않는다)
func (s *formulaStore) Stats() FormulaCacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FormulaCacheStats{
		Loaded:   s.loaded,
		Entries:  len(s.cache),
		LoadedAt: s.loadedAt,
	}
}

// 캐시는 활성 공식만 보관한다
func applyToCache(cache map[formulaKey]*model.Formula, key formulaKey, f *model.Formula) {
	if f.IsActive {
		cache[key] = f
		return
	}
	delete(cache, key)
}
