package service

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"

	"score-engine/internal/model"
)

func activeFormula(name string, year int) model.Formula {
	return model.Formula{UniversityName: name, Year: year, MaxScore: 1000, KoreanRatio: 25, IsActive: true}
}

func setupTestFormulaStore(formulas ...model.Formula) (FormulaStore, *mockFormulaRepo) {
	repo := newMockFormulaRepo(formulas...)
	return NewFormulaStore(repo, nopLogger()), repo
}

// ── Load ──

func TestFormulaStore_ConcurrentLoadSharesOneScan(t *testing.T) {
	store, repo := setupTestFormulaStore(activeFormula("한국대", 2025))
	repo.gate = make(chan struct{})

	const callers = 20
	var wg sync.WaitGroup
	found := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := store.Get(context.Background(), "한국대", 2025)
			found <- ok
		}()
	}

	close(repo.gate)
	wg.Wait()
	close(found)

	for ok := range found {
		if !ok {
			t.Error("모든 호출자가 적재된 공식을 보아야 함")
		}
	}
	// 적재가 끝난 뒤 도착한 호출자는 캐시를 쓰므로 스캔은 최대 1회
	if n := repo.calls(); n != 1 {
		t.Errorf("ListActive 1회 기대, 실제 %d", n)
	}
}

func TestFormulaStore_LoadErrorInitializesEmpty(t *testing.T) {
	store, repo := setupTestFormulaStore(activeFormula("한국대", 2025))
	repo.listErr = errors.New("connection refused")

	if _, ok := store.Get(context.Background(), "한국대", 2025); ok {
		t.Error("적재 실패 시 빈 캐시여야 함")
	}
	stats := store.Stats()
	if !stats.Loaded || stats.Entries != 0 {
		t.Errorf("loaded=true, entries=0 기대, 실제 %+v", stats)
	}

	// 이후 조회는 다시 스캔하지 않는다
	store.GetAll(context.Background(), 2025)
	if n := repo.calls(); n != 1 {
		t.Errorf("ListActive 1회 기대, 실제 %d", n)
	}
}

func TestFormulaStore_EmptyTableIsNotError(t *testing.T) {
	store, _ := setupTestFormulaStore()
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("빈 테이블은 에러가 아니어야 함: %v", err)
	}
	if got := store.GetAll(context.Background(), 2025); len(got) != 0 {
		t.Errorf("빈 결과 기대, 실제 %d", len(got))
	}
}

func TestFormulaStore_SkipsInactive(t *testing.T) {
	inactive := activeFormula("폐지대", 2025)
	inactive.IsActive = false
	store, _ := setupTestFormulaStore(activeFormula("한국대", 2025), inactive)

	if _, ok := store.Get(context.Background(), "폐지대", 2025); ok {
		t.Error("비활성 공식은 캐시에 없어야 함")
	}
}

// ── 조회 ──

func TestFormulaStore_GetManyOmitsUnknownAndKeepsOrder(t *testing.T) {
	store, _ := setupTestFormulaStore(
		activeFormula("가대", 2025),
		activeFormula("나대", 2025),
		activeFormula("다대", 2024),
	)

	got := store.GetMany(context.Background(), []string{"나대", "없는대", "가대", "나대", "다대"}, 2025)
	if len(got) != 2 {
		t.Fatalf("2개 기대, 실제 %d", len(got))
	}
	if got[0].UniversityName != "나대" || got[1].UniversityName != "가대" {
		t.Errorf("요청 순서 유지 기대, 실제 %s, %s", got[0].UniversityName, got[1].UniversityName)
	}
}

func TestFormulaStore_GetAllFiltersYear(t *testing.T) {
	store, _ := setupTestFormulaStore(
		activeFormula("나대", 2025),
		activeFormula("가대", 2025),
		activeFormula("다대", 2024),
	)

	got := store.GetAll(context.Background(), 2025)
	if len(got) != 2 {
		t.Fatalf("2025년 공식 2개 기대, 실제 %d", len(got))
	}
	if got[0].UniversityName != "가대" {
		t.Errorf("이름순 정렬 기대, 실제 첫 항목 %s", got[0].UniversityName)
	}
}

// ── Upsert / Reload ──

func TestFormulaStore_UpsertUpdatesCacheInPlace(t *testing.T) {
	store, repo := setupTestFormulaStore(activeFormula("한국대", 2025))
	ctx := context.Background()
	store.Load(ctx)

	updated := activeFormula("한국대", 2025)
	updated.KoreanRatio = 40
	if _, err := store.Upsert(ctx, &updated); err != nil {
		t.Fatalf("Upsert 실패: %v", err)
	}

	got, ok := store.Get(ctx, "한국대", 2025)
	if !ok || got.KoreanRatio != 40 {
		t.Errorf("캐시에 갱신값 40 기대, 실제 %+v", got)
	}
	if n := repo.calls(); n != 1 {
		t.Errorf("Upsert 후 재적재가 없어야 함, ListActive %d회", n)
	}

	added := activeFormula("새대학", 2025)
	store.Upsert(ctx, &added)
	if _, ok := store.Get(ctx, "새대학", 2025); !ok {
		t.Error("새 공식이 캐시에 추가되어야 함")
	}

	added.IsActive = false
	store.Upsert(ctx, &added)
	if _, ok := store.Get(ctx, "새대학", 2025); ok {
		t.Error("비활성화된 공식은 캐시에서 빠져야 함")
	}
}

func TestFormulaStore_UpsertDuringLoadSurvives(t *testing.T) {
	store, repo := setupTestFormulaStore(activeFormula("한국대", 2025))
	repo.gate = make(chan struct{})
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		store.Load(ctx)
		close(done)
	}()

	// 적재가 스캔에서 멈춰 있는 동안 쓴다
	for repo.calls() == 0 {
		runtime.Gosched()
	}
	late := activeFormula("늦은대", 2025)
	if _, err := store.Upsert(ctx, &late); err != nil {
		t.Fatalf("Upsert 실패: %v", err)
	}
	close(repo.gate)
	<-done

	if _, ok := store.Get(ctx, "늦은대", 2025); !ok {
		t.Error("적재 중 Upsert 한 공식이 남아 있어야 함")
	}
}

func TestFormulaStore_ReloadRescans(t *testing.T) {
	store, repo := setupTestFormulaStore(activeFormula("한국대", 2025))
	ctx := context.Background()
	store.Load(ctx)

	// 외부 적재기가 저장소에 직접 쓴 경우
	repo.mu.Lock()
	repo.formulas[formulaKey{"외부대", 2025}] = activeFormula("외부대", 2025)
	repo.mu.Unlock()

	if _, ok := store.Get(ctx, "외부대", 2025); ok {
		t.Fatal("재적재 전에는 보이지 않아야 함")
	}

	n, err := store.Reload(ctx)
	if err != nil {
		t.Fatalf("Reload 실패: %v", err)
	}
	if n != 2 {
		t.Errorf("2개 기대, 실제 %d", n)
	}
	if _, ok := store.Get(ctx, "외부대", 2025); !ok {
		t.Error("재적재 후에는 보여야 함")
	}
	if c := repo.calls(); c != 2 {
		t.Errorf("ListActive 2회 기대, 실제 %d", c)
	}
}

func TestFormulaStore_OverlappingLoadsKeepUpsert(t *testing.T) {
	store, repo := setupTestFormulaStore(activeFormula("한국대", 2025))
	holdFirst, holdSecond := make(chan struct{}), make(chan struct{})
	repo.holds = map[int32]chan struct{}{1: holdFirst, 2: holdSecond}
	repo.scanned = make(chan int32, 2)
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() { firstDone <- store.Load(ctx) }()
	<-repo.scanned

	type reloadResult struct {
		n   int
		err error
	}
	secondDone := make(chan reloadResult, 1)
	go func() {
		n, err := store.Reload(ctx)
		secondDone <- reloadResult{n, err}
	}()
	// 두 번째 적재는 아래 Upsert 이전 상태를 스캔해 둔 채 멈춘다
	<-repo.scanned

	close(holdFirst)
	if err := <-firstDone; err != nil {
		t.Fatalf("첫 적재 실패: %v", err)
	}

	added := activeFormula("새대학", 2025)
	if _, err := store.Upsert(ctx, &added); err != nil {
		t.Fatalf("Upsert 실패: %v", err)
	}

	close(holdSecond)
	res := <-secondDone
	if res.err != nil {
		t.Fatalf("Reload 실패: %v", res.err)
	}
	if res.n != 2 {
		t.Errorf("2개 기대, 실제 %d", res.n)
	}
	if _, ok := store.Get(ctx, "새대학", 2025); !ok {
		t.Error("겹친 적재 사이에 Upsert 한 공식이 사라짐")
	}
	if _, ok := store.Get(ctx, "한국대", 2025); !ok {
		t.Error("기존 공식도 남아 있어야 함")
	}
	if c := repo.calls(); c != 2 {
		t.Errorf("ListActive 2회 기대, 실제 %d", c)
	}
}
