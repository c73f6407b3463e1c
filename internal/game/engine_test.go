package game

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexhavrelock-sketch/oil-management/internal/admin"
	"github.com/dexhavrelock-sketch/oil-management/internal/config"
	"github.com/dexhavrelock-sketch/oil-management/internal/drop"
	"github.com/dexhavrelock-sketch/oil-management/internal/ledger"
	"github.com/dexhavrelock-sketch/oil-management/internal/save"
	"github.com/dexhavrelock-sketch/oil-management/internal/storage"
)

func newEngineForTest(t *testing.T, store storage.Store) (*Engine, *FakeClock) {
	t.Helper()
	if store == nil {
		store = storage.NewMemoryStore()
	}
	fake := NewFakeClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	e := NewEngine(context.Background(), Options{
		Config: config.Default(),
		Store:  store,
		Clock:  fake,
		Rand:   rand.New(rand.NewSource(7)),
	})
	t.Cleanup(e.Close)
	return e, fake
}

func fund(e *Engine, amount int64) {
	e.mu.Lock()
	e.led.Cash = amount
	e.mu.Unlock()
}

func TestCollect_RewardScalesInverselyWithSize(t *testing.T) {
	ctx := context.Background()
	e, fake := newEngineForTest(t, nil)

	e.mu.Lock()
	e.drops.Add(drop.Drop{ID: "d1", Size: 30, CreatedAt: fake.Now()})
	e.mu.Unlock()

	reward, ok := e.Collect(ctx, "d1")
	require.True(t, ok)
	assert.Equal(t, int64(2), reward) // floor(80/30)
	assert.Equal(t, int64(2), e.Snapshot().Cash)

	// The drop is gone; a second collect finds nothing.
	_, ok = e.Collect(ctx, "d1")
	assert.False(t, ok)
}

func TestCollect_MultiplierAppliesDuringWar(t *testing.T) {
	ctx := context.Background()
	e, fake := newEngineForTest(t, nil)
	e.StartWar()

	e.mu.Lock()
	e.drops.Add(drop.Drop{ID: "d1", Size: 80, CreatedAt: fake.Now()})
	e.mu.Unlock()

	reward, ok := e.Collect(ctx, "d1")
	require.True(t, ok)
	assert.Equal(t, int64(15), reward)
}

func TestBuyRig_FirstTierScenario(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngineForTest(t, nil)
	fund(e, 5010)

	require.True(t, e.BuyRig(ctx, 0))

	snap := e.Snapshot()
	assert.Equal(t, int64(10), snap.Cash)
	assert.Equal(t, int64(1), snap.OwnedRigs[0])
	assert.False(t, e.BuyRig(ctx, 0))
}

func TestBuyMiniRig_SnapshotShowsNextCost(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngineForTest(t, nil)
	fund(e, 500)

	assert.Equal(t, int64(100), e.Snapshot().NextMiniRigCost)
	require.True(t, e.BuyMiniRig(ctx))
	assert.Equal(t, int64(120), e.Snapshot().NextMiniRigCost)
}

func TestSell_EngineDerivesMarketPrice(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngineForTest(t, nil)
	e.mu.Lock()
	e.led.Plastic = 2
	e.mu.Unlock()

	require.True(t, e.Sell(ctx, ledger.ResourcePlastic, 1))
	assert.Equal(t, int64(15000), e.Snapshot().Cash)

	e.StartOutage() // x10
	require.True(t, e.Sell(ctx, ledger.ResourcePlastic, 1))
	assert.Equal(t, int64(165000), e.Snapshot().Cash)
}

func TestSell_UnknownResourceRejected(t *testing.T) {
	e, _ := newEngineForTest(t, nil)
	assert.False(t, e.Sell(context.Background(), ledger.Resource("uranium"), 1))
}

func TestIncomeTick_ProductionPrecedesAutoSale(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngineForTest(t, nil)

	// One tier-2 rig backs one gas refinery; one station sells the gas the
	// same tick it is produced.
	e.mu.Lock()
	e.led.OwnedRigs[1] = 1 // rate 60
	e.led.OwnedGasRefineries = 1
	e.led.OwnedGasStations = 1
	e.mu.Unlock()

	e.IncomeTick(ctx)

	snap := e.Snapshot()
	assert.Zero(t, snap.Gas)
	// (60-10) production + 37500 station sale.
	assert.Equal(t, int64(37550), snap.Cash)
}

func TestIncomeTick_NothingOwnedPersistsNothing(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	e, _ := newEngineForTest(t, store)

	e.IncomeTick(ctx)

	_, ok, err := store.Get(ctx, save.SaveKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInterestTick_CreditsAfterFullInterval(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngineForTest(t, nil)
	e.mu.Lock()
	e.led.Savings = 1000
	e.mu.Unlock()

	for i := 0; i < 59; i++ {
		e.InterestTick(ctx)
	}
	assert.Equal(t, int64(1000), e.Snapshot().Savings)

	e.InterestTick(ctx)
	snap := e.Snapshot()
	assert.Equal(t, int64(1100), snap.Savings)
	assert.Equal(t, 60, snap.InterestCountdown)
}

func TestBottleTick_FloorsAndKeepsRemainder(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngineForTest(t, nil)
	e.mu.Lock()
	e.led.OwnedBottleFactories = 1
	e.led.BottleProductionBudget = 25
	e.led.Plastic = 37
	e.mu.Unlock()

	e.BottleTick(ctx)

	snap := e.Snapshot()
	assert.Equal(t, int64(2), snap.PlasticBottles)
	assert.Equal(t, int64(17), snap.Plastic)
}

func TestEventTick_OutageSlowsSpawnCadence(t *testing.T) {
	e, _ := newEngineForTest(t, nil)
	assert.Equal(t, 600*time.Millisecond, e.SpawnInterval())

	e.StartOutage()
	assert.Equal(t, 2*time.Second, e.SpawnInterval())
}

func TestMoonRun_ForcesBaselineSpawnAndExclusiveMultiplier(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngineForTest(t, nil)
	e.StartOutage()
	require.True(t, e.StartMoonRun(ctx, admin.LevelFull))

	// The outage would slow spawning and multiply prices, but the moon run
	// supersedes both.
	assert.Equal(t, 600*time.Millisecond, e.SpawnInterval())
	snap := e.Snapshot()
	assert.True(t, snap.MoonRunActive)
	assert.Equal(t, int64(100000000), snap.Multiplier)

	require.True(t, e.StopMoonRun(ctx, admin.LevelFull))
	assert.Equal(t, int64(10), e.Snapshot().Multiplier)
}

func TestMoonRun_RequiresFullAccess(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngineForTest(t, nil)
	assert.False(t, e.StartMoonRun(ctx, admin.LevelLimited))
	assert.False(t, e.StopMoonRun(ctx, admin.LevelLimited))
}

func TestMoonRun_SharedAcrossSessionsOnOneStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	a, _ := newEngineForTest(t, store)
	b, _ := newEngineForTest(t, store)

	require.True(t, a.StartMoonRun(ctx, admin.LevelFull))

	// The store notification re-syncs the other session immediately.
	assert.True(t, b.Snapshot().MoonRunActive)

	require.True(t, b.StopMoonRun(ctx, admin.LevelFull))
	assert.False(t, a.Snapshot().MoonRunActive)
}

func TestMoonRun_ExpiresByClock(t *testing.T) {
	ctx := context.Background()
	e, fake := newEngineForTest(t, nil)
	require.True(t, e.StartMoonRun(ctx, admin.LevelFull))

	fake.Advance(181 * time.Second)
	e.EventTick(ctx)

	assert.False(t, e.Snapshot().MoonRunActive)
}

func TestEventTick_MachineFrozenDuringMoonRun(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngineForTest(t, nil)
	e.StartWar()
	require.True(t, e.StartMoonRun(ctx, admin.LevelFull))

	for i := 0; i < 30; i++ {
		e.EventTick(ctx)
	}

	// 30 checks would have ended a 15s war; the moon run froze it.
	snap := e.Snapshot()
	assert.True(t, snap.WarActive)
	assert.Equal(t, 15, snap.WarRemaining)
}

func TestAdminGrant_FullBypassesQuota(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngineForTest(t, nil)

	granted := e.AdminGrant(ctx, admin.LevelFull, 999999999999)

	snap := e.Snapshot()
	assert.Equal(t, int64(999999999999), granted)
	assert.Equal(t, int64(999999999999), snap.Cash)
	assert.Zero(t, snap.AdminMoneyGiven)
}

func TestAdminGrant_LimitedClampedToQuota(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngineForTest(t, nil)

	granted := e.AdminGrant(ctx, admin.LevelLimited, 60000000)
	assert.Equal(t, int64(60000000), granted)

	granted = e.AdminGrant(ctx, admin.LevelLimited, 60000000)
	assert.Equal(t, int64(40000000), granted)

	assert.Zero(t, e.AdminGrant(ctx, admin.LevelLimited, 1))
	assert.Equal(t, int64(100000000), e.Snapshot().AdminMoneyGiven)
}

func TestAdminRaiseQuota_FullOnly(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngineForTest(t, nil)

	assert.False(t, e.AdminRaiseQuota(ctx, admin.LevelLimited, 1000))
	require.True(t, e.AdminRaiseQuota(ctx, admin.LevelFull, 1000))
	assert.Equal(t, int64(100001000), e.Snapshot().AdminMoneyLimit)
}

func TestPersistence_StateSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	e, _ := newEngineForTest(t, store)
	fund(e, 30000)
	require.True(t, e.BuyRig(ctx, 0))
	require.True(t, e.BuyRig(ctx, 1))
	e.Close()

	e2, _ := newEngineForTest(t, store)
	snap := e2.Snapshot()
	assert.Equal(t, int64(1), snap.OwnedRigs[0])
	assert.Equal(t, int64(1), snap.OwnedRigs[1])
	assert.Zero(t, snap.Cash)
}

func TestHighScore_TracksPeakCashAcrossSpend(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngineForTest(t, nil)

	e.AdminGrant(ctx, admin.LevelFull, 50000)
	require.True(t, e.BuyRig(ctx, 0)) // cash drops to 45000

	assert.Equal(t, int64(50000), e.Snapshot().HighScore)
}

func TestExportImport_RoundTripsThroughCode(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngineForTest(t, nil)
	fund(e, 123456)
	require.True(t, e.BuyRig(ctx, 0))

	code, err := e.ExportSave()
	require.NoError(t, err)

	other, _ := newEngineForTest(t, nil)
	require.NoError(t, other.ImportSave(ctx, code))

	snap := other.Snapshot()
	assert.Equal(t, int64(118456), snap.Cash)
	assert.Equal(t, int64(1), snap.OwnedRigs[0])
}

func TestImportSave_InvalidCodeChangesNothing(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngineForTest(t, nil)
	fund(e, 777)

	err := e.ImportSave(ctx, "garbage")
	require.ErrorIs(t, err, save.ErrInvalidRecord)
	assert.Equal(t, int64(777), e.Snapshot().Cash)
}

func TestCorruptSaveSlot_LoadsDefaults(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, save.SaveKey, []byte("}{")))

	e, _ := newEngineForTest(t, store)
	snap := e.Snapshot()
	assert.Zero(t, snap.Cash)
	assert.Equal(t, int64(100000000), snap.AdminMoneyLimit)
}

func TestPauseResume_DropsDoNotAgeWhilePaused(t *testing.T) {
	e, fake := newEngineForTest(t, nil)
	e.SpawnTick()
	require.Equal(t, 1, len(e.Snapshot().Drops))

	fake.Advance(time.Second) // 1.5s of lifespan left
	e.Pause()
	fake.Advance(5 * time.Second)
	e.Resume()

	e.SweepTick()
	assert.Equal(t, 1, len(e.Snapshot().Drops))

	fake.Advance(1600 * time.Millisecond)
	e.SweepTick()
	assert.Empty(t, e.Snapshot().Drops)
}

func TestPauseResume_Idempotent(t *testing.T) {
	e, fake := newEngineForTest(t, nil)
	e.Resume() // no-op when not paused
	e.Pause()
	fake.Advance(time.Second)
	e.Pause() // does not reset the span start
	assert.True(t, e.Paused())
	e.Resume()
	assert.False(t, e.Paused())
}

func TestSweepTick_RemovesExpiredDrops(t *testing.T) {
	e, fake := newEngineForTest(t, nil)
	e.SpawnTick()
	fake.Advance(3 * time.Second)
	e.SpawnTick()

	e.SweepTick()

	assert.Equal(t, 1, len(e.Snapshot().Drops))
}

func TestSnapshot_IsDetachedFromState(t *testing.T) {
	e, _ := newEngineForTest(t, nil)
	fund(e, 100)

	snap := e.Snapshot()
	snap.OwnedRigs[0] = 99

	assert.Zero(t, e.Snapshot().OwnedRigs[0])
}
