package game

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/dexhavrelock-sketch/oil-management/internal/admin"
	"github.com/dexhavrelock-sketch/oil-management/internal/config"
	"github.com/dexhavrelock-sketch/oil-management/internal/drop"
	"github.com/dexhavrelock-sketch/oil-management/internal/event"
	"github.com/dexhavrelock-sketch/oil-management/internal/ledger"
	"github.com/dexhavrelock-sketch/oil-management/internal/save"
	"github.com/dexhavrelock-sketch/oil-management/internal/storage"
	"github.com/dexhavrelock-sketch/oil-management/internal/telemetry"
)

// Engine owns exclusive write access to the mutable game state: one
// ledger, one event machine, one drop set. Every user action and every
// timer body runs as a single atomic step under the engine's lock, which
// is the whole concurrency model; nothing yields mid-step.
type Engine struct {
	mu sync.Mutex

	cfg    config.Balance
	clock  Clock
	rng    *rand.Rand
	logger *log.Logger

	led     *ledger.Ledger
	events  *event.Machine
	moon    *event.SharedSlot
	drops   *drop.Set
	gateway *save.Gateway
	telem   telemetry.Repository

	interestCountdown int
	paused            bool
	pausedAt          time.Time
	highScore         int64

	unsubscribe func()
}

type Options struct {
	Config    config.Balance
	Store     storage.Store
	Clock     Clock
	Rand      *rand.Rand
	Logger    *log.Logger
	Telemetry telemetry.Repository
}

// NewEngine loads persisted state from the store and wires the shared
// event slot. Store writes made elsewhere in the process trigger a re-sync
// of the shared slot; foreign processes converge via the event-check poll.
func NewEngine(ctx context.Context, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemoryStore()
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.NewMemoryRepository()
	}

	gateway := save.NewGateway(opts.Store, opts.Config, opts.Logger)
	e := &Engine{
		cfg:               opts.Config,
		clock:             opts.Clock,
		rng:               opts.Rand,
		logger:            opts.Logger,
		led:               gateway.Load(ctx).ToLedger(),
		events:            event.NewMachine(opts.Config),
		moon:              event.NewSharedSlot(opts.Store, save.GlobalEventKey),
		drops:             drop.NewSet(),
		gateway:           gateway,
		telem:             opts.Telemetry,
		interestCountdown: opts.Config.InterestIntervalS,
	}
	e.highScore = gateway.HighScore(ctx)
	if _, err := e.moon.Sync(ctx, e.clock.Now()); err != nil {
		e.logger.Printf("[game] shared event sync: %v", err)
	}
	e.unsubscribe = opts.Store.Subscribe(func(key string) {
		if key != save.GlobalEventKey {
			return
		}
		if _, err := e.moon.Sync(context.Background(), e.clock.Now()); err != nil {
			e.logger.Printf("[game] shared event sync: %v", err)
		}
	})
	return e
}

// Close detaches the engine from store notifications.
func (e *Engine) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
	}
}

// multiplier is the effective price multiplier for the current instant.
// The moon run is exclusive: while active it supersedes war and outage.
func (e *Engine) multiplier() int64 {
	if e.moon.Current().Active(e.clock.Now()) {
		return e.cfg.MoonRunPriceMultiplier
	}
	return e.events.Multiplier()
}

func (e *Engine) persist(ctx context.Context) {
	rec := save.FromLedger(e.led)
	if err := e.gateway.Save(ctx, rec); err != nil {
		e.logger.Printf("[game] save failed: %v", err)
		return
	}
	if rec.Score > e.highScore {
		e.highScore = rec.Score
	}
}

func (e *Engine) record(t telemetry.EventType, md telemetry.EventMetadata) {
	_ = e.telem.RecordEvent(t, md)
}

// --- user actions -----------------------------------------------------

// Collect removes the drop and credits its reward: smaller drops pay
// strictly more. Returns the reward and whether the drop existed.
func (e *Engine) Collect(ctx context.Context, id string) (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, ok := e.drops.Take(id)
	if !ok {
		return 0, false
	}
	reward := e.led.Collect(e.cfg.MaxDropSizePX, d.Size, e.multiplier())
	e.persist(ctx)
	e.record(telemetry.EventDropCollected, telemetry.EventMetadata{"size": d.Size, "reward": reward})
	return reward, true
}

func (e *Engine) BuyRig(ctx context.Context, tier int) bool {
	return e.purchase(ctx, "rig", func() bool { return e.led.BuyRig(e.cfg, tier) })
}

func (e *Engine) BuyMiniRig(ctx context.Context) bool {
	return e.purchase(ctx, "mini_rig", func() bool { return e.led.BuyMiniRig(e.cfg) })
}

func (e *Engine) BuyRefinery(ctx context.Context) bool {
	return e.purchase(ctx, "plastic_refinery", func() bool { return e.led.BuyRefinery(e.cfg) })
}

func (e *Engine) BuyGasRefinery(ctx context.Context) bool {
	return e.purchase(ctx, "gas_refinery", func() bool { return e.led.BuyGasRefinery(e.cfg) })
}

func (e *Engine) BuyGasStation(ctx context.Context) bool {
	return e.purchase(ctx, "gas_station", func() bool { return e.led.BuyGasStation(e.cfg) })
}

func (e *Engine) BuyBottleFactory(ctx context.Context) bool {
	return e.purchase(ctx, "bottle_factory", func() bool { return e.led.BuyBottleFactory(e.cfg) })
}

func (e *Engine) purchase(ctx context.Context, what string, buy func() bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !buy() {
		return false
	}
	e.persist(ctx)
	e.record(telemetry.EventPurchase, telemetry.EventMetadata{"item": what})
	return true
}

// Sell sells a held resource at the current market price: the base price
// scaled by the effective multiplier.
func (e *Engine) Sell(ctx context.Context, kind ledger.Resource, amount int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	var base int64
	switch kind {
	case ledger.ResourcePlastic:
		base = e.cfg.PlasticSellPrice
	case ledger.ResourceGas:
		base = e.cfg.GasSellPrice
	case ledger.ResourceBottles:
		base = e.cfg.BottleSellPrice
	default:
		return false
	}
	unitPrice := base * e.multiplier()
	if !e.led.Sell(kind, amount, unitPrice) {
		return false
	}
	e.persist(ctx)
	e.record(telemetry.EventSale, telemetry.EventMetadata{"resource": string(kind), "amount": amount, "unit_price": unitPrice})
	return true
}

func (e *Engine) Deposit(ctx context.Context, amount int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.led.Deposit(amount) {
		return false
	}
	e.persist(ctx)
	e.record(telemetry.EventBankDeposit, telemetry.EventMetadata{"amount": amount})
	return true
}

func (e *Engine) Withdraw(ctx context.Context, amount int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.led.Withdraw(amount) {
		return false
	}
	e.persist(ctx)
	e.record(telemetry.EventBankWithdraw, telemetry.EventMetadata{"amount": amount})
	return true
}

func (e *Engine) SetBottleBudget(ctx context.Context, amount int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.led.SetBottleBudget(amount)
	e.persist(ctx)
}

// --- admin override channel -------------------------------------------

// AdminGrant credits cash through the privileged path. The limited role is
// clamped to its remaining quota; full admins are unrestricted. Returns
// the amount actually credited.
func (e *Engine) AdminGrant(ctx context.Context, level admin.Level, amount int64) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	var granted int64
	switch level {
	case admin.LevelFull:
		if e.led.Grant(amount) {
			granted = amount
		}
	case admin.LevelLimited:
		granted = e.led.GrantLimited(amount)
	default:
		return 0
	}
	if granted > 0 {
		e.persist(ctx)
		e.record(telemetry.EventAdminGrant, telemetry.EventMetadata{"level": string(level), "amount": granted})
	}
	return granted
}

// AdminRaiseQuota raises the limited role's grant cap. Full admins only.
func (e *Engine) AdminRaiseQuota(ctx context.Context, level admin.Level, amount int64) bool {
	if level != admin.LevelFull {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.led.RaiseAdminLimit(amount) {
		return false
	}
	e.persist(ctx)
	return true
}

func (e *Engine) StartOutage() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events.StartOutage()
	e.record(telemetry.EventMarketEventStarted, telemetry.EventMetadata{"event": "outage", "source": "admin"})
}

func (e *Engine) StopOutage() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.events.OutageActive {
		e.events.StopOutage()
		e.record(telemetry.EventMarketEventEnded, telemetry.EventMetadata{"event": "outage"})
	}
}

func (e *Engine) StartWar() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events.StartWar()
	e.record(telemetry.EventMarketEventStarted, telemetry.EventMetadata{"event": "war", "source": "admin"})
}

func (e *Engine) StopWar() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.events.WarActive {
		e.events.StopWar()
		e.record(telemetry.EventMarketEventEnded, telemetry.EventMetadata{"event": "war"})
	}
}

// StartMoonRun begins the shared cross-session event. Full admins only.
func (e *Engine) StartMoonRun(ctx context.Context, level admin.Level) bool {
	if level != admin.LevelFull {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	dur := time.Duration(e.cfg.MoonRunDurationS) * time.Second
	if _, err := e.moon.Start(ctx, e.clock.Now(), dur); err != nil {
		e.logger.Printf("[game] start moon run: %v", err)
		return false
	}
	e.record(telemetry.EventMarketEventStarted, telemetry.EventMetadata{"event": "moon_run", "source": "admin"})
	return true
}

func (e *Engine) StopMoonRun(ctx context.Context, level admin.Level) bool {
	if level != admin.LevelFull {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.moon.Stop(ctx); err != nil {
		e.logger.Printf("[game] stop moon run: %v", err)
		return false
	}
	e.record(telemetry.EventMarketEventEnded, telemetry.EventMetadata{"event": "moon_run"})
	return true
}

// --- save transport ----------------------------------------------------

// ExportSave renders the live state as a portable save code.
func (e *Engine) ExportSave() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gateway.Export(save.FromLedger(e.led))
}

// ImportSave validates a save code, overwrites durable state and replaces
// the in-memory ledger. A failed validation changes nothing.
func (e *Engine) ImportSave(ctx context.Context, token string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, err := e.gateway.Import(ctx, token)
	if err != nil {
		return err
	}
	e.led = rec.ToLedger()
	e.highScore = e.gateway.HighScore(ctx)
	e.record(telemetry.EventSaveImported, nil)
	return nil
}

// --- timer bodies -------------------------------------------------------

// IncomeTick applies one second of derived production, then lets gas
// stations auto-sell from the freshly produced gas. Production strictly
// precedes the auto-sale within the tick.
func (e *Engine) IncomeTick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	mult := e.multiplier()
	p := e.led.ProductionPerSecond(e.cfg, mult)
	e.led.ApplyProduction(p)
	sold, _ := e.led.AutoSellGas(e.cfg, mult)
	if p != (ledger.Production{}) || sold > 0 {
		e.persist(ctx)
	}
}

// InterestTick counts down one unpaused second; on reaching zero it
// credits floor(savings*rate%) and resets.
func (e *Engine) InterestTick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.interestCountdown--
	if e.interestCountdown > 0 {
		return
	}
	e.interestCountdown = e.cfg.InterestIntervalS
	if interest := e.led.AccrueInterest(e.cfg.InterestRatePct); interest > 0 {
		e.persist(ctx)
		e.record(telemetry.EventInterestPaid, telemetry.EventMetadata{"interest": interest})
	}
}

// EventTick re-syncs the shared slot and advances the local event machine
// by one check interval.
func (e *Engine) EventTick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	ev, err := e.moon.Sync(ctx, now)
	if err != nil {
		e.logger.Printf("[game] shared event sync: %v", err)
	}

	wasOutage, wasWar := e.events.OutageActive, e.events.WarActive
	e.events.Advance(ev.Active(now), e.rng.Float64())

	if !wasOutage && e.events.OutageActive {
		e.record(telemetry.EventMarketEventStarted, telemetry.EventMetadata{"event": "outage", "source": "random"})
	}
	if wasOutage && !e.events.OutageActive {
		e.record(telemetry.EventMarketEventEnded, telemetry.EventMetadata{"event": "outage"})
	}
	if !wasWar && e.events.WarActive {
		e.record(telemetry.EventMarketEventStarted, telemetry.EventMetadata{"event": "war", "source": "random"})
	}
	if wasWar && !e.events.WarActive {
		e.record(telemetry.EventMarketEventEnded, telemetry.EventMetadata{"event": "war"})
	}
}

// SpawnTick creates one drop at a random position and size.
func (e *Engine) SpawnTick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drops.Add(drop.NewRandom(e.rng, e.cfg, e.clock.Now()))
}

// SweepTick removes drops past their lifespan.
func (e *Engine) SweepTick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drops.Sweep(e.clock.Now(), time.Duration(e.cfg.DropLifespanMS)*time.Millisecond)
}

// BottleTick runs one bottle production cycle.
func (e *Engine) BottleTick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if bottles := e.led.ProduceBottles(e.cfg); bottles > 0 {
		e.persist(ctx)
		e.record(telemetry.EventBottlesProduced, telemetry.EventMetadata{"bottles": bottles})
	}
}

// SpawnInterval is the current drop spawn cadence: the outage slows it,
// but an active moon run forces the baseline cadence even if an outage is
// nominally concurrent.
func (e *Engine) SpawnInterval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	interval := e.cfg.DropSpawnIntervalMS
	if e.events.OutageActive {
		interval = e.cfg.OutageDropSpawnIntervalMS
	}
	if e.moon.Current().Active(e.clock.Now()) {
		interval = e.cfg.DropSpawnIntervalMS
	}
	return time.Duration(interval) * time.Millisecond
}

// --- pause model --------------------------------------------------------

// Pause marks the start of a paused span. The scheduler tears its timers
// down around this; the engine only tracks the span so Resume can keep
// drops from aging while paused.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return
	}
	e.paused = true
	e.pausedAt = e.clock.Now()
}

// Resume shifts every live drop's creation timestamp forward by the paused
// duration, preserving remaining lifespan exactly.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.paused {
		return
	}
	e.drops.ShiftCreated(e.clock.Now().Sub(e.pausedAt))
	e.paused = false
}

func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}
