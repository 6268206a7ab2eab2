package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"WalletWatch/internal/model"
	"WalletWatch/internal/notifier"
	"WalletWatch/internal/scheduler"
	"WalletWatch/internal/snapshot"
	"WalletWatch/internal/store"
)

// ErrNoProfile is returned when an operation needs a profile the user
// has not created yet.
var ErrNoProfile = errors.New("profile not set up")

// PriceResolver obtains a consistent price set with its provenance.
type PriceResolver interface {
	Resolve(ctx context.Context) (model.PriceSet, model.Source, error)
}

// Bot wires the profile store, the price resolver and the schedule
// manager behind the Telegram command surface.
type Bot struct {
	store    store.Store
	resolver PriceResolver
	sched    *scheduler.Manager
	timeout  time.Duration
}

func New(st store.Store, resolver PriceResolver, sched *scheduler.Manager, timeout time.Duration) *Bot {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Bot{store: st, resolver: resolver, sched: sched, timeout: timeout}
}

const startText = "Hi! I track a ZRO/BNB/USDT wallet and report its value against your setup baselines.\n" +
	"Commands:\n" +
	"• /setup — set quantities and (optionally) a daily report time\n" +
	"• /prices — current valuation\n" +
	"• /time HH:MM — daily report at that UTC time\n" +
	"• /stop — cancel the daily report\n"

const setupUsage = "Send /setup with one line per asset.\nExample:\n\n" +
	"/setup\nZRO 750.034\nBNB 0.01\nUSDT 0\nfZRO 1040\nat 18:30"

// HandleCommand processes one incoming message and returns the reply
// text, or "" when the message needs no answer.
func (b *Bot) HandleCommand(userID int64, text string) string {
	head, body, _ := strings.Cut(text, "\n")
	fields := strings.Fields(head)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	name := strings.ToLower(fields[0])
	if at := strings.Index(name, "@"); at > 0 {
		name = name[:at]
	}

	switch name {
	case "/start":
		return startText
	case "/setup":
		return b.handleSetup(userID, body)
	case "/time":
		if len(fields) != 2 {
			return "Send the time as /time HH:MM (UTC). Example: /time 18:30"
		}
		return b.handleTime(userID, fields[1])
	case "/prices":
		return b.handlePrices(userID)
	case "/stop":
		return b.handleStop(userID)
	}
	// Unrecognized commands get no reply, same as plain chatter.
	return ""
}

// handleSetup stores quantities and captures the current prices as the
// change baselines. An "at HH:MM" line also (re)schedules the daily
// report; without one an existing schedule is left untouched.
func (b *Bot) handleSetup(userID int64, body string) string {
	if strings.TrimSpace(body) == "" {
		return setupUsage
	}
	req := ParseSetup(body)

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	prices, source, err := b.resolver.Resolve(ctx)
	if err != nil {
		log.Printf("[ERROR] setup for user %d: %v", userID, err)
		return "Could not fetch prices right now. Please try /setup again."
	}

	baselines := make(map[string]float64, len(prices))
	for sym, q := range prices {
		baselines[sym] = q.PriceUSD
	}

	prof := &model.Profile{
		UserID:    userID,
		Holdings:  req.Holdings,
		Placebo:   req.Placebo,
		Baselines: baselines,
		Schedule:  req.Schedule,
		CreatedAt: time.Now().UTC(),
	}
	if existing, err := b.store.GetProfile(userID); err == nil && existing != nil {
		if !existing.CreatedAt.IsZero() {
			prof.CreatedAt = existing.CreatedAt
		}
		if prof.Schedule == nil {
			prof.Schedule = existing.Schedule
		}
	}
	if err := b.store.UpsertProfile(prof); err != nil {
		log.Printf("[ERROR] save profile for user %d: %v", userID, err)
		return "Could not save your profile. Please try again."
	}
	if req.Schedule != nil {
		if err := b.sched.Set(userID, req.Schedule.Hour, req.Schedule.Minute); err != nil {
			log.Printf("[ERROR] schedule for user %d: %v", userID, err)
		}
	}

	var sb strings.Builder
	sb.WriteString("Saved ✅\n")
	sb.WriteString(fmt.Sprintf("ZRO: %g\nBNB: %g\nUSDT: %g\nfZRO: %g\n",
		req.Holdings[model.SymbolZRO], req.Holdings[model.SymbolBNB],
		req.Holdings[model.SymbolUSDT], req.Placebo))
	sb.WriteString(fmt.Sprintf("Baseline prices (USD): ZRO=%.4f, BNB=%.4f, USDT=%.4f\n",
		baselines[model.SymbolZRO], baselines[model.SymbolBNB], baselines[model.SymbolUSDT]))
	sb.WriteString(fmt.Sprintf("Price source: %s\n", sourceLabel(source)))
	if prof.Schedule != nil {
		sb.WriteString(fmt.Sprintf("Daily report at %02d:%02d UTC.", prof.Schedule.Hour, prof.Schedule.Minute))
	} else {
		sb.WriteString("No daily report scheduled (set one with /time HH:MM).")
	}
	return sb.String()
}

func (b *Bot) handleTime(userID int64, arg string) string {
	dt, err := ParseDailyTime(arg)
	if err != nil {
		return "Invalid time format. Use /time HH:MM (UTC), e.g. /time 18:30"
	}
	prof, err := b.store.GetProfile(userID)
	if err != nil {
		log.Printf("[ERROR] load profile for user %d: %v", userID, err)
		return "Could not load your profile. Please try again."
	}
	if prof == nil {
		return "Run /setup with your token quantities first."
	}
	prof.Schedule = dt
	if err := b.store.UpsertProfile(prof); err != nil {
		log.Printf("[ERROR] save schedule for user %d: %v", userID, err)
		return "Could not save the schedule. Please try again."
	}
	if err := b.sched.Set(userID, dt.Hour, dt.Minute); err != nil {
		log.Printf("[ERROR] schedule for user %d: %v", userID, err)
		return "Could not register the schedule. Please try again."
	}
	return fmt.Sprintf("Done! I will send the daily report at %02d:%02d UTC.", dt.Hour, dt.Minute)
}

func (b *Bot) handlePrices(userID int64) string {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	snap, err := b.Snapshot(ctx, userID)
	if errors.Is(err, ErrNoProfile) {
		return "Run /setup first to register your token quantities."
	}
	if err != nil {
		log.Printf("[ERROR] prices for user %d: %v", userID, err)
		return "Could not fetch prices right now. Please try again later."
	}
	return notifier.FormatSnapshot(snap)
}

func (b *Bot) handleStop(userID int64) string {
	prof, err := b.store.GetProfile(userID)
	if err != nil {
		log.Printf("[ERROR] load profile for user %d: %v", userID, err)
		return "Could not load your profile. Please try again."
	}
	b.sched.Clear(userID)
	if prof != nil && prof.Schedule != nil {
		prof.Schedule = nil
		if err := b.store.UpsertProfile(prof); err != nil {
			log.Printf("[ERROR] clear schedule for user %d: %v", userID, err)
		}
	}
	return "Daily report cancelled. Set a new one with /time HH:MM."
}

// Snapshot is the valuation pipeline shared by /prices and scheduled
// reports: load profile, resolve prices, build the snapshot.
func (b *Bot) Snapshot(ctx context.Context, userID int64) (*model.Snapshot, error) {
	prof, err := b.store.GetProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if prof == nil {
		return nil, ErrNoProfile
	}
	prices, source, err := b.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Build(prof, prices, source), nil
}

// RestoreSchedules re-registers the daily jobs of every stored profile
// that has one. Called once at startup.
func (b *Bot) RestoreSchedules() error {
	profiles, err := b.store.ListScheduled()
	if err != nil {
		return fmt.Errorf("list scheduled profiles: %w", err)
	}
	for _, p := range profiles {
		if err := b.sched.Set(p.UserID, p.Schedule.Hour, p.Schedule.Minute); err != nil {
			log.Printf("[WARN] restore schedule for user %d: %v", p.UserID, err)
		}
	}
	log.Printf("[INFO] restored %d daily schedules", len(profiles))
	return nil
}

func sourceLabel(s model.Source) string {
	switch s {
	case model.SourcePrimary:
		return "Binance"
	case model.SourceSecondary:
		return "CoinGecko"
	case model.SourceCache:
		return "cache"
	}
	return string(s)
}
