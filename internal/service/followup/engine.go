// internal/service/followup/engine.go
package followup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"postsaathi-service/internal/domain/investment"
	"postsaathi-service/internal/pkg/fieldcrypt"
	"postsaathi-service/internal/service/notify"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	scanLockKey = "followup:scan"
	scanLockTTL = 5 * time.Minute
)

// Engine runs the daily follow-up scan. Each pass is one transaction: read
// all candidate investments, trigger the stages that fall due today, commit.
// The followup_logs dedup check makes a re-run of the same day a no-op.
type Engine struct {
	store  investment.ScanStore
	codec  *fieldcrypt.Codec
	sink   notify.Notifier
	locker *redislock.Client // nil disables the single-runner gate
	logger *zap.Logger

	// agent mobiles may be stored as ciphertext tokens
	decryptAgentMobile bool

	now func() time.Time
}

func NewEngine(
	store investment.ScanStore,
	codec *fieldcrypt.Codec,
	sink notify.Notifier,
	locker *redislock.Client,
	decryptAgentMobile bool,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		store:              store,
		codec:              codec,
		sink:               sink,
		locker:             locker,
		decryptAgentMobile: decryptAgentMobile,
		logger:             logger,
		now:                time.Now,
	}
}

// RunPass executes one scan. It returns the number of stages triggered; a
// pass where nothing is due is a successful zero. When another instance
// holds the scan lock the pass is skipped without error.
func (e *Engine) RunPass(ctx context.Context) (int, error) {
	if e.locker != nil {
		lock, err := e.locker.Obtain(ctx, scanLockKey, scanLockTTL, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			e.logger.Info("scan already running elsewhere, skipping pass")
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("failed to obtain scan lock: %w", err)
		}
		defer lock.Release(context.WithoutCancel(ctx))
	}

	today := truncateToDate(e.now())
	e.logger.Info("running follow-up scan", zap.Time("date", today))

	tx, err := e.store.BeginScan(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	due, err := tx.DueInvestments(ctx)
	if err != nil {
		return 0, err
	}

	triggered := 0
	for _, row := range due {
		ok, err := e.processRow(ctx, tx, row, today)
		if err != nil {
			// One bad row must not starve the rest of the book.
			e.logger.Error("failed to process investment",
				zap.String("investment_id", row.Investment.ID),
				zap.Error(err))
			continue
		}
		if ok {
			triggered++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit scan: %w", err)
	}

	e.logger.Info("follow-up scan complete",
		zap.Int("candidates", len(due)),
		zap.Int("triggered", triggered))
	return triggered, nil
}

func (e *Engine) processRow(ctx context.Context, tx investment.ScanTx, row investment.DueRow, today time.Time) (bool, error) {
	inv := row.Investment
	daysDiff := daysBetween(today, inv.MaturityDate)

	stage, due := stageForDays(daysDiff)
	if !due {
		return false, nil
	}

	exists, err := tx.HasFollowupLog(ctx, inv.ID, stage)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	e.logger.Info("triggering follow-up",
		zap.String("investment_id", inv.ID),
		zap.String("stage", string(stage)),
		zap.Int("days_to_maturity", daysDiff))

	customerName := e.codec.Decrypt(row.CustomerFullName)
	if customerName == "" {
		customerName = "Customer"
	}

	daysParam := "Overdue"
	if daysDiff >= 0 {
		daysParam = fmt.Sprintf("%d", daysDiff)
	}

	params := []string{
		row.AgentName,
		customerName,
		string(inv.SchemeType),
		inv.Principal.String(),
		daysParam,
	}

	// The stage is logged whether or not the sink accepted the message:
	// delivery is best-effort, the audit trail is not.
	if !e.sink.Send(ctx, e.agentMobile(row), notify.TemplateMaturityAlert, params) {
		e.logger.Warn("follow-up notification failed",
			zap.String("investment_id", inv.ID),
			zap.String("stage", string(stage)))
	}

	if err := tx.InsertFollowupLog(ctx, &investment.FollowupLog{
		ID:           uuid.NewString(),
		InvestmentID: inv.ID,
		Stage:        stage,
		SentOn:       today,
	}); err != nil {
		return false, err
	}

	status := investment.StatusFollowup
	if stage == investment.StageMT {
		status = investment.StatusMatured
	}
	if err := tx.UpdateStatusAndStage(ctx, inv.ID, status, stage); err != nil {
		return false, err
	}

	return true, nil
}

func (e *Engine) agentMobile(row investment.DueRow) string {
	if !e.decryptAgentMobile {
		return row.AgentMobile
	}
	if mobile := e.codec.Decrypt(row.AgentMobile); mobile != "" {
		return mobile
	}
	return row.AgentMobile
}

// stageForDays maps an exact day offset to its stage. Offsets between
// checkpoints trigger nothing; a missed day stays missed.
func stageForDays(daysDiff int) (investment.Stage, bool) {
	switch daysDiff {
	case 10:
		return investment.StageF10, true
	case 5:
		return investment.StageF5, true
	case 3:
		return investment.StageF3, true
	case 1:
		return investment.StageF1, true
	case 0:
		return investment.StageMT, true
	case -30:
		return investment.StageP30, true
	}
	return "", false
}

// daysBetween counts whole calendar days from today to the maturity date,
// negative once maturity has passed.
func daysBetween(today, maturity time.Time) int {
	return int(truncateToDate(maturity).Sub(truncateToDate(today)).Hours() / 24)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
