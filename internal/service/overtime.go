package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"driverops/internal/domain"
	"driverops/internal/redis"
	"driverops/internal/repository"
	"driverops/internal/repository/postgres"
)

const billingLockTTL = 30 * time.Second

// OvertimeConfig contains overtime billing configuration.
type OvertimeConfig struct {
	// HourlyRate is charged per whole hour worked past expiry.
	HourlyRate float64

	// GracePeriod is how long past expiry a driver may keep working
	// while accruing overtime before being forced offline.
	GracePeriod time.Duration
}

// DefaultOvertimeConfig returns the production overtime configuration.
func DefaultOvertimeConfig() OvertimeConfig {
	return OvertimeConfig{
		HourlyRate:  10,
		GracePeriod: 4 * time.Hour,
	}
}

// OvertimePlan is the billable state of an expired subscription at a
// point in time, computed without touching storage.
type OvertimePlan struct {
	SubscriptionID string

	// Checkpoint is the instant up to which overtime was already billed.
	// NextCheckpoint is Checkpoint plus the whole hours billed now; the
	// remainder of a partial hour stays unbilled until it completes.
	Checkpoint     time.Time
	NextCheckpoint time.Time

	HoursToBill int
	Charge      float64

	GraceEndsAt         time.Time
	GracePeriodEnded    bool
	GraceHoursRemaining float64
}

// PlanOvertime computes what an overtime billing run would charge for the
// given expired subscription at now. Pure; the transactional code calls
// it again on locked rows before writing anything.
func PlanOvertime(sub *domain.DriverSubscription, now time.Time, cfg OvertimeConfig) OvertimePlan {
	graceEnd := sub.ExpireAt.Add(cfg.GracePeriod)

	graceRemaining := graceEnd.Sub(now).Hours()
	if graceRemaining < 0 {
		graceRemaining = 0
	}

	checkpoint := sub.ExpireAt
	if sub.LastOvertimeBillingAt != nil {
		checkpoint = *sub.LastOvertimeBillingAt
	}

	// Billing never extends past the grace boundary.
	billableEnd := now
	if billableEnd.After(graceEnd) {
		billableEnd = graceEnd
	}

	hours := 0
	if billableEnd.After(checkpoint) {
		hours = int(math.Floor(billableEnd.Sub(checkpoint).Hours()))
	}

	return OvertimePlan{
		SubscriptionID:      sub.ID,
		Checkpoint:          checkpoint,
		NextCheckpoint:      checkpoint.Add(time.Duration(hours) * time.Hour),
		HoursToBill:         hours,
		Charge:              float64(hours) * cfg.HourlyRate,
		GraceEndsAt:         graceEnd,
		GracePeriodEnded:    now.After(graceEnd),
		GraceHoursRemaining: graceRemaining,
	}
}

// OvertimeResult is the outcome of one overtime billing run.
type OvertimeResult struct {
	DriverID       string
	SubscriptionID string

	HoursBilled   int
	Charge        float64
	WalletBalance float64

	// BilledThrough is the checkpoint after this run.
	BilledThrough time.Time

	GraceEndsAt         time.Time
	GracePeriodEnded    bool
	GraceHoursRemaining float64
}

// GraceStatus is the read-only answer to "may this driver stay online".
type GraceStatus struct {
	DriverID string

	// HasExpiredSubscription is false for drivers with no expired
	// subscription at all; the remaining fields are then zero.
	HasExpiredSubscription bool

	InGrace             bool
	GracePeriodEnded    bool
	GraceHoursRemaining float64
	GraceEndsAt         *time.Time
}

// OvertimeService bills drivers for hours worked past subscription expiry.
// All wallet and checkpoint writes for one run happen in a single SQL
// transaction with row locks, so concurrent runs for the same driver
// serialize and never bill the same hour twice.
type OvertimeService struct {
	db                  *sql.DB
	subscriptionRepo    repository.SubscriptionRepository
	walletRepo          repository.WalletRepository
	lockStore           redis.LockStoreInterface
	cacheStore          *redis.CacheStore
	notificationService *NotificationService
	cfg                 OvertimeConfig
}

// NewOvertimeService creates a new OvertimeService.
func NewOvertimeService(
	db *sql.DB,
	subscriptionRepo repository.SubscriptionRepository,
	walletRepo repository.WalletRepository,
	lockStore redis.LockStoreInterface,
	cacheStore *redis.CacheStore,
	notificationService *NotificationService,
	cfg OvertimeConfig,
) *OvertimeService {
	return &OvertimeService{
		db:                  db,
		subscriptionRepo:    subscriptionRepo,
		walletRepo:          walletRepo,
		lockStore:           lockStore,
		cacheStore:          cacheStore,
		notificationService: notificationService,
		cfg:                 cfg,
	}
}

// ApplyOvertimeBilling charges the driver for whole hours elapsed since
// the last billing checkpoint, capped at the grace boundary. Returns
// (nil, nil) when the driver has no expired subscription. A zero-hour run
// writes nothing and just reports the wallet balance and grace state.
func (s *OvertimeService) ApplyOvertimeBilling(ctx context.Context, driverID string, now time.Time) (*OvertimeResult, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	sub, err := s.subscriptionRepo.GetLatestExpired(ctx, driverID, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	plan := PlanOvertime(sub, now, s.cfg)

	if plan.HoursToBill == 0 {
		balance, err := s.currentBalance(ctx, driverID)
		if err != nil {
			return nil, err
		}
		return s.result(driverID, plan, 0, 0, balance), nil
	}

	// Keep concurrent runs for the same driver from piling onto the row
	// locks. The transaction below is still the correctness guarantee.
	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireBillingLock(ctx, driverID, billingLockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			return nil, ErrBillingInProgress
		}
		defer func() { _ = s.lockStore.ReleaseBillingLock(ctx, driverID) }()
	}

	result, err := s.chargeInTx(ctx, driverID, now)
	if err != nil {
		return nil, err
	}

	s.invalidateCaches(ctx, driverID)

	// Best effort: billing never fails because a notification did.
	if s.notificationService != nil && result.HoursBilled > 0 {
		_ = s.notificationService.NotifyOvertimeCharged(ctx, driverID, result.HoursBilled, result.Charge, result.WalletBalance)
	}

	return result, nil
}

// chargeInTx re-reads the subscription and wallet under row locks,
// recomputes the plan, debits the wallet, appends the ledger entry, and
// advances the checkpoint. All of it commits or none of it does.
func (s *OvertimeService) chargeInTx(ctx context.Context, driverID string, now time.Time) (result *OvertimeResult, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Create transaction-scoped repositories.
	txSubRepo := postgres.NewSubscriptionRepositoryWithTx(tx)
	txWalletRepo := postgres.NewWalletRepositoryWithTx(tx)

	sub, err := txSubRepo.GetLatestExpiredForUpdate(ctx, driverID, now)
	if err != nil {
		return nil, err
	}

	// The checkpoint may have moved while we waited for the lock.
	plan := PlanOvertime(sub, now, s.cfg)
	if plan.HoursToBill == 0 {
		_ = tx.Rollback()
		balance, berr := s.currentBalance(ctx, driverID)
		if berr != nil {
			return nil, berr
		}
		return s.result(driverID, plan, 0, 0, balance), nil
	}

	wallet, err := txWalletRepo.GetByDriverForUpdate(ctx, driverID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		wallet = &domain.DriverWallet{
			ID:        uuid.New().String(),
			DriverID:  driverID,
			Balance:   0,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = txWalletRepo.Create(ctx, wallet); err != nil {
			return nil, err
		}
	}

	balanceBefore := wallet.Balance
	balanceAfter := balanceBefore - plan.Charge

	// Overtime may overdraw the wallet; the balance is signed.
	if err = txWalletRepo.UpdateBalance(ctx, wallet.ID, balanceAfter); err != nil {
		return nil, err
	}

	ledgerEntry := &domain.WalletTransaction{
		ID:             uuid.New().String(),
		WalletID:       wallet.ID,
		DriverID:       driverID,
		SubscriptionID: sub.ID,
		Type:           domain.WalletTransactionDebit,
		Amount:         plan.Charge,
		BalanceBefore:  balanceBefore,
		BalanceAfter:   balanceAfter,
		Description:    fmt.Sprintf("overtime charge for %d hour(s) past subscription expiry", plan.HoursToBill),
		CreatedAt:      now,
	}
	if err = txWalletRepo.CreateTransaction(ctx, ledgerEntry); err != nil {
		return nil, err
	}

	// Advance by whole billed hours, not to now, so the partial hour in
	// flight is billed by a later run instead of being lost.
	if err = txSubRepo.UpdateLastOvertimeBilling(ctx, sub.ID, plan.NextCheckpoint); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return s.result(driverID, plan, plan.HoursToBill, plan.Charge, balanceAfter), nil
}

// GraceStatus reports whether the driver is inside the post-expiry grace
// window. Read-only; results are cached briefly.
func (s *OvertimeService) GraceStatus(ctx context.Context, driverID string, now time.Time) (*GraceStatus, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	if s.cacheStore != nil {
		if cached, err := s.cacheStore.GetGraceStatus(ctx, driverID); err == nil && cached != nil {
			return &GraceStatus{
				DriverID:               driverID,
				HasExpiredSubscription: cached.InGrace || cached.GraceEnded,
				InGrace:                cached.InGrace,
				GracePeriodEnded:       cached.GraceEnded,
				GraceHoursRemaining:    cached.HoursRemaining,
			}, nil
		}
	}

	sub, err := s.subscriptionRepo.GetLatestExpired(ctx, driverID, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &GraceStatus{DriverID: driverID}, nil
		}
		return nil, err
	}

	plan := PlanOvertime(sub, now, s.cfg)
	graceEnds := plan.GraceEndsAt
	status := &GraceStatus{
		DriverID:               driverID,
		HasExpiredSubscription: true,
		InGrace:                !plan.GracePeriodEnded,
		GracePeriodEnded:       plan.GracePeriodEnded,
		GraceHoursRemaining:    plan.GraceHoursRemaining,
		GraceEndsAt:            &graceEnds,
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetGraceStatus(ctx, &redis.CachedGraceStatus{
			DriverID:       driverID,
			InGrace:        status.InGrace,
			GraceEnded:     status.GracePeriodEnded,
			HoursRemaining: status.GraceHoursRemaining,
		})
	}

	return status, nil
}

func (s *OvertimeService) currentBalance(ctx context.Context, driverID string) (float64, error) {
	wallet, err := s.walletRepo.GetByDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return wallet.Balance, nil
}

func (s *OvertimeService) result(driverID string, plan OvertimePlan, hours int, charge, balance float64) *OvertimeResult {
	billedThrough := plan.Checkpoint
	if hours > 0 {
		billedThrough = plan.NextCheckpoint
	}
	return &OvertimeResult{
		DriverID:            driverID,
		SubscriptionID:      plan.SubscriptionID,
		HoursBilled:         hours,
		Charge:              charge,
		WalletBalance:       balance,
		BilledThrough:       billedThrough,
		GraceEndsAt:         plan.GraceEndsAt,
		GracePeriodEnded:    plan.GracePeriodEnded,
		GraceHoursRemaining: plan.GraceHoursRemaining,
	}
}

func (s *OvertimeService) invalidateCaches(ctx context.Context, driverID string) {
	if s.cacheStore == nil {
		return
	}
	_ = s.cacheStore.InvalidateWallet(ctx, driverID)
	_ = s.cacheStore.InvalidateGraceStatus(ctx, driverID)
}
