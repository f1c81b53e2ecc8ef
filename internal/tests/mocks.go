package tests

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"driverops/internal/domain"
	"driverops/internal/redis"
	"driverops/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreateCallCount          int32
	UpdateStatusCallCount    int32
	IncrementStrikeCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Status = status
	return nil
}

func (m *MockDriverRepository) IncrementStrike(ctx context.Context, id string, strike domain.StrikeType) error {
	atomic.AddInt32(&m.IncrementStrikeCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	switch strike {
	case domain.StrikeLight:
		driver.LightStrikes++
	case domain.StrikeFull:
		driver.FullStrikes++
	}
	return nil
}

// GetDriver returns driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[ride.ID]; !ok {
		return repository.ErrNotFound
	}
	m.rides[ride.ID] = ride
	return nil
}

// GetRide returns the ride by ID (for test assertions).
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

// CountRides returns the number of rides.
func (m *MockRideRepository) CountRides() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rides)
}

// ──────────────────────────────────────────────
// MOCK SUBSCRIPTION REPOSITORY
// ──────────────────────────────────────────────

// MockSubscriptionRepository is a mock implementation of SubscriptionRepository.
type MockSubscriptionRepository struct {
	mu   sync.RWMutex
	subs map[string]*domain.DriverSubscription

	// Counters
	CreateCallCount                    int32
	UpdateLastOvertimeBillingCallCount int32

	// Error injection
	CreateError error
}

// NewMockSubscriptionRepository creates a new mock subscription repository.
func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{
		subs: make(map[string]*domain.DriverSubscription),
	}
}

// AddSubscription adds a subscription to the mock repository.
func (m *MockSubscriptionRepository) AddSubscription(sub *domain.DriverSubscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub.ID] = sub
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, sub *domain.DriverSubscription) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub.ID] = sub
	return nil
}

func (m *MockSubscriptionRepository) GetLatest(ctx context.Context, driverID string) (*domain.DriverSubscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.DriverSubscription
	for _, s := range m.subs {
		if s.DriverID != driverID {
			continue
		}
		if latest == nil || s.ExpireAt.After(latest.ExpireAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	copy := *latest
	return &copy, nil
}

func (m *MockSubscriptionRepository) GetLatestExpired(ctx context.Context, driverID string, now time.Time) (*domain.DriverSubscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.DriverSubscription
	for _, s := range m.subs {
		if s.DriverID != driverID || !s.ExpireAt.Before(now) {
			continue
		}
		if latest == nil || s.ExpireAt.After(latest.ExpireAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	copy := *latest
	return &copy, nil
}

func (m *MockSubscriptionRepository) UpdateLastOvertimeBilling(ctx context.Context, id string, checkpoint time.Time) error {
	atomic.AddInt32(&m.UpdateLastOvertimeBillingCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[id]
	if !ok {
		return repository.ErrNotFound
	}
	cp := checkpoint
	sub.LastOvertimeBillingAt = &cp
	return nil
}

// GetSubscription returns subscription for assertions.
func (m *MockSubscriptionRepository) GetSubscription(id string) *domain.DriverSubscription {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.subs[id]
}

// CountSubscriptions returns the number of subscriptions.
func (m *MockSubscriptionRepository) CountSubscriptions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs)
}

// ──────────────────────────────────────────────
// MOCK WALLET REPOSITORY
// ──────────────────────────────────────────────

// MockWalletRepository is a mock implementation of WalletRepository.
type MockWalletRepository struct {
	mu           sync.RWMutex
	wallets      map[string]*domain.DriverWallet
	transactions []*domain.WalletTransaction

	// Counters
	CreateCallCount            int32
	UpdateBalanceCallCount     int32
	CreateTransactionCallCount int32

	// Error injection
	CreateTransactionError error
}

// NewMockWalletRepository creates a new mock wallet repository.
func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make(map[string]*domain.DriverWallet),
	}
}

// AddWallet adds a wallet to the mock repository.
func (m *MockWalletRepository) AddWallet(wallet *domain.DriverWallet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[wallet.ID] = wallet
}

func (m *MockWalletRepository) GetByDriver(ctx context.Context, driverID string) (*domain.DriverWallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.wallets {
		if w.DriverID == driverID {
			copy := *w
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *domain.DriverWallet) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[wallet.ID] = wallet
	return nil
}

func (m *MockWalletRepository) UpdateBalance(ctx context.Context, id string, balance float64) error {
	atomic.AddInt32(&m.UpdateBalanceCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	wallet, ok := m.wallets[id]
	if !ok {
		return repository.ErrNotFound
	}
	wallet.Balance = balance
	return nil
}

func (m *MockWalletRepository) CreateTransaction(ctx context.Context, tx *domain.WalletTransaction) error {
	atomic.AddInt32(&m.CreateTransactionCallCount, 1)
	if m.CreateTransactionError != nil {
		return m.CreateTransactionError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, tx)
	return nil
}

func (m *MockWalletRepository) ListTransactionsByDriver(ctx context.Context, driverID string) ([]*domain.WalletTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.WalletTransaction, 0)
	for _, t := range m.transactions {
		if t.DriverID == driverID {
			copy := *t
			result = append(result, &copy)
		}
	}
	// Newest first, matching the SQL implementation.
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// GetWalletByDriver returns the wallet for assertions.
func (m *MockWalletRepository) GetWalletByDriver(driverID string) *domain.DriverWallet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.wallets {
		if w.DriverID == driverID {
			return w
		}
	}
	return nil
}

// CountTransactions returns the number of ledger entries.
func (m *MockWalletRepository) CountTransactions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.transactions)
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of LocationStoreInterface.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations map[string]redis.DriverLocation

	// Counters
	UpdateLocationCallCount int32

	// Error injection
	UpdateLocationError error
	GetLocationError    error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		locations: make(map[string]redis.DriverLocation),
	}
}

// SetDriverLocation seeds a driver location for test setup.
func (m *MockLocationStore) SetDriverLocation(driverID string, lat, lng float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[driverID] = redis.DriverLocation{DriverID: driverID, Lat: lat, Lng: lng}
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	atomic.AddInt32(&m.UpdateLocationCallCount, 1)
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[driverID] = redis.DriverLocation{DriverID: driverID, Lat: lat, Lng: lng}
	return nil
}

func (m *MockLocationStore) GetLocation(ctx context.Context, driverID string) (*redis.DriverLocation, error) {
	if m.GetLocationError != nil {
		return nil, m.GetLocationError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.locations[driverID]
	if !ok {
		return nil, nil
	}
	copy := loc
	return &copy, nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locations, driverID)
	return nil
}

// HasLocation checks if a driver location exists.
func (m *MockLocationStore) HasLocation(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.locations[driverID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireBillingLock(ctx context.Context, driverID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:billing:" + driverID
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseBillingLock(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:billing:"+driverID)
	return nil
}

// IsLocked checks if a driver's billing is locked (for test assertions).
func (m *MockLockStore) IsLocked(driverID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:billing:"+driverID]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)
