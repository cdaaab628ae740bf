// Package dbmem is an in-memory database.Store for tests and for running
// the CLI without postgres.
package dbmem

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/xerrors"

	"github.com/coder/secretcrypt/database"
)

// New returns an in-memory fake of the database.
func New() database.Store {
	return NewWithClock(quartz.NewReal())
}

// NewWithClock returns an in-memory fake that stamps rows inserted or
// updated without a timestamp using clock.
func NewWithClock(clock quartz.Clock) database.Store {
	return &FakeQuerier{
		mutex: &sync.RWMutex{},
		clock: clock,
		data: &data{
			providerConfigs: make([]database.ProviderConfig, 0),
		},
	}
}

type rwMutex interface {
	Lock()
	RLock()
	Unlock()
	RUnlock()
}

// inTxMutex is a no op, since inside a transaction we are already locked.
type inTxMutex struct{}

func (inTxMutex) Lock()    {}
func (inTxMutex) RLock()   {}
func (inTxMutex) Unlock()  {}
func (inTxMutex) RUnlock() {}

// FakeQuerier replicates database functionality to enable quick testing.
type FakeQuerier struct {
	mutex rwMutex
	clock quartz.Clock
	*data
}

type data struct {
	providerConfigs []database.ProviderConfig
}

func (q *FakeQuerier) lock() rwMutex {
	return q.mutex
}

func (*FakeQuerier) Wrappers() []string {
	return []string{}
}

func (*FakeQuerier) Ping(_ context.Context) (time.Duration, error) {
	return 0, nil
}

// InTx runs fn against a snapshot of the data and only keeps the changes
// when fn succeeds.
func (q *FakeQuerier) InTx(fn func(database.Store) error, _ *sql.TxOptions) error {
	if _, ok := q.mutex.(inTxMutex); ok {
		return fn(q)
	}

	m := q.lock()
	m.Lock()
	defer m.Unlock()

	snapshot := &data{
		providerConfigs: append([]database.ProviderConfig(nil), q.providerConfigs...),
	}
	tx := &FakeQuerier{mutex: inTxMutex{}, clock: q.clock, data: snapshot}
	if err := fn(tx); err != nil {
		return xerrors.Errorf("execute transaction: %w", err)
	}
	q.data.providerConfigs = snapshot.providerConfigs
	return nil
}

func uniqueViolation(constraint database.UniqueConstraint) error {
	return &pq.Error{
		Code:       "23505",
		Message:    "duplicate key value violates unique constraint",
		Constraint: string(constraint),
	}
}

func (q *FakeQuerier) GetProviderConfigByID(_ context.Context, id uuid.UUID) (database.ProviderConfig, error) {
	m := q.lock()
	m.RLock()
	defer m.RUnlock()

	for _, pc := range q.providerConfigs {
		if pc.ID == id {
			return pc, nil
		}
	}
	return database.ProviderConfig{}, sql.ErrNoRows
}

func (q *FakeQuerier) GetProviderConfigByName(_ context.Context, name string) (database.ProviderConfig, error) {
	m := q.lock()
	m.RLock()
	defer m.RUnlock()

	for _, pc := range q.providerConfigs {
		if strings.EqualFold(pc.Name, name) {
			return pc, nil
		}
	}
	return database.ProviderConfig{}, sql.ErrNoRows
}

func (q *FakeQuerier) GetProviderConfigs(_ context.Context) ([]database.ProviderConfig, error) {
	m := q.lock()
	m.RLock()
	defer m.RUnlock()

	configs := append([]database.ProviderConfig{}, q.providerConfigs...)
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Name < configs[j].Name
	})
	return configs, nil
}

func (q *FakeQuerier) InsertProviderConfig(_ context.Context, arg database.InsertProviderConfigParams) (database.ProviderConfig, error) {
	m := q.lock()
	m.Lock()
	defer m.Unlock()

	for _, pc := range q.providerConfigs {
		if pc.ID == arg.ID {
			return database.ProviderConfig{}, uniqueViolation(database.UniqueProviderConfigsPkey)
		}
		if strings.EqualFold(pc.Name, arg.Name) {
			return database.ProviderConfig{}, uniqueViolation(database.UniqueProviderConfigsLowerName)
		}
	}

	if arg.CreatedAt.IsZero() {
		arg.CreatedAt = database.Time(q.clock.Now())
	}
	if arg.UpdatedAt.IsZero() {
		arg.UpdatedAt = arg.CreatedAt
	}

	//nolint:gosimple
	pc := database.ProviderConfig{
		ID:              arg.ID,
		Name:            arg.Name,
		Provider:        arg.Provider,
		BaseURL:         arg.BaseURL,
		APIKey:          arg.APIKey,
		AccessKeyID:     arg.AccessKeyID,
		SecretAccessKey: arg.SecretAccessKey,
		CreatedAt:       arg.CreatedAt,
		UpdatedAt:       arg.UpdatedAt,
	}
	q.providerConfigs = append(q.providerConfigs, pc)
	return pc, nil
}

func (q *FakeQuerier) UpdateProviderConfig(_ context.Context, arg database.UpdateProviderConfigParams) (database.ProviderConfig, error) {
	m := q.lock()
	m.Lock()
	defer m.Unlock()

	for i, pc := range q.providerConfigs {
		if pc.ID != arg.ID {
			continue
		}
		pc.Provider = arg.Provider
		pc.BaseURL = arg.BaseURL
		pc.APIKey = arg.APIKey
		pc.AccessKeyID = arg.AccessKeyID
		pc.SecretAccessKey = arg.SecretAccessKey
		pc.UpdatedAt = arg.UpdatedAt
		if pc.UpdatedAt.IsZero() {
			pc.UpdatedAt = database.Time(q.clock.Now())
		}
		q.providerConfigs[i] = pc
		return pc, nil
	}
	return database.ProviderConfig{}, sql.ErrNoRows
}

func (q *FakeQuerier) DeleteProviderConfig(_ context.Context, id uuid.UUID) error {
	m := q.lock()
	m.Lock()
	defer m.Unlock()

	for i, pc := range q.providerConfigs {
		if pc.ID == id {
			q.providerConfigs = append(q.providerConfigs[:i], q.providerConfigs[i+1:]...)
			return nil
		}
	}
	return nil
}
