package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radarinvest/backend/internal/contracts"
	"github.com/radarinvest/backend/pkg/logger"
)

type fakeUserRepo struct {
	users []*contracts.User
}

func (f *fakeUserRepo) Get(_ context.Context, id int64) (*contracts.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("user not found")
}

func (f *fakeUserRepo) ListNotifiable(_ context.Context) ([]*contracts.User, error) {
	return f.users, nil
}

type fakeGenerator struct {
	failFor map[int64]bool
	calls   []int64
}

func (f *fakeGenerator) GenerateAll(_ context.Context, user *contracts.User) ([]*contracts.Alert, error) {
	f.calls = append(f.calls, user.ID)
	if f.failFor[user.ID] {
		return nil, errors.New("boom")
	}
	return []*contracts.Alert{{UserID: user.ID}}, nil
}

func TestAlertSweep_CoversEveryNotifiableUser(t *testing.T) {
	gen := &fakeGenerator{}
	job := NewAlertSweepJob(
		&fakeUserRepo{users: []*contracts.User{{ID: 1}, {ID: 2}, {ID: 3}}},
		gen,
		logger.NewNop(),
	)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []int64{1, 2, 3}, gen.calls)
}

func TestAlertSweep_OneFailureDoesNotStopTheRest(t *testing.T) {
	gen := &fakeGenerator{failFor: map[int64]bool{2: true}}
	job := NewAlertSweepJob(
		&fakeUserRepo{users: []*contracts.User{{ID: 1}, {ID: 2}, {ID: 3}}},
		gen,
		logger.NewNop(),
	)

	require.NoError(t, job.Run(context.Background()), "partial failure is logged, not fatal")
	assert.Equal(t, []int64{1, 2, 3}, gen.calls)
}

func TestAlertSweep_AllFailuresFailTheJob(t *testing.T) {
	gen := &fakeGenerator{failFor: map[int64]bool{1: true, 2: true}}
	job := NewAlertSweepJob(
		&fakeUserRepo{users: []*contracts.User{{ID: 1}, {ID: 2}}},
		gen,
		logger.NewNop(),
	)

	assert.Error(t, job.Run(context.Background()))
}

func TestAlertSweep_NoUsers(t *testing.T) {
	job := NewAlertSweepJob(&fakeUserRepo{}, &fakeGenerator{}, logger.NewNop())
	assert.NoError(t, job.Run(context.Background()))
}
