package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vortexpump/wallet-middleware/pkg/keys"
	"github.com/vortexpump/wallet-middleware/pkg/wallet"
	"github.com/vortexpump/wallet-middleware/pkg/walletstore"
)

type fakeStore struct {
	accounts  map[string]*wallet.Account
	createErr error
	getErr    error
	renameErr error
	renameCnt int
	createCnt int
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[string]*wallet.Account)}
}

func (s *fakeStore) CreateIfAbsent(_ context.Context, acct *wallet.Account) (bool, error) {
	s.createCnt++
	if s.createErr != nil {
		return false, s.createErr
	}
	if _, ok := s.accounts[acct.UserID]; ok {
		return false, nil
	}
	cp := *acct
	s.accounts[acct.UserID] = &cp
	return true, nil
}

func (s *fakeStore) Get(_ context.Context, userID string) (*wallet.Account, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	acct, ok := s.accounts[userID]
	if !ok {
		return nil, walletstore.ErrAccountNotFound
	}
	cp := *acct
	return &cp, nil
}

func (s *fakeStore) UpdateDisplayName(_ context.Context, userID, displayName string) error {
	s.renameCnt++
	if s.renameErr != nil {
		return s.renameErr
	}
	acct, ok := s.accounts[userID]
	if !ok {
		return walletstore.ErrAccountNotFound
	}
	acct.DisplayName = displayName
	return nil
}

type fakeCourier struct {
	deliveries []delivery
	err        error
}

type delivery struct {
	userID, publicAddress, secret string
}

func (c *fakeCourier) DeliverSecret(_ context.Context, userID, publicAddress, secret string) error {
	if c.err != nil {
		return c.err
	}
	c.deliveries = append(c.deliveries, delivery{userID, publicAddress, secret})
	return nil
}

func newTestService(t *testing.T, store Store, courier Courier) Service {
	t.Helper()

	masterKey, err := keys.GenerateMasterKey()
	require.NoError(t, err)
	cipher, err := keys.NewMasterKeyCipher(masterKey)
	require.NoError(t, err)

	return NewService(store, GeneratorFunc(keys.Generate), cipher, courier, zap.NewNop())
}

func TestGetOrCreateNewAccount(t *testing.T) {
	store := newFakeStore()
	courier := &fakeCourier{}
	svc := newTestService(t, store, courier)

	resp, err := svc.GetOrCreate(context.Background(), &wallet.ProvisionRequest{
		UserID:      "u1",
		DisplayName: "user one",
	})
	require.NoError(t, err)
	require.True(t, resp.Created)
	require.Equal(t, "u1", resp.UserID)
	require.NotEmpty(t, resp.PublicAddress)
	require.Equal(t, "0", resp.Balance)

	acct := store.accounts["u1"]
	require.NotNil(t, acct)
	require.Equal(t, resp.PublicAddress, acct.PublicAddress)
	require.NotEmpty(t, acct.SecretEncrypted)

	require.Len(t, courier.deliveries, 1)
	d := courier.deliveries[0]
	require.Equal(t, "u1", d.userID)
	require.Equal(t, resp.PublicAddress, d.publicAddress)
	require.NotEmpty(t, d.secret)
	// What hits the store is ciphertext, not the raw secret.
	require.NotEqual(t, d.secret, acct.SecretEncrypted)
}

func TestGetOrCreateIdempotent(t *testing.T) {
	store := newFakeStore()
	courier := &fakeCourier{}
	svc := newTestService(t, store, courier)

	first, err := svc.GetOrCreate(context.Background(), &wallet.ProvisionRequest{UserID: "u1"})
	require.NoError(t, err)
	require.True(t, first.Created)

	second, err := svc.GetOrCreate(context.Background(), &wallet.ProvisionRequest{UserID: "u1"})
	require.NoError(t, err)
	require.False(t, second.Created)
	require.Equal(t, first.PublicAddress, second.PublicAddress)

	require.Len(t, store.accounts, 1)
	// Secret is handed off once, at creation only.
	require.Len(t, courier.deliveries, 1)
}

func TestGetOrCreateRefreshesDisplayName(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &fakeCourier{})

	_, err := svc.GetOrCreate(context.Background(), &wallet.ProvisionRequest{UserID: "u1", DisplayName: "old"})
	require.NoError(t, err)

	resp, err := svc.GetOrCreate(context.Background(), &wallet.ProvisionRequest{UserID: "u1", DisplayName: "new"})
	require.NoError(t, err)
	require.Equal(t, "new", resp.DisplayName)
	require.Equal(t, "new", store.accounts["u1"].DisplayName)
}

func TestGetOrCreateDisplayNameRefreshBestEffort(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &fakeCourier{})

	_, err := svc.GetOrCreate(context.Background(), &wallet.ProvisionRequest{UserID: "u1", DisplayName: "old"})
	require.NoError(t, err)

	store.renameErr = errors.New("write failed")
	resp, err := svc.GetOrCreate(context.Background(), &wallet.ProvisionRequest{UserID: "u1", DisplayName: "new"})
	require.NoError(t, err)
	require.False(t, resp.Created)
	require.Equal(t, "old", resp.DisplayName)
}

func TestGetOrCreateStorageError(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("backend unavailable")
	svc := newTestService(t, store, &fakeCourier{})

	_, err := svc.GetOrCreate(context.Background(), &wallet.ProvisionRequest{UserID: "u1"})
	require.Error(t, err)
}

func TestGetOrCreateCourierFailure(t *testing.T) {
	store := newFakeStore()
	courier := &fakeCourier{err: errors.New("channel closed")}
	svc := newTestService(t, store, courier)

	_, err := svc.GetOrCreate(context.Background(), &wallet.ProvisionRequest{UserID: "u1"})
	require.ErrorIs(t, err, ErrSecretDeliveryFailed)

	// The account stays persisted even when delivery fails.
	require.Len(t, store.accounts, 1)
}

func TestGetOrCreateResponseNeverCarriesSecret(t *testing.T) {
	store := newFakeStore()
	courier := &fakeCourier{}
	svc := newTestService(t, store, courier)

	resp, err := svc.GetOrCreate(context.Background(), &wallet.ProvisionRequest{UserID: "u1"})
	require.NoError(t, err)

	secret := courier.deliveries[0].secret
	require.NotEqual(t, secret, resp.PublicAddress)
	require.NotContains(t, resp.Balance, secret)
}
