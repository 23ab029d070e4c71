package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	assetservice "brique/internal/asset/service"
	assetstore "brique/internal/asset/store"
	"brique/internal/factory/store"
	"brique/internal/ledger"
	id "brique/pkg/domain"
	dErrors "brique/pkg/domain-errors"
	"brique/pkg/platform/events"
)

var (
	platformOwner = addr("0x00000000000000000000000000000000000000aa")
	issuerOne     = addr("0x00000000000000000000000000000000000000bb")
	issuerTwo     = addr("0x00000000000000000000000000000000000000cc")
)

func addr(s string) id.Address {
	a, err := id.ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

type allowAllVerifier struct{}

func (allowAllVerifier) IsVerified(context.Context, id.Address) (bool, error) { return true, nil }

type recordingPublisher struct {
	emitted []events.Event
}

func (p *recordingPublisher) Emit(_ context.Context, ev events.Event) error {
	p.emitted = append(p.emitted, ev)
	return nil
}

func newService() (*Service, *assetservice.Service, *recordingPublisher) {
	pub := &recordingPublisher{}
	tx := ledger.NewSerialTx()
	assets := assetservice.New(assetstore.NewInMemory(), allowAllVerifier{}, platformOwner, tx)
	factory := New(store.NewInMemory(), assets, platformOwner, tx, WithEventPublisher(pub))
	return factory, assets, pub
}

func TestCreateAsset(t *testing.T) {
	ctx := context.Background()
	factory, assets, pub := newService()

	asset, err := factory.CreateAsset(ctx, platformOwner, "Villa Borghese 7", "VB7", 1000, issuerOne)
	require.NoError(t, err)
	assert.Equal(t, "Villa Borghese 7", asset.Name)
	assert.Equal(t, uint64(1000), asset.MaxSupply)
	assert.Zero(t, asset.TotalSupply)
	assert.Equal(t, issuerOne, asset.Issuer)

	// ledger exists and is usable
	got, err := assets.Get(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), got.HolderCap())

	// indexed active at position 0
	entry, err := factory.Get(ctx, asset.ID)
	require.NoError(t, err)
	assert.True(t, entry.Active)
	assert.Zero(t, entry.Position)

	require.Len(t, pub.emitted, 1)
	assert.Equal(t, events.ActionAssetCreated, pub.emitted[0].Action)
	assert.Equal(t, asset.ID.String(), pub.emitted[0].AssetID)
}

func TestCreateAssetValidation(t *testing.T) {
	ctx := context.Background()
	factory, _, _ := newService()

	cases := []struct {
		name      string
		caller    id.Address
		assetName string
		symbol    string
		maxSupply uint64
		issuer    id.Address
		want      error
	}{
		{"non-owner", issuerOne, "A", "A", 100, issuerOne, ErrNotOwner},
		{"empty name", platformOwner, "", "A", 100, issuerOne, ErrEmptyName},
		{"empty symbol", platformOwner, "A", "", 100, issuerOne, ErrEmptySymbol},
		{"zero issuer", platformOwner, "A", "A", 100, id.ZeroAddress, ErrZeroIssuer},
		{"zero supply", platformOwner, "A", "A", 0, issuerOne, ErrZeroSupply},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := factory.CreateAsset(ctx, tc.caller, tc.assetName, tc.symbol, tc.maxSupply, tc.issuer)
			require.ErrorIs(t, err, tc.want)
		})
	}

	n, err := factory.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIndexWalk(t *testing.T) {
	ctx := context.Background()
	factory, _, _ := newService()

	first, err := factory.CreateAsset(ctx, platformOwner, "One", "ONE", 100, issuerOne)
	require.NoError(t, err)
	second, err := factory.CreateAsset(ctx, platformOwner, "Two", "TWO", 100, issuerTwo)
	require.NoError(t, err)
	third, err := factory.CreateAsset(ctx, platformOwner, "Three", "THREE", 100, issuerOne)
	require.NoError(t, err)

	n, err := factory.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for i, want := range []id.AssetID{first.ID, second.ID, third.ID} {
		entry, err := factory.ByIndex(ctx, i)
		require.NoError(t, err)
		assert.Equal(t, want, entry.AssetID)
		assert.Equal(t, i, entry.Position)
	}

	_, err = factory.ByIndex(ctx, 3)
	require.ErrorIs(t, err, ErrEntryNotFound)

	mine, err := factory.ByIssuer(ctx, issuerOne)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, first.ID, mine[0].AssetID)
	assert.Equal(t, third.ID, mine[1].AssetID)
}

// Soft delete: the flag flips, the walk still sees the entry and the ledger
// keeps its balances.
func TestDeactivateIsSoft(t *testing.T) {
	ctx := context.Background()
	factory, assets, _ := newService()

	asset, err := factory.CreateAsset(ctx, platformOwner, "One", "ONE", 100, issuerOne)
	require.NoError(t, err)
	require.NoError(t, assets.Mint(ctx, issuerOne, asset.ID, issuerOne, 10))

	require.NoError(t, factory.Deactivate(ctx, platformOwner, asset.ID))

	entry, err := factory.Get(ctx, asset.ID)
	require.NoError(t, err)
	assert.False(t, entry.Active)

	n, err := factory.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	balance, err := assets.Balance(ctx, asset.ID, issuerOne)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), balance)

	require.NoError(t, factory.Activate(ctx, platformOwner, asset.ID))
	entry, err = factory.Get(ctx, asset.ID)
	require.NoError(t, err)
	assert.True(t, entry.Active)
}

func TestToggleConflicts(t *testing.T) {
	ctx := context.Background()
	factory, _, _ := newService()

	asset, err := factory.CreateAsset(ctx, platformOwner, "One", "ONE", 100, issuerOne)
	require.NoError(t, err)

	require.ErrorIs(t, factory.Activate(ctx, platformOwner, asset.ID), ErrAlreadyActive)
	require.NoError(t, factory.Deactivate(ctx, platformOwner, asset.ID))
	require.ErrorIs(t, factory.Deactivate(ctx, platformOwner, asset.ID), ErrAlreadyInactive)

	require.ErrorIs(t, factory.Deactivate(ctx, issuerOne, asset.ID), ErrNotOwner)
	require.ErrorIs(t, factory.Activate(ctx, platformOwner, id.NewAssetID()), ErrEntryNotFound)
}

func TestGetUnknownEntry(t *testing.T) {
	factory, _, _ := newService()
	_, err := factory.Get(context.Background(), id.NewAssetID())
	require.ErrorIs(t, err, ErrEntryNotFound)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
