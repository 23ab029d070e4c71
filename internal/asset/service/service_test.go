package service

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brique/internal/asset/models"
	"brique/internal/asset/store"
	"brique/internal/ledger"
	id "brique/pkg/domain"
	dErrors "brique/pkg/domain-errors"
	"brique/pkg/platform/events"
)

var (
	platformOwner = addr("0x00000000000000000000000000000000000000aa")
	issuer        = addr("0x00000000000000000000000000000000000000bb")
	investorA     = addr("0x00000000000000000000000000000000000000cc")
	investorB     = addr("0x00000000000000000000000000000000000000dd")
	outsider      = addr("0x00000000000000000000000000000000000000ee")
)

func addr(s string) id.Address {
	a, err := id.ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

type fakeVerifier struct {
	verified map[id.Address]bool
}

func (v *fakeVerifier) IsVerified(_ context.Context, wallet id.Address) (bool, error) {
	return v.verified[wallet], nil
}

type recordingPublisher struct {
	emitted []events.Event
}

func (p *recordingPublisher) Emit(_ context.Context, ev events.Event) error {
	p.emitted = append(p.emitted, ev)
	return nil
}

type fixture struct {
	svc      *Service
	verifier *fakeVerifier
	pub      *recordingPublisher
	tx       *ledger.SerialTx
	assetID  id.AssetID
}

// newFixture builds a service with one asset of maxSupply 100 (holder cap 20)
// and both investors verified.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	verifier := &fakeVerifier{verified: map[id.Address]bool{
		investorA: true,
		investorB: true,
	}}
	pub := &recordingPublisher{}
	tx := ledger.NewSerialTx()
	svc := New(store.NewInMemory(), verifier, platformOwner, tx, WithEventPublisher(pub))

	var asset *models.Asset
	err := tx.RunInTx(context.Background(), func(txCtx context.Context) error {
		var err error
		asset, err = svc.CreateInTx(txCtx, "Rue de la Paix 12", "RDP12", 100, issuer)
		return err
	})
	require.NoError(t, err)
	return &fixture{svc: svc, verifier: verifier, pub: pub, tx: tx, assetID: asset.ID}
}

func (f *fixture) balance(t *testing.T, wallet id.Address) uint64 {
	t.Helper()
	balance, err := f.svc.Balance(context.Background(), f.assetID, wallet)
	require.NoError(t, err)
	return balance
}

func (f *fixture) supply(t *testing.T) uint64 {
	t.Helper()
	asset, err := f.svc.Get(context.Background(), f.assetID)
	require.NoError(t, err)
	return asset.TotalSupply
}

func TestHolderCap(t *testing.T) {
	asset := &models.Asset{MaxSupply: 100}
	assert.Equal(t, uint64(20), asset.HolderCap())

	// integer floor, not rounding
	asset.MaxSupply = 7
	assert.Equal(t, uint64(1), asset.HolderCap())

	// near the uint64 ceiling the cap keeps its 20% meaning
	asset.MaxSupply = math.MaxUint64
	assert.Equal(t, uint64(math.MaxUint64/5), asset.HolderCap())
}

func TestMint(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, investorA, 5))

	assert.Equal(t, uint64(5), f.balance(t, investorA))
	assert.Equal(t, uint64(5), f.supply(t))

	require.Len(t, f.pub.emitted, 1)
	assert.Equal(t, events.ActionSharesMinted, f.pub.emitted[0].Action)
	assert.Equal(t, uint64(5), f.pub.emitted[0].Quantity)
}

func TestMintByPlatformOwner(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Mint(context.Background(), platformOwner, f.assetID, investorA, 5))
}

func TestMintRejectsOutsider(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Mint(context.Background(), outsider, f.assetID, investorA, 5)
	require.ErrorIs(t, err, ErrNotIssuer)
	assert.Zero(t, f.balance(t, investorA))
}

func TestMintRejectsZeroAmount(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.svc.Mint(context.Background(), issuer, f.assetID, investorA, 0), ErrZeroAmount)
}

func TestMintRejectsUnverifiedRecipient(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Mint(context.Background(), issuer, f.assetID, outsider, 5)
	require.ErrorIs(t, err, ErrRecipientNotVerified)
	assert.Zero(t, f.supply(t))
}

func TestMintRejectsCapBreach(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, investorA, 15))

	err := f.svc.Mint(ctx, issuer, f.assetID, investorA, 6)
	require.ErrorIs(t, err, ErrCapExceeded)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	// rejected mint leaves balance and supply untouched
	assert.Equal(t, uint64(15), f.balance(t, investorA))
	assert.Equal(t, uint64(15), f.supply(t))

	// minting exactly to the cap is fine
	require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, investorA, 5))
	assert.Equal(t, uint64(20), f.balance(t, investorA))
}

func TestMintRejectsSupplyBreach(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// five holders at the 20-unit cap exhausts maxSupply 100
	wallets := []id.Address{
		investorA, investorB,
		addr("0x0000000000000000000000000000000000000101"),
		addr("0x0000000000000000000000000000000000000102"),
		addr("0x0000000000000000000000000000000000000103"),
	}
	for _, w := range wallets {
		f.verifier.verified[w] = true
		require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, w, 20))
	}
	assert.Equal(t, uint64(100), f.supply(t))

	late := addr("0x0000000000000000000000000000000000000104")
	f.verifier.verified[late] = true
	require.ErrorIs(t, f.svc.Mint(ctx, issuer, f.assetID, late, 1), ErrSupplyExceeded)
}

func TestMintRejectsWraparound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, investorA, 10))

	// balance+amount would wrap past the cap and supply checks
	err := f.svc.Mint(ctx, issuer, f.assetID, investorA, math.MaxUint64)
	require.ErrorIs(t, err, ErrCapExceeded)
	err = f.svc.Mint(ctx, issuer, f.assetID, investorA, math.MaxUint64-5)
	require.ErrorIs(t, err, ErrCapExceeded)

	assert.Equal(t, uint64(10), f.balance(t, investorA))
	assert.Equal(t, uint64(10), f.supply(t))
}

func TestMintRejectsSupplyWraparound(t *testing.T) {
	ctx := context.Background()
	verifier := &fakeVerifier{verified: map[id.Address]bool{}}
	tx := ledger.NewSerialTx()
	svc := New(store.NewInMemory(), verifier, platformOwner, tx)

	var asset *models.Asset
	err := tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		asset, err = svc.CreateInTx(txCtx, "Tour Perret", "TPR", math.MaxUint64, issuer)
		return err
	})
	require.NoError(t, err)

	// five holders at the cap exhaust the supply exactly
	cap := asset.HolderCap()
	for i := 0; i < 5; i++ {
		w := addr(fmt.Sprintf("0x00000000000000000000000000000000000003%02d", i))
		verifier.verified[w] = true
		require.NoError(t, svc.Mint(ctx, issuer, asset.ID, w, cap))
	}

	// TotalSupply+amount wraps below MaxSupply; the guard must still reject
	late := addr("0x0000000000000000000000000000000000000399")
	verifier.verified[late] = true
	require.ErrorIs(t, svc.Mint(ctx, issuer, asset.ID, late, cap), ErrSupplyExceeded)

	refreshed, err := svc.Get(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), refreshed.TotalSupply)
}

func TestMintUnknownAsset(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Mint(context.Background(), issuer, id.NewAssetID(), investorA, 1)
	require.ErrorIs(t, err, ErrAssetNotFound)
}

func TestMintForSale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	saleID := id.NewSaleID()

	// unlinked sale carries no mint authority
	err := f.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return f.svc.MintForSaleInTx(txCtx, saleID, f.assetID, investorA, 5)
	})
	require.ErrorIs(t, err, ErrSaleNotLinked)

	require.NoError(t, f.svc.SetSaleContract(ctx, issuer, f.assetID, saleID))
	err = f.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return f.svc.MintForSaleInTx(txCtx, saleID, f.assetID, investorA, 5)
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), f.balance(t, investorA))
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, investorA, 10))
	require.NoError(t, f.svc.Transfer(ctx, investorA, f.assetID, investorB, 4))

	assert.Equal(t, uint64(6), f.balance(t, investorA))
	assert.Equal(t, uint64(4), f.balance(t, investorB))
	assert.Equal(t, uint64(10), f.supply(t))
}

func TestTransferToSelfConservesSupply(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, investorA, 10))

	// a self-transfer nets to zero and must not inflate the balance
	require.NoError(t, f.svc.Transfer(ctx, investorA, f.assetID, investorA, 5))
	assert.Equal(t, uint64(10), f.balance(t, investorA))
	assert.Equal(t, uint64(10), f.supply(t))

	// still validated like any other transfer
	require.ErrorIs(t, f.svc.Transfer(ctx, investorA, f.assetID, investorA, 11), ErrInsufficientBalance)

	// a holder at the cap may self-transfer without tripping the cap check
	require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, investorA, 10))
	require.NoError(t, f.svc.Transfer(ctx, investorA, f.assetID, investorA, 20))
	assert.Equal(t, uint64(20), f.balance(t, investorA))
}

func TestTransferRejectsWhenPaused(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, investorA, 10))
	require.NoError(t, f.svc.Pause(ctx, platformOwner, f.assetID))

	err := f.svc.Transfer(ctx, investorA, f.assetID, investorB, 1)
	require.ErrorIs(t, err, ErrTransfersPaused)

	require.NoError(t, f.svc.Unpause(ctx, platformOwner, f.assetID))
	require.NoError(t, f.svc.Transfer(ctx, investorA, f.assetID, investorB, 1))
}

func TestTransferRejectsUnverifiedParties(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, investorA, 10))

	require.ErrorIs(t, f.svc.Transfer(ctx, investorA, f.assetID, outsider, 1), ErrRecipientNotVerified)

	f.verifier.verified[investorA] = false
	require.ErrorIs(t, f.svc.Transfer(ctx, investorA, f.assetID, investorB, 1), ErrSenderNotVerified)

	assert.Equal(t, uint64(10), f.balance(t, investorA))
}

func TestTransferRejectsInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, investorA, 3))
	require.ErrorIs(t, f.svc.Transfer(ctx, investorA, f.assetID, investorB, 4), ErrInsufficientBalance)
}

func TestTransferRejectsRecipientCapBreach(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, investorA, 20))
	require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, investorB, 15))

	err := f.svc.Transfer(ctx, investorA, f.assetID, investorB, 6)
	require.ErrorIs(t, err, ErrCapExceeded)
	assert.Equal(t, uint64(20), f.balance(t, investorA))
	assert.Equal(t, uint64(15), f.balance(t, investorB))

	// sender leaving the cap downward is always allowed
	require.NoError(t, f.svc.Transfer(ctx, investorA, f.assetID, investorB, 5))
}


func TestBurn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, investorA, 10))
	require.NoError(t, f.svc.Burn(ctx, issuer, f.assetID, investorA, 4))

	assert.Equal(t, uint64(6), f.balance(t, investorA))
	assert.Equal(t, uint64(6), f.supply(t))
}

func TestBurnRejectsInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, investorA, 3))
	require.ErrorIs(t, f.svc.Burn(ctx, issuer, f.assetID, investorA, 4), ErrInsufficientBalance)
}

func TestBurnRejectsOutsider(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.svc.Burn(context.Background(), outsider, f.assetID, investorA, 1), ErrNotIssuer)
}

func TestPause(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.ErrorIs(t, f.svc.Pause(ctx, issuer, f.assetID), ErrNotOwner)

	require.NoError(t, f.svc.Pause(ctx, platformOwner, f.assetID))
	require.ErrorIs(t, f.svc.Pause(ctx, platformOwner, f.assetID), ErrAlreadyPaused)

	require.NoError(t, f.svc.Unpause(ctx, platformOwner, f.assetID))
	require.ErrorIs(t, f.svc.Unpause(ctx, platformOwner, f.assetID), ErrNotPaused)
}

func TestSetSaleContract(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	saleID := id.NewSaleID()

	require.ErrorIs(t, f.svc.SetSaleContract(ctx, outsider, f.assetID, saleID), ErrNotIssuer)

	require.NoError(t, f.svc.SetSaleContract(ctx, issuer, f.assetID, saleID))
	asset, err := f.svc.Get(ctx, f.assetID)
	require.NoError(t, err)
	assert.Equal(t, saleID, asset.LinkedSale)

	err = f.svc.SetSaleContract(ctx, issuer, f.assetID, id.SaleID{})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestHolders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, investorA, 5))
	require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, investorB, 12))

	holders, err := f.svc.Holders(ctx, f.assetID)
	require.NoError(t, err)
	require.Len(t, holders, 2)
	assert.Equal(t, investorB, holders[0].Wallet)
	assert.Equal(t, uint64(12), holders[0].Balance)
}

func TestSupplyConservation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, investorA, 12))
	require.NoError(t, f.svc.Mint(ctx, issuer, f.assetID, investorB, 8))
	require.NoError(t, f.svc.Transfer(ctx, investorA, f.assetID, investorB, 3))
	require.NoError(t, f.svc.Burn(ctx, issuer, f.assetID, investorB, 5))

	holders, err := f.svc.Holders(ctx, f.assetID)
	require.NoError(t, err)
	var sum uint64
	for _, h := range holders {
		sum += h.Balance
	}
	assert.Equal(t, f.supply(t), sum)
	assert.Equal(t, uint64(15), sum)
}
