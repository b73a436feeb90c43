package accountstore

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/cardlink-labs/cardlink-middleware/pkg/account"
	"github.com/cardlink-labs/cardlink-middleware/pkg/pgutil"
	mghelper "github.com/cardlink-labs/cardlink-middleware/pkg/pgutil/migrations"
)

func setupStore(t *testing.T) (context.Context, *pgStore) {
	t.Helper()
	requireDockerAccess(t)

	ctx := context.Background()
	db, cleanup := pgutil.SetupTestDB(t)
	t.Cleanup(cleanup)

	if err := mghelper.CreateSchema(ctx, db, &AccountDao{}); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return ctx, NewStore(db)
}

func requireDockerAccess(t *testing.T) {
	t.Helper()

	candidates := []string{
		"/var/run/docker.sock",
		filepath.Join(os.Getenv("HOME"), ".docker/run/docker.sock"),
	}

	for _, sock := range candidates {
		if sock == "" {
			continue
		}
		if _, err := os.Stat(sock); err != nil {
			continue
		}
		conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", sock)
		if err == nil {
			_ = conn.Close()
			return
		}
	}

	t.Skip("docker daemon socket is not accessible; skipping testcontainer-backed accountstore tests")
}

func newTestRecord(userID string) *account.Record {
	rec := account.New(userID, "cardholder", "user@example.com")
	rec.WalletAddresses[account.ChainEthereum] = "0x1111111111111111111111111111111111111111"
	return rec
}

func TestAccountPGStore_CreateAndGet(t *testing.T) {
	ctx, s := setupStore(t)

	rec := newTestRecord("user-1")
	if err := s.Create(ctx, "sub-1", rec); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	got, err := s.GetByPrincipal(ctx, "sub-1")
	if err != nil {
		t.Fatalf("GetByPrincipal() failed: %v", err)
	}
	if got.UserID != "user-1" {
		t.Errorf("expected user-1, got %s", got.UserID)
	}
	if got.Email != "user@example.com" {
		t.Errorf("expected email round-tripped, got %q", got.Email)
	}
	if addr, ok := got.Address(account.ChainEthereum); !ok || addr != rec.WalletAddresses[account.ChainEthereum] {
		t.Errorf("expected eth address round-tripped, got %q", addr)
	}
	if got.IsNewUser {
		t.Error("expected IsNewUser false on read")
	}
	if got.TimeCreated.IsZero() {
		t.Error("expected created timestamp")
	}
}

func TestAccountPGStore_GetMissing(t *testing.T) {
	ctx, s := setupStore(t)

	if _, err := s.GetByPrincipal(ctx, "unknown"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountPGStore_DuplicatePrincipal(t *testing.T) {
	ctx, s := setupStore(t)

	if err := s.Create(ctx, "sub-1", newTestRecord("user-1")); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	err := s.Create(ctx, "sub-1", newTestRecord("user-2"))
	if !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists for duplicate principal, got %v", err)
	}
}

func TestAccountPGStore_DuplicateUserID(t *testing.T) {
	ctx, s := setupStore(t)

	if err := s.Create(ctx, "sub-1", newTestRecord("user-1")); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	err := s.Create(ctx, "sub-2", newTestRecord("user-1"))
	if !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists for duplicate user id, got %v", err)
	}
}

func TestAccountPGStore_UpdateWalletAddresses(t *testing.T) {
	ctx, s := setupStore(t)

	if err := s.Create(ctx, "sub-1", newTestRecord("user-1")); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	addrs := map[account.Chain]string{
		account.ChainSolana: "So11111111111111111111111111111111111111112",
		account.ChainTron:   "TLyqzVGLV1srkB7dToTAEqgDSfPtXRJZYH",
	}
	if err := s.UpdateWalletAddresses(ctx, "sub-1", addrs); err != nil {
		t.Fatalf("UpdateWalletAddresses() failed: %v", err)
	}

	got, err := s.GetByPrincipal(ctx, "sub-1")
	if err != nil {
		t.Fatalf("GetByPrincipal() failed: %v", err)
	}
	if len(got.WalletAddresses) != 3 {
		t.Fatalf("expected 3 addresses, got %v", got.WalletAddresses)
	}
	if addr, _ := got.Address(account.ChainSolana); addr != addrs[account.ChainSolana] {
		t.Errorf("expected solana address recorded, got %q", addr)
	}
	if got.TimeUpdated.Before(got.TimeCreated) {
		t.Error("expected updated_at set by the update")
	}
}

func TestAccountPGStore_UpdateMissingAccount(t *testing.T) {
	ctx, s := setupStore(t)

	err := s.UpdateWalletAddresses(ctx, "unknown", map[account.Chain]string{
		account.ChainEthereum: "0x1111111111111111111111111111111111111111",
	})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountPGStore_UpdateNoAddressesIsNoop(t *testing.T) {
	ctx, s := setupStore(t)

	if err := s.UpdateWalletAddresses(ctx, "unknown", nil); err != nil {
		t.Fatalf("expected nil for empty update, got %v", err)
	}
}
