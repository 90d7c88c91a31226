package fund

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"TrendSentinel/internal/model"
)

// ErrCorruptLedger marks a snapshot that cannot be decoded or breaks the
// ledger invariants.
var ErrCorruptLedger = errors.New("corrupt ledger snapshot")

// LoadLedger reads the ledger snapshot from a JSON file. Returns nil, nil if
// the file doesn't exist.
func LoadLedger(filePath string) (*model.LedgerSnapshot, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var snap model.LedgerSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptLedger, err)
	}
	if err := validateSnapshot(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SaveLedger rewrites the whole snapshot. The data goes to a temp file in the
// same directory which is then renamed over filePath, so a crash mid-write
// leaves the previous snapshot intact.
func SaveLedger(filePath string, snap *model.LedgerSnapshot) error {
	snap.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(filePath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

func validateSnapshot(snap *model.LedgerSnapshot) error {
	acct := snap.Account
	if !validBalance(acct.CashBalance) || !validBalance(acct.AssetBalance) || !validBalance(acct.StartingCashBalance) {
		return fmt.Errorf("%w: invalid balances %+v", ErrCorruptLedger, acct)
	}
	for i := 1; i < len(snap.Trades); i++ {
		if !snap.Trades[i].Timestamp.After(snap.Trades[i-1].Timestamp) {
			return fmt.Errorf("%w: trade %d is not after trade %d", ErrCorruptLedger, i, i-1)
		}
	}
	return nil
}

func validBalance(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
