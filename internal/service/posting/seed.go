package posting

import (
	"context"
	"strings"

	"github.com/openbooks/ledger/internal/dictionary"
	"github.com/openbooks/ledger/internal/errs"
	"github.com/openbooks/ledger/internal/ledger"
)

// SeedChartOfAccounts inserts the curated system accounts into an empty
// namespace. Idempotent: if any account already exists the call is a no-op
// and returns the accounts already present.
func (s *service) SeedChartOfAccounts(ctx context.Context, ns, currency string) ([]ledger.Account, error) {
	if ns == "" || currency == "" {
		return nil, errs.ErrInvalid
	}
	currency = strings.ToUpper(currency)
	existing, err := s.accounts.List(ctx, ns)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}
	created := make([]ledger.Account, 0, len(dictionary.Chart()))
	for _, def := range dictionary.Chart() {
		a := ledger.Account{
			Code:     def.Code,
			Name:     def.Name,
			Type:     def.Type,
			SubType:  def.SubType,
			Currency: currency,
			System:   true,
		}
		acc, err := s.accounts.Create(ctx, ns, &a)
		if err != nil {
			return nil, err
		}
		created = append(created, acc)
	}
	s.log.Info("chart of accounts seeded", "namespace", ns, "accounts", len(created))
	return created, nil
}
