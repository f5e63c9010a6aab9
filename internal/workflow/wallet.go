package workflow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sandeepkv93/symbio/internal/apperr"
	"github.com/sandeepkv93/symbio/internal/model"
)

type WalletBackend interface {
	Wallet(ctx context.Context, currency string) (model.Wallet, error)
	SendBitcoin(ctx context.Context, to, amount string) (model.Transfer, error)
}

// Wallet is a typed request/response pair over the wallet service.
type Wallet struct {
	backend  WalletBackend
	currency string
	logger   *slog.Logger
}

func NewWallet(backend WalletBackend, currency string, logger *slog.Logger) *Wallet {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(currency) == "" {
		currency = "BTC"
	}
	return &Wallet{backend: backend, currency: currency, logger: logger}
}

// Balance reads currency, or the configured currency when it is blank.
func (w *Wallet) Balance(ctx context.Context, currency string) (model.Wallet, error) {
	if strings.TrimSpace(currency) == "" {
		currency = w.currency
	}
	return w.backend.Wallet(ctx, currency)
}

func (w *Wallet) Send(ctx context.Context, to, amount string) (model.Transfer, error) {
	tr := model.Transfer{To: strings.TrimSpace(to), Amount: strings.TrimSpace(amount)}
	if err := tr.Validate(); err != nil {
		return model.Transfer{}, apperr.Validation("/api/wallet/bitcoinSend", err.Error())
	}
	out, err := w.backend.SendBitcoin(ctx, tr.To, tr.Amount)
	if err != nil {
		return model.Transfer{}, err
	}
	w.logger.Info("transfer sent", slog.String("amount", tr.Amount), slog.String("tx_id", out.TxID))
	return out, nil
}
