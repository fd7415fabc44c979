package backend

import (
	"context"
	"errors"
	"log/slog"

	"github.com/CQCL/tket-iqm/internal/config"
	"github.com/CQCL/tket-iqm/internal/iqm"
)

// DialOptions names a device endpoint and an optional explicit token.
// When Token is empty the credential is resolved through the persisted
// config and the tokens file, in that order.
type DialOptions struct {
	BaseURL string
	Device  string
	Token   string
	Logger  *slog.Logger
}

// Dial resolves credentials, connects to the server and builds the
// device adapter. A failure to resolve any credential is reported as an
// authentication error.
func Dial(ctx context.Context, opts DialOptions) (*IQMBackend, error) {
	token, err := config.ResolveToken(opts.Token)
	if errors.Is(err, config.ErrNoCredentials) {
		return nil, NewAuthenticationMissingError()
	}
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	client := iqm.NewHTTPClient(opts.BaseURL, token, iqm.WithLogger(log))
	return New(ctx, client, opts.Device, WithLogger(log))
}
