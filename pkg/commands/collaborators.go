package commands

import "context"

// TokenLookup answers the token commands with preformatted text.
type TokenLookup interface {
	TokenProfile(ctx context.Context, address string) (string, error)
	TokenOrders(ctx context.Context, chainID, address string) (string, error)
	PairInfo(ctx context.Context, chainID, pairID string) (string, error)
}

// UsernameReport is the outcome of a username-history lookup. Either field
// may be empty; both empty means nothing is known.
type UsernameReport struct {
	FormattedData string
	Error         string
}

// UsernameHistory looks up past handles for a username.
type UsernameHistory interface {
	Check(ctx context.Context, username string) UsernameReport
}

// Keypair is a freshly generated wallet.
type Keypair struct {
	PublicID      string
	PrivateKeyHex string
}

// KeyGenerator creates wallets locally.
type KeyGenerator interface {
	Generate() (Keypair, error)
}

// WalletConnector attaches an existing wallet to the session.
type WalletConnector interface {
	// Connect returns the wallet's public id, or an error if no wallet is
	// available or the user declined.
	Connect(ctx context.Context) (string, error)
}
