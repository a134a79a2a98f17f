package commands

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrWalletNotFound is returned by a WalletConnector when no wallet is available.
var ErrWalletNotFound = errors.New("wallet not found")

// Panel names an interface the presentation layer can reveal.
type Panel string

const (
	PanelNone           Panel = ""
	PanelBundler        Panel = "bundler"
	PanelOnChainActions Panel = "onchainactions"
	PanelVolumeBot      Panel = "volumebot"
)

// State is the per-session state commands read and update.
type State struct {
	WalletConnected bool
	PublicKey       string
	OpenPanels      []Panel
}

// PanelOpen reports whether p has been revealed.
func (s State) PanelOpen(p Panel) bool {
	for _, open := range s.OpenPanels {
		if open == p {
			return true
		}
	}
	return false
}

func (s State) withPanel(p Panel) State {
	if s.PanelOpen(p) {
		return s
	}
	panels := make([]Panel, len(s.OpenPanels), len(s.OpenPanels)+1)
	copy(panels, s.OpenPanels)
	s.OpenPanels = append(panels, p)
	return s
}

// Result is the outcome of dispatching one line.
type Result struct {
	// Handled is false when the line is not a known command and should be
	// forwarded to the completion relay unchanged.
	Handled bool

	// Text is the assistant reply for a handled command.
	Text string

	// Panel is set when the command reveals an interface.
	Panel Panel
}

// Fixed replies.
const (
	MsgNeedTokenAddress = "Please provide a token address"
	MsgNeedTokenOrders  = "Please provide chainId and token address"
	MsgNeedPairInfo     = "Please provide chainId and pairId"
	MsgNeedUsername     = "Please provide a Twitter username"
	MsgNoUsernameInfo   = "No information found for this username."
	MsgConnectFirst     = "Please connect your wallet first using !connect"
	MsgWalletNotFound   = "Wallet not found. Please set one up and try again."
	MsgConnectFailed    = "Failed to connect wallet. Please try again."
	MsgUnavailable      = "This command is not available right now."

	MsgOpenBundler   = "Opening Token Bundler interface..."
	MsgOpenOnChain   = "Opening OnChain Actions interface..."
	MsgOpenVolumeBot = "Opening Anti-MEV Volume Bot interface..."
)

// Deps are the router's collaborators. Any may be nil, in which case the
// commands needing it answer MsgUnavailable.
type Deps struct {
	Tokens    TokenLookup
	Usernames UsernameHistory
	Keys      KeyGenerator
	Wallet    WalletConnector
}

// Router dispatches command lines. It holds no session state of its own.
type Router struct {
	deps   Deps
	logger *zap.Logger
}

// NewRouter creates a router over deps.
func NewRouter(deps Deps, logger *zap.Logger) *Router {
	return &Router{deps: deps, logger: logger}
}

// Dispatch runs line against state and returns the reply with the updated state.
// state is never modified in place.
func (r *Router) Dispatch(ctx context.Context, line string, state State) (Result, State) {
	inv := Parse(line)
	if inv.Kind != KindUnrecognized {
		r.logger.Debug("dispatching command",
			zap.String("command", inv.Kind.String()),
			zap.Int("arg_count", len(inv.Args)),
		)
	}

	switch inv.Kind {
	case KindHelp:
		return handled(HelpText), state

	case KindTokenProfile:
		if len(inv.Args) < 1 {
			return handled(MsgNeedTokenAddress), state
		}
		if r.deps.Tokens == nil {
			return handled(MsgUnavailable), state
		}
		text, err := r.deps.Tokens.TokenProfile(ctx, inv.Args[0])
		return r.lookupResult(inv, "token profile", text, err), state

	case KindTokenOrders:
		if len(inv.Args) < 2 {
			return handled(MsgNeedTokenOrders), state
		}
		if r.deps.Tokens == nil {
			return handled(MsgUnavailable), state
		}
		text, err := r.deps.Tokens.TokenOrders(ctx, inv.Args[0], inv.Args[1])
		return r.lookupResult(inv, "token orders", text, err), state

	case KindPairInfo:
		if len(inv.Args) < 2 {
			return handled(MsgNeedPairInfo), state
		}
		if r.deps.Tokens == nil {
			return handled(MsgUnavailable), state
		}
		text, err := r.deps.Tokens.PairInfo(ctx, inv.Args[0], inv.Args[1])
		return r.lookupResult(inv, "pair info", text, err), state

	case KindTwitterCheck:
		if len(inv.Args) < 1 {
			return handled(MsgNeedUsername), state
		}
		if r.deps.Usernames == nil {
			return handled(MsgUnavailable), state
		}
		report := r.deps.Usernames.Check(ctx, inv.Args[0])
		switch {
		case report.FormattedData != "":
			return handled(report.FormattedData), state
		case report.Error != "":
			return handled(report.Error), state
		default:
			return handled(MsgNoUsernameInfo), state
		}

	case KindGenWallet:
		return r.genWallet(), state

	case KindConnect:
		return r.connect(ctx, state)

	case KindBundler:
		return openPanel(state, PanelBundler, MsgOpenBundler)

	case KindOnChainActions:
		return openPanel(state, PanelOnChainActions, MsgOpenOnChain)

	case KindVolumeBot:
		return openPanel(state, PanelVolumeBot, MsgOpenVolumeBot)

	case KindUnrecognized:
		return Result{}, state
	}

	// unreachable while every Kind has a case above
	return Result{}, state
}

func (r *Router) lookupResult(inv Invocation, what, text string, err error) Result {
	if err != nil {
		r.logger.Warn("lookup failed",
			zap.String("command", inv.Kind.String()),
			zap.Strings("args", inv.Args),
			zap.Error(err),
		)
		return handled(fmt.Sprintf("Error fetching %s: %v", what, err))
	}
	return handled(text)
}

func (r *Router) genWallet() Result {
	if r.deps.Keys == nil {
		return handled(MsgUnavailable)
	}

	kp, err := r.deps.Keys.Generate()
	if err != nil {
		r.logger.Error("wallet generation failed", zap.Error(err))
		return handled(fmt.Sprintf("Failed to generate wallet: %v", err))
	}

	return handled(fmt.Sprintf(`New wallet generated:
Public Key: %s
Private Key: %s
IMPORTANT: Save your private key securely. It will not be shown again.`, kp.PublicID, kp.PrivateKeyHex))
}

func (r *Router) connect(ctx context.Context, state State) (Result, State) {
	if state.WalletConnected {
		return handled("Wallet already connected. Public key: " + state.PublicKey), state
	}
	if r.deps.Wallet == nil {
		return handled(MsgUnavailable), state
	}

	publicKey, err := r.deps.Wallet.Connect(ctx)
	if errors.Is(err, ErrWalletNotFound) {
		r.logger.Info("no wallet available", zap.Error(err))
		return handled(MsgWalletNotFound), state
	}
	if err != nil {
		r.logger.Warn("wallet connection failed", zap.Error(err))
		return handled(MsgConnectFailed), state
	}

	state.WalletConnected = true
	state.PublicKey = publicKey
	return handled("Wallet connected successfully. Public key: " + publicKey), state
}

func openPanel(state State, p Panel, msg string) (Result, State) {
	if !state.WalletConnected {
		return handled(MsgConnectFirst), state
	}
	return Result{Handled: true, Text: msg, Panel: p}, state.withPanel(p)
}

func handled(text string) Result {
	return Result{Handled: true, Text: text}
}
