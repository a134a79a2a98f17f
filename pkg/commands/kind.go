package commands

// Kind identifies a known command.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindHelp
	KindTokenProfile
	KindTokenOrders
	KindPairInfo
	KindTwitterCheck
	KindGenWallet
	KindConnect
	KindBundler
	KindOnChainActions
	KindVolumeBot
)

// Prefix marks a line as a command.
const Prefix = "!"

var kindNames = map[Kind]string{
	KindHelp:           "help",
	KindTokenProfile:   "token_profile",
	KindTokenOrders:    "token_orders",
	KindPairInfo:       "pair_info",
	KindTwitterCheck:   "twitter_check",
	KindGenWallet:      "gen_wallet",
	KindConnect:        "connect",
	KindBundler:        "bundler",
	KindOnChainActions: "onchainactions",
	KindVolumeBot:      "volumebot",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// String returns the command name without its prefix.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unrecognized"
}

// Lookup maps a lowercased token such as "!help" to its Kind.
func Lookup(token string) Kind {
	if len(token) <= len(Prefix) || token[:len(Prefix)] != Prefix {
		return KindUnrecognized
	}
	return kindsByName[token[len(Prefix):]]
}

// Kinds returns every known command kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames))
	for k := KindHelp; k <= KindVolumeBot; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
