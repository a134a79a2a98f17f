package commands_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/entropy/pkg/commands"
)

type fakeTokens struct {
	calls []string
	err   error
}

func (f *fakeTokens) TokenProfile(_ context.Context, address string) (string, error) {
	f.calls = append(f.calls, "profile:"+address)
	return "profile of " + address, f.err
}

func (f *fakeTokens) TokenOrders(_ context.Context, chainID, address string) (string, error) {
	f.calls = append(f.calls, "orders:"+chainID+":"+address)
	return "orders of " + address + " on " + chainID, f.err
}

func (f *fakeTokens) PairInfo(_ context.Context, chainID, pairID string) (string, error) {
	f.calls = append(f.calls, "pair:"+chainID+":"+pairID)
	return "pair " + pairID + " on " + chainID, f.err
}

type fakeUsernames struct {
	report commands.UsernameReport
	asked  []string
}

func (f *fakeUsernames) Check(_ context.Context, username string) commands.UsernameReport {
	f.asked = append(f.asked, username)
	return f.report
}

type counterKeys struct{ n int }

func (c *counterKeys) Generate() (commands.Keypair, error) {
	c.n++
	return commands.Keypair{
		PublicID:      fmt.Sprintf("pub%d", c.n),
		PrivateKeyHex: fmt.Sprintf("%064x", c.n),
	}, nil
}

type fakeWallet struct {
	publicKey string
	err       error
	calls     int
}

func (f *fakeWallet) Connect(context.Context) (string, error) {
	f.calls++
	return f.publicKey, f.err
}

var _ = Describe("Router", func() {
	var (
		ctx       context.Context
		tokens    *fakeTokens
		usernames *fakeUsernames
		keys      *counterKeys
		wallet    *fakeWallet
		router    *commands.Router
	)

	BeforeEach(func() {
		ctx = context.Background()
		tokens = &fakeTokens{}
		usernames = &fakeUsernames{}
		keys = &counterKeys{}
		wallet = &fakeWallet{publicKey: "WaLLeT111"}
		router = commands.NewRouter(commands.Deps{
			Tokens:    tokens,
			Usernames: usernames,
			Keys:      keys,
			Wallet:    wallet,
		}, zap.NewNop())
	})

	dispatch := func(line string) commands.Result {
		res, _ := router.Dispatch(ctx, line, commands.State{})
		return res
	}

	Describe("help", func() {
		It("returns the static help text", func() {
			res := dispatch("!help")
			Expect(res.Handled).To(BeTrue())
			Expect(res.Text).To(Equal(commands.HelpText))
		})

		It("mentions every command", func() {
			for _, k := range commands.Kinds() {
				Expect(commands.HelpText).To(ContainSubstring("!" + k.String()))
			}
		})
	})

	Describe("token lookups", func() {
		It("asks for an address when token_profile has no arguments", func() {
			res := dispatch("!token_profile")
			Expect(res.Handled).To(BeTrue())
			Expect(res.Text).To(Equal("Please provide a token address"))
			Expect(tokens.calls).To(BeEmpty())
		})

		It("delegates token_profile with the address case intact", func() {
			res := dispatch("!token_profile AbC123")
			Expect(res.Text).To(Equal("profile of AbC123"))
			Expect(tokens.calls).To(Equal([]string{"profile:AbC123"}))
		})

		It("needs two arguments for token_orders", func() {
			Expect(dispatch("!token_orders solana").Text).To(Equal(commands.MsgNeedTokenOrders))
			Expect(tokens.calls).To(BeEmpty())

			Expect(dispatch("!token_orders solana Addr").Text).To(Equal("orders of Addr on solana"))
		})

		It("needs two arguments for pair_info", func() {
			Expect(dispatch("!pair_info").Text).To(Equal(commands.MsgNeedPairInfo))
			Expect(dispatch("!pair_info solana Pair1").Text).To(Equal("pair Pair1 on solana"))
		})

		It("ignores extra arguments", func() {
			dispatch("!token_profile A B C")
			Expect(tokens.calls).To(Equal([]string{"profile:A"}))
		})

		It("surfaces collaborator failures as text", func() {
			tokens.err = errors.New("dexscreener returned 503")
			res := dispatch("!token_profile A")
			Expect(res.Handled).To(BeTrue())
			Expect(res.Text).To(Equal("Error fetching token profile: dexscreener returned 503"))
		})
	})

	Describe("twitter_check", func() {
		It("asks for a username", func() {
			Expect(dispatch("!twitter_check").Text).To(Equal(commands.MsgNeedUsername))
			Expect(usernames.asked).To(BeEmpty())
		})

		It("returns formatted data first", func() {
			usernames.report = commands.UsernameReport{FormattedData: "X", Error: "ignored"}
			Expect(dispatch("!twitter_check alice").Text).To(Equal("X"))
			Expect(usernames.asked).To(Equal([]string{"alice"}))
		})

		It("falls back to the error text", func() {
			usernames.report = commands.UsernameReport{Error: "Y"}
			Expect(dispatch("!twitter_check alice").Text).To(Equal("Y"))
		})

		It("falls back to the no-information message", func() {
			Expect(dispatch("!twitter_check alice").Text).To(Equal("No information found for this username."))
		})
	})

	Describe("gen_wallet", func() {
		It("prints the keypair with a one-time warning", func() {
			res := dispatch("!gen_wallet")
			Expect(res.Text).To(HavePrefix("New wallet generated:\nPublic Key: pub1\nPrivate Key: "))
			Expect(res.Text).To(HaveSuffix("IMPORTANT: Save your private key securely. It will not be shown again."))
		})

		It("produces a different wallet each time", func() {
			Expect(dispatch("!gen_wallet").Text).NotTo(Equal(dispatch("!gen_wallet").Text))
		})
	})

	Describe("connect", func() {
		It("connects and records the public key", func() {
			res, state := router.Dispatch(ctx, "!connect", commands.State{})
			Expect(res.Text).To(Equal("Wallet connected successfully. Public key: WaLLeT111"))
			Expect(state.WalletConnected).To(BeTrue())
			Expect(state.PublicKey).To(Equal("WaLLeT111"))
		})

		It("reports an existing connection without reconnecting", func() {
			state := commands.State{WalletConnected: true, PublicKey: "Existing"}
			res, next := router.Dispatch(ctx, "!connect", state)
			Expect(res.Text).To(Equal("Wallet already connected. Public key: Existing"))
			Expect(next).To(Equal(state))
			Expect(wallet.calls).To(BeZero())
		})

		It("reports a missing wallet", func() {
			wallet.err = fmt.Errorf("keyfile: %w", commands.ErrWalletNotFound)
			res, state := router.Dispatch(ctx, "!connect", commands.State{})
			Expect(res.Text).To(Equal(commands.MsgWalletNotFound))
			Expect(state.WalletConnected).To(BeFalse())
		})

		It("reports other failures", func() {
			wallet.err = errors.New("user rejected")
			res, _ := router.Dispatch(ctx, "!connect", commands.State{})
			Expect(res.Text).To(Equal(commands.MsgConnectFailed))
		})
	})

	DescribeTable("panels",
		func(line string, panel commands.Panel, msg string) {
			res, state := router.Dispatch(ctx, line, commands.State{})
			Expect(res.Text).To(Equal(commands.MsgConnectFirst))
			Expect(res.Panel).To(Equal(commands.PanelNone))
			Expect(state.PanelOpen(panel)).To(BeFalse())

			connected := commands.State{WalletConnected: true, PublicKey: "k"}
			res, state = router.Dispatch(ctx, line, connected)
			Expect(res.Text).To(Equal(msg))
			Expect(res.Panel).To(Equal(panel))
			Expect(state.PanelOpen(panel)).To(BeTrue())
			Expect(connected.PanelOpen(panel)).To(BeFalse())
		},
		Entry("bundler", "!bundler", commands.PanelBundler, "Opening Token Bundler interface..."),
		Entry("onchainactions", "!onchainactions", commands.PanelOnChainActions, "Opening OnChain Actions interface..."),
		Entry("volumebot", "!VolumeBot", commands.PanelVolumeBot, "Opening Anti-MEV Volume Bot interface..."),
	)

	It("does not duplicate an already open panel", func() {
		state := commands.State{WalletConnected: true}
		_, state = router.Dispatch(ctx, "!bundler", state)
		_, state = router.Dispatch(ctx, "!bundler", state)
		Expect(state.OpenPanels).To(Equal([]commands.Panel{commands.PanelBundler}))
	})

	Describe("fall-through", func() {
		It("leaves unknown commands unhandled", func() {
			state := commands.State{WalletConnected: true, PublicKey: "k"}
			res, next := router.Dispatch(ctx, "!unknown", state)
			Expect(res.Handled).To(BeFalse())
			Expect(res.Text).To(BeEmpty())
			Expect(next).To(Equal(state))
		})

		It("leaves plain questions unhandled", func() {
			Expect(dispatch("how did eyes evolve?").Handled).To(BeFalse())
		})
	})

	Describe("missing collaborators", func() {
		It("answers with the unavailable message", func() {
			bare := commands.NewRouter(commands.Deps{}, zap.NewNop())
			for _, line := range []string{"!token_profile a", "!twitter_check a", "!gen_wallet", "!connect"} {
				res, _ := bare.Dispatch(ctx, line, commands.State{})
				Expect(res.Text).To(Equal(commands.MsgUnavailable), line)
			}
		})
	})
})
