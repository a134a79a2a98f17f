package commands_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/entropy/pkg/commands"
)

var _ = Describe("Parse", func() {
	It("lowercases the command token only", func() {
		inv := commands.Parse("  !TOKEN_Profile So11111111111111111111111111111111111111112  ")

		Expect(inv.Kind).To(Equal(commands.KindTokenProfile))
		Expect(inv.Name).To(Equal("!token_profile"))
		Expect(inv.Args).To(Equal([]string{"So11111111111111111111111111111111111111112"}))
	})

	It("splits arguments on any whitespace", func() {
		inv := commands.Parse("!pair_info\tsolana   ABC")

		Expect(inv.Kind).To(Equal(commands.KindPairInfo))
		Expect(inv.Args).To(Equal([]string{"solana", "ABC"}))
	})

	It("keeps the raw line", func() {
		inv := commands.Parse("!help me")
		Expect(inv.Raw).To(Equal("!help me"))
	})

	DescribeTable("non-commands are unrecognized",
		func(line string) {
			Expect(commands.Parse(line).Kind).To(Equal(commands.KindUnrecognized))
		},
		Entry("empty", ""),
		Entry("blank", "   "),
		Entry("plain question", "what is entropy?"),
		Entry("unknown command", "!unknown"),
		Entry("bare prefix", "!"),
		Entry("missing prefix", "help"),
		Entry("prefix later in line", "please !help"),
	)

	It("maps every kind name back to its kind", func() {
		for _, k := range commands.Kinds() {
			Expect(commands.Lookup("!" + k.String())).To(Equal(k))
		}
		Expect(commands.Kinds()).To(HaveLen(10))
	})

	It("detects command-shaped input", func() {
		Expect(commands.IsCommand("  !anything")).To(BeTrue())
		Expect(commands.IsCommand("hello")).To(BeFalse())
	})
})
