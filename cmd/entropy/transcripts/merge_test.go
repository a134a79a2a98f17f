package transcriptscmder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/entropy/pkg/llm"
	"github.com/papercomputeco/entropy/pkg/merkle"
)

var _ = Describe("Merge Command", func() {
	var (
		ctx     context.Context
		tmpDir  string
		srcPath string
		dstPath string
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		tmpDir, err = os.MkdirTemp("", "entropy-merge-test-*")
		Expect(err).NotTo(HaveOccurred())
		srcPath = filepath.Join(tmpDir, "source.db")
		dstPath = filepath.Join(tmpDir, "target.db")

		// keep the developer's own config out of the way
		GinkgoT().Setenv("ENTROPY_CONFIG", filepath.Join(tmpDir, "missing.toml"))
		GinkgoT().Setenv("ENTROPY_DB", "")
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	makeNode := func(msg llm.Message, parent *merkle.Node) *merkle.Node {
		return merkle.NewNode(merkle.MessageBucket(msg, "test-model"), parent)
	}

	seed := func(path string, nodes ...*merkle.Node) {
		s, err := merkle.NewSQLiteStorer(path)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()
		for _, n := range nodes {
			_, err := s.Put(ctx, n)
			Expect(err).NotTo(HaveOccurred())
		}
	}

	countNodes := func(path string) int {
		s, err := merkle.NewSQLiteStorer(path)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()
		nodes, err := s.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		return len(nodes)
	}

	runMerge := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := NewMergeCmd()
		cmd.SetOut(&out)
		cmd.SetArgs(args)
		err := cmd.ExecuteContext(ctx)
		return out.String(), err
	}

	It("merges nodes from source into target", func() {
		nodeA := makeNode(llm.UserMessage("hello from source"), nil)
		nodeB := makeNode(llm.AssistantMessage("hi back"), nodeA)
		seed(srcPath, nodeA, nodeB)
		seed(dstPath, makeNode(llm.UserMessage("hello from target"), nil))

		out, err := runMerge("--db", dstPath, srcPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Merged 2 new nodes from 1 sources (0 already existed)"))

		Expect(countNodes(dstPath)).To(Equal(3))
	})

	It("deduplicates when merging the same source twice", func() {
		seed(srcPath, makeNode(llm.UserMessage("dedup test"), nil))
		seed(dstPath)

		_, err := runMerge("--db", dstPath, srcPath)
		Expect(err).NotTo(HaveOccurred())

		out, err := runMerge("--db", dstPath, srcPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("0 new, 1 already existed"))

		Expect(countNodes(dstPath)).To(Equal(1))
	})

	It("merges multiple sources sharing a prefix", func() {
		src2Path := filepath.Join(tmpDir, "source2.db")

		question := makeNode(llm.UserMessage("wen moon"), nil)
		seed(srcPath, question, makeNode(llm.AssistantMessage("soon"), question))
		seed(src2Path, question, makeNode(llm.AssistantMessage("never"), question))

		_, err := runMerge("--db", dstPath, srcPath, src2Path)
		Expect(err).NotTo(HaveOccurred())

		Expect(countNodes(dstPath)).To(Equal(3))

		target, err := merkle.NewSQLiteStorer(dstPath)
		Expect(err).NotTo(HaveOccurred())
		defer target.Close()
		leaves, err := target.Leaves(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(leaves).To(HaveLen(2))
	})

	It("fails on a missing source without creating it", func() {
		missing := filepath.Join(tmpDir, "nope.db")

		_, err := runMerge("--db", dstPath, missing)
		Expect(err).To(HaveOccurred())

		_, statErr := os.Stat(missing)
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})

	It("needs a target when none is configured", func() {
		seed(srcPath)

		_, err := runMerge(srcPath)
		Expect(err).To(MatchError(ContainSubstring("no target database")))
	})
})
