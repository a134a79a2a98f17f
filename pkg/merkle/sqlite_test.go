package merkle_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/entropy/pkg/llm"
	"github.com/papercomputeco/entropy/pkg/merkle"
)

func storerBehaviors(newStorer func() merkle.Storer) {
	var (
		storer merkle.Storer
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		storer = newStorer()
	})

	AfterEach(func() {
		if storer != nil {
			storer.Close()
		}
	})

	Describe("Put and Get", func() {
		It("stores and retrieves a node with parent", func() {
			parent := merkle.NewNode(bucket(llm.RoleUser, "parent"), nil)
			child := merkle.NewNode(bucket(llm.RoleAssistant, "child"), parent)

			isNew, err := storer.Put(ctx, parent)
			Expect(err).NotTo(HaveOccurred())
			Expect(isNew).To(BeTrue())
			_, err = storer.Put(ctx, child)
			Expect(err).NotTo(HaveOccurred())

			got, err := storer.Get(ctx, child.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Hash).To(Equal(child.Hash))
			Expect(got.Bucket).To(Equal(child.Bucket))
			Expect(got.ParentHash).NotTo(BeNil())
			Expect(*got.ParentHash).To(Equal(parent.Hash))
		})

		It("returns ErrNotFound for non-existent hash", func() {
			_, err := storer.Get(ctx, "nonexistent")
			Expect(err).To(HaveOccurred())

			var notFound merkle.ErrNotFound
			Expect(errors.As(err, &notFound)).To(BeTrue())
			Expect(notFound.Hash).To(Equal("nonexistent"))
		})

		It("is idempotent for duplicate puts", func() {
			node := merkle.NewNode(bucket(llm.RoleUser, "dup"), nil)

			isNew, err := storer.Put(ctx, node)
			Expect(err).NotTo(HaveOccurred())
			Expect(isNew).To(BeTrue())

			isNew, err = storer.Put(ctx, node)
			Expect(err).NotTo(HaveOccurred())
			Expect(isNew).To(BeFalse())

			nodes, err := storer.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(nodes).To(HaveLen(1))
		})

		It("rejects nil nodes", func() {
			_, err := storer.Put(ctx, nil)
			Expect(err).To(MatchError(merkle.ErrNilNode))
		})
	})

	Describe("Has", func() {
		It("reports existing and missing nodes", func() {
			node := merkle.NewNode(bucket(llm.RoleUser, "here"), nil)
			_, err := storer.Put(ctx, node)
			Expect(err).NotTo(HaveOccurred())

			Expect(storer.Has(ctx, node.Hash)).To(BeTrue())
			Expect(storer.Has(ctx, "missing")).To(BeFalse())
		})
	})

	Describe("List, Roots and Leaves", func() {
		It("returns an empty listing for an empty store", func() {
			nodes, err := storer.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(nodes).To(BeEmpty())
		})

		It("tracks branches from a shared prefix", func() {
			user := merkle.NewNode(bucket(llm.RoleUser, "What is 2+2?"), nil)
			reply1 := merkle.NewNode(bucket(llm.RoleAssistant, "4, by selection."), user)
			reply2 := merkle.NewNode(bucket(llm.RoleAssistant, "Four, as numbers evolved."), user)

			added, err := merkle.PutChain(ctx, storer, []*merkle.Node{user, reply1, reply2})
			Expect(err).NotTo(HaveOccurred())
			Expect(added).To(Equal(3))

			nodes, err := storer.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(nodes).To(HaveLen(3))
			Expect(nodes[0].Hash).To(Equal(user.Hash))

			roots, err := storer.Roots(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(roots).To(HaveLen(1))
			Expect(roots[0].Hash).To(Equal(user.Hash))

			leaves, err := storer.Leaves(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(leaves).To(HaveLen(2))
		})
	})

	Describe("Ancestry", func() {
		It("returns path from node to root", func() {
			nodes := merkle.Chain([]llm.Message{
				llm.Persona(),
				llm.UserMessage("hi"),
				llm.AssistantMessage("hello, evolved one"),
			}, "m")
			_, err := merkle.PutChain(ctx, storer, nodes)
			Expect(err).NotTo(HaveOccurred())

			path, err := merkle.Ancestry(ctx, storer, nodes[2].Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(HaveLen(3))
			Expect(path[0].Hash).To(Equal(nodes[2].Hash))
			Expect(path[2].Hash).To(Equal(nodes[0].Hash))
		})

		It("fails for an unknown hash", func() {
			_, err := merkle.Ancestry(ctx, storer, "nope")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Content-addressable deduplication", func() {
		It("only stores the new suffix of a repeated conversation", func() {
			first := merkle.Chain([]llm.Message{
				llm.UserMessage("hi"),
				llm.AssistantMessage("hello"),
			}, "m")
			second := merkle.Chain([]llm.Message{
				llm.UserMessage("hi"),
				llm.AssistantMessage("hello"),
				llm.UserMessage("again"),
			}, "m")

			added, err := merkle.PutChain(ctx, storer, first)
			Expect(err).NotTo(HaveOccurred())
			Expect(added).To(Equal(2))

			added, err = merkle.PutChain(ctx, storer, second)
			Expect(err).NotTo(HaveOccurred())
			Expect(added).To(Equal(1))
		})
	})
}

var _ = Describe("MemoryStorer", func() {
	storerBehaviors(func() merkle.Storer { return merkle.NewMemoryStorer() })
})

var _ = Describe("SQLiteStorer", func() {
	storerBehaviors(func() merkle.Storer {
		s, err := merkle.NewSQLiteStorer(":memory:")
		Expect(err).NotTo(HaveOccurred())
		return s
	})

	It("creates a storer with file database", func() {
		tmpDir := GinkgoT().TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		s, err := merkle.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		_, err = os.Stat(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	It("persists nodes across reopen", func() {
		dbPath := filepath.Join(GinkgoT().TempDir(), "persist.db")
		node := merkle.NewNode(bucket(llm.RoleUser, "remember me"), nil)

		s, err := merkle.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		_, err = s.Put(context.Background(), node)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Close()).To(Succeed())

		s, err = merkle.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		got, err := s.Get(context.Background(), node.Hash)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Bucket.Content).To(Equal("remember me"))
	})
})
