package merkle_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/entropy/pkg/llm"
	"github.com/papercomputeco/entropy/pkg/merkle"
)

func bucket(role llm.Role, content string) merkle.Bucket {
	return merkle.MessageBucket(llm.Message{Role: role, Content: content}, "test-model")
}

var _ = Describe("Node", func() {
	Describe("NewNode", func() {
		Context("when creating a root node (no parent)", func() {
			It("keeps the given bucket", func() {
				b := bucket(llm.RoleUser, "hello world")
				node := merkle.NewNode(b, nil)

				Expect(node.Bucket).To(Equal(b))
				Expect(node.Bucket.Type).To(Equal("message"))
			})

			It("sets ParentHash to nil for root nodes", func() {
				node := merkle.NewNode(bucket(llm.RoleUser, "test"), nil)

				Expect(node.ParentHash).To(BeNil())
			})

			It("produces consistent hashes for the same bucket", func() {
				node1 := merkle.NewNode(bucket(llm.RoleUser, "same content"), nil)
				node2 := merkle.NewNode(bucket(llm.RoleUser, "same content"), nil)

				Expect(node1.Hash).To(Equal(node2.Hash))
			})

			It("produces different hashes for different content", func() {
				node1 := merkle.NewNode(bucket(llm.RoleUser, "content A"), nil)
				node2 := merkle.NewNode(bucket(llm.RoleUser, "content B"), nil)

				Expect(node1.Hash).NotTo(Equal(node2.Hash))
			})

			It("produces different hashes for different roles", func() {
				node1 := merkle.NewNode(bucket(llm.RoleUser, "same"), nil)
				node2 := merkle.NewNode(bucket(llm.RoleAssistant, "same"), nil)

				Expect(node1.Hash).NotTo(Equal(node2.Hash))
			})
		})

		Context("when creating a child node (with parent)", func() {
			var parent *merkle.Node

			BeforeEach(func() {
				parent = merkle.NewNode(bucket(llm.RoleSystem, "parent content"), nil)
			})

			It("links the child to the parent via ParentHash", func() {
				child := merkle.NewNode(bucket(llm.RoleUser, "child content"), parent)

				Expect(child.ParentHash).NotTo(BeNil())
				Expect(*child.ParentHash).To(Equal(parent.Hash))
			})

			It("produces different hashes for same bucket with different parents", func() {
				parent2 := merkle.NewNode(bucket(llm.RoleSystem, "different parent"), nil)
				child1 := merkle.NewNode(bucket(llm.RoleUser, "same content"), parent)
				child2 := merkle.NewNode(bucket(llm.RoleUser, "same content"), parent2)

				Expect(child1.Hash).NotTo(Equal(child2.Hash))
			})
		})
	})

	Describe("Chain", func() {
		It("links every message to its predecessor", func() {
			msgs := []llm.Message{
				llm.Persona(),
				llm.UserMessage("what is a bird?"),
				llm.AssistantMessage("a dinosaur that adapted"),
			}
			nodes := merkle.Chain(msgs, "gpt-3.5-turbo")

			Expect(nodes).To(HaveLen(3))
			Expect(nodes[0].ParentHash).To(BeNil())
			Expect(*nodes[1].ParentHash).To(Equal(nodes[0].Hash))
			Expect(*nodes[2].ParentHash).To(Equal(nodes[1].Hash))
			Expect(nodes[2].Bucket.Model).To(Equal("gpt-3.5-turbo"))
			Expect(nodes[2].Bucket.Content).To(Equal("a dinosaur that adapted"))
		})

		It("returns no nodes for an empty conversation", func() {
			Expect(merkle.Chain(nil, "m")).To(BeEmpty())
		})
	})

	Describe("Hash computation", func() {
		It("produces a valid SHA-256 hex string (64 characters)", func() {
			node := merkle.NewNode(bucket(llm.RoleUser, "test"), nil)

			Expect(node.Hash).To(HaveLen(64))
			Expect(node.Hash).To(MatchRegexp("^[a-f0-9]{64}$"))
		})
	})
})
