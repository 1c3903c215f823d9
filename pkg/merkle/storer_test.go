package merkle_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/neural/pkg/merkle"
)

func describeStorer(name string, newStorer func() merkle.Storer) {
	Describe(name, func() {
		var (
			storer merkle.Storer
			ctx    context.Context
		)

		BeforeEach(func() {
			ctx = context.Background()
			storer = newStorer()
		})

		AfterEach(func() {
			storer.Close()
		})

		Describe("Put and Get", func() {
			It("stores and retrieves a node", func() {
				node := merkle.NewNode(msg("user", "hi"), nil)

				isNew, err := storer.Put(ctx, node)
				Expect(err).NotTo(HaveOccurred())
				Expect(isNew).To(BeTrue())

				retrieved, err := storer.Get(ctx, node.Hash)
				Expect(err).NotTo(HaveOccurred())
				Expect(retrieved.Hash).To(Equal(node.Hash))
				Expect(retrieved.Bucket).To(Equal(node.Bucket))
				Expect(retrieved.ParentHash).To(BeNil())
			})

			It("keeps the parent link", func() {
				parent := merkle.NewNode(msg("system", "persona"), nil)
				child := merkle.NewNode(msg("user", "hi"), parent)
				storer.Put(ctx, parent)
				storer.Put(ctx, child)

				retrieved, err := storer.Get(ctx, child.Hash)
				Expect(err).NotTo(HaveOccurred())
				Expect(retrieved.ParentHash).NotTo(BeNil())
				Expect(*retrieved.ParentHash).To(Equal(parent.Hash))
			})

			It("returns ErrNotFound for non-existent hash", func() {
				_, err := storer.Get(ctx, "nonexistent")

				Expect(err).To(BeAssignableToTypeOf(merkle.ErrNotFound{}))
				Expect(err.Error()).To(ContainSubstring("nonexistent"))
			})

			It("is idempotent for duplicate puts", func() {
				node := merkle.NewNode(msg("user", "hi"), nil)

				_, err := storer.Put(ctx, node)
				Expect(err).NotTo(HaveOccurred())

				isNew, err := storer.Put(ctx, merkle.NewNode(msg("user", "hi"), nil))
				Expect(err).NotTo(HaveOccurred())
				Expect(isNew).To(BeFalse())

				nodes, _ := storer.List(ctx)
				Expect(nodes).To(HaveLen(1))
			})

			It("rejects nil nodes", func() {
				_, err := storer.Put(ctx, nil)

				Expect(err).To(MatchError(merkle.ErrNilNode))
			})
		})

		Describe("Has", func() {
			It("reports existing and missing nodes", func() {
				node := merkle.NewNode(msg("user", "hi"), nil)
				storer.Put(ctx, node)

				exists, err := storer.Has(ctx, node.Hash)
				Expect(err).NotTo(HaveOccurred())
				Expect(exists).To(BeTrue())

				exists, err = storer.Has(ctx, "nonexistent")
				Expect(err).NotTo(HaveOccurred())
				Expect(exists).To(BeFalse())
			})
		})

		Describe("List", func() {
			It("returns empty for an empty store", func() {
				nodes, err := storer.List(ctx)

				Expect(err).NotTo(HaveOccurred())
				Expect(nodes).To(BeEmpty())
			})
		})

		Describe("Leaves", func() {
			It("returns one leaf per branch", func() {
				root, err := merkle.Chain(ctx, storer, nil, msg("system", "persona"), msg("user", "2+2?"))
				Expect(err).NotTo(HaveOccurred())

				leaf1, _ := merkle.Chain(ctx, storer, root, msg("assistant", "4"))
				leaf2, _ := merkle.Chain(ctx, storer, root, msg("assistant", "four"))

				leaves, err := storer.Leaves(ctx)
				Expect(err).NotTo(HaveOccurred())

				Expect(leaves).To(HaveLen(2))
				hashes := []string{leaves[0].Hash, leaves[1].Hash}
				Expect(hashes).To(ConsistOf(leaf1.Hash, leaf2.Hash))
			})
		})

		Describe("Ancestry and History", func() {
			var head *merkle.Node

			BeforeEach(func() {
				var err error
				head, err = merkle.Chain(ctx, storer, nil,
					msg("system", "persona"),
					msg("user", "hi"),
					msg("assistant", "hello!"),
				)
				Expect(err).NotTo(HaveOccurred())
			})

			It("returns the path from node to root", func() {
				path, err := storer.Ancestry(ctx, head.Hash)

				Expect(err).NotTo(HaveOccurred())
				Expect(path).To(HaveLen(3))
				Expect(path[0].Bucket.Content).To(Equal("hello!"))
				Expect(path[2].Bucket.Content).To(Equal("persona"))
			})

			It("returns the history oldest first", func() {
				history, err := merkle.History(ctx, storer, head.Hash)

				Expect(err).NotTo(HaveOccurred())
				Expect(history).To(HaveLen(3))
				Expect(history[0].Bucket.Role).To(Equal("system"))
				Expect(history[1].Bucket.Role).To(Equal("user"))
				Expect(history[2].Bucket.Role).To(Equal("assistant"))
			})

			It("fails for unknown hashes", func() {
				_, err := merkle.History(ctx, storer, "nonexistent")

				Expect(err).To(BeAssignableToTypeOf(merkle.ErrNotFound{}))
			})

			It("deduplicates a replayed conversation", func() {
				_, err := merkle.Chain(ctx, storer, nil,
					msg("system", "persona"),
					msg("user", "hi"),
					msg("assistant", "hello!"),
				)
				Expect(err).NotTo(HaveOccurred())

				nodes, _ := storer.List(ctx)
				Expect(nodes).To(HaveLen(3))
			})
		})
	})
}

var _ = Describe("Storers", func() {
	describeStorer("MemoryStorer", func() merkle.Storer {
		return merkle.NewMemoryStorer()
	})

	describeStorer("SQLiteStorer", func() merkle.Storer {
		s, err := merkle.NewSQLiteStorer(":memory:")
		Expect(err).NotTo(HaveOccurred())
		return s
	})
})

var _ = Describe("SQLiteStorer on disk", func() {
	It("persists nodes across reopen", func() {
		ctx := context.Background()
		dbPath := filepath.Join(GinkgoT().TempDir(), "transcripts.db")

		s, err := merkle.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		head, err := merkle.Chain(ctx, s, nil, msg("user", "a red fox"))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Close()).To(Succeed())

		_, err = os.Stat(dbPath)
		Expect(err).NotTo(HaveOccurred())

		reopened, err := merkle.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer reopened.Close()

		exists, err := reopened.Has(ctx, head.Hash)
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeTrue())
	})
})

var _ = Describe("Open", func() {
	It("selects the memory storer for :memory:", func() {
		s, err := merkle.Open(merkle.MemoryPath)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		Expect(s).To(BeAssignableToTypeOf(&merkle.MemoryStorer{}))
	})

	It("selects SQLite for a file path", func() {
		s, err := merkle.Open(filepath.Join(GinkgoT().TempDir(), "t.db"))
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		Expect(s).To(BeAssignableToTypeOf(&merkle.SQLiteStorer{}))
	})
})
