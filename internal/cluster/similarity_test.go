package cluster_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gapradar.app/engine/internal/cluster"
)

var _ = Describe("Jaccard", func() {
	It("returns 0 when both sets are empty", func() {
		Expect(cluster.Jaccard(nil, nil)).To(BeZero())
	})

	It("returns 0 when one set is empty", func() {
		Expect(cluster.Jaccard([]string{"dog grooming"}, nil)).To(BeZero())
	})

	It("returns 1 for identical sets", func() {
		a := []string{"dog grooming", "shedding"}
		Expect(cluster.Jaccard(a, a)).To(Equal(1.0))
	})

	It("returns 0 for disjoint sets", func() {
		Expect(cluster.Jaccard([]string{"a", "b"}, []string{"c", "d"})).To(BeZero())
	})

	It("computes partial overlap", func() {
		got := cluster.Jaccard([]string{"a", "b"}, []string{"b", "c"})
		Expect(got).To(BeNumerically("~", 1.0/3.0, 1e-9))
	})

	It("ignores duplicate elements", func() {
		got := cluster.Jaccard([]string{"a", "a", "b"}, []string{"b", "b", "c"})
		Expect(got).To(BeNumerically("~", 1.0/3.0, 1e-9))
	})

	It("is symmetric", func() {
		a := []string{"a", "b", "c"}
		b := []string{"b", "c", "d", "e"}
		Expect(cluster.Jaccard(a, b)).To(Equal(cluster.Jaccard(b, a)))
	})
})

var _ = Describe("SummaryOverlap", func() {
	It("returns 0 for two empty summaries", func() {
		Expect(cluster.SummaryOverlap("", "")).To(BeZero())
	})

	It("returns 1 for identical summaries", func() {
		s := "brushes tangle on long fur"
		Expect(cluster.SummaryOverlap(s, s)).To(Equal(1.0))
	})

	It("is case insensitive", func() {
		Expect(cluster.SummaryOverlap("Brushes Tangle", "brushes tangle")).To(Equal(1.0))
	})

	It("strips surrounding punctuation", func() {
		Expect(cluster.SummaryOverlap("brushes tangle!", "(brushes) tangle.")).To(Equal(1.0))
	})

	It("computes token overlap", func() {
		got := cluster.SummaryOverlap("brushes tangle badly", "brushes snag badly often")
		// tokens {brushes, tangle, badly} vs {brushes, snag, badly, often}: 2/5
		Expect(got).To(BeNumerically("~", 0.4, 1e-9))
	})

	It("returns 0 for unrelated summaries", func() {
		Expect(cluster.SummaryOverlap("dog grooming hurts", "tax filing confuses")).To(BeZero())
	})
})
