package ledger_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gapradar.app/engine/internal/ledger"
	"gapradar.app/engine/internal/model"
)

var _ = Describe("EntriesFor", func() {
	It("always derives a problem statement weighted by pain", func() {
		entries := ledger.EntriesFor(model.Signal{PainSeverity: 8, Category: model.CategoryNewInvention})

		Expect(entries).To(HaveLen(1))
		Expect(entries[0].SignalType).To(Equal(model.SignalProblemStatement))
		Expect(entries[0].Weight).To(BeNumerically("~", 0.8, 1e-9))
	})

	It("floors the problem statement weight", func() {
		entries := ledger.EntriesFor(model.Signal{PainSeverity: 0, Category: model.CategoryNewInvention})
		Expect(entries[0].Weight).To(Equal(0.1))
	})

	It("adds willingness to pay when the author signals spend intent", func() {
		entries := ledger.EntriesFor(model.Signal{
			PainSeverity:     7,
			WillingnessToPay: true,
			Category:         model.CategoryNewInvention,
		})

		Expect(entries).To(HaveLen(2))
		Expect(entries[1].SignalType).To(Equal(model.SignalWillingnessToPay))
		Expect(entries[1].Weight).To(Equal(1.0))
	})

	It("adds a competitor mention for better_alternative", func() {
		entries := ledger.EntriesFor(model.Signal{PainSeverity: 7, Category: model.CategoryBetterAlternative})

		Expect(entries).To(HaveLen(2))
		Expect(entries[1].SignalType).To(Equal(model.SignalCompetitorMention))
		Expect(entries[1].Weight).To(Equal(0.5))
	})

	It("adds a competitor mention for cheaper_option", func() {
		entries := ledger.EntriesFor(model.Signal{PainSeverity: 7, Category: model.CategoryCheaperOption})
		Expect(entries).To(HaveLen(2))
		Expect(entries[1].SignalType).To(Equal(model.SignalCompetitorMention))
	})

	It("does not add a competitor mention for new_invention or quality_improvement", func() {
		for _, cat := range []model.ProductCategory{model.CategoryNewInvention, model.CategoryQualityImprovement} {
			entries := ledger.EntriesFor(model.Signal{PainSeverity: 7, Category: cat})
			Expect(entries).To(HaveLen(1))
		}
	})

	It("derives all three entries for a paying competitor complaint", func() {
		entries := ledger.EntriesFor(model.Signal{
			PainSeverity:     9,
			WillingnessToPay: true,
			Category:         model.CategoryCheaperOption,
		})
		Expect(entries).To(HaveLen(3))
	})
})

var _ = Describe("Ledger Record", func() {
	var (
		l        *ledger.Ledger
		evidence *mockEvidenceStore
		opps     *mockOpportunityStore
		ctx      context.Context
	)

	sig := model.Signal{
		RawPostID:        42,
		PainSeverity:     8,
		WillingnessToPay: true,
		Category:         model.CategoryBetterAlternative,
	}

	BeforeEach(func() {
		l = ledger.New()
		evidence = &mockEvidenceStore{}
		opps = &mockOpportunityStore{}
		ctx = context.Background()
	})

	It("inserts every derived entry and recounts", func() {
		var inserted []model.Evidence
		evidence.createIfAbsentFn = func(_ context.Context, ev *model.Evidence) (bool, error) {
			inserted = append(inserted, *ev)
			return true, nil
		}
		evidence.countDistinctPostsFn = func(_ context.Context, _ int64) (int, error) {
			return 1, nil
		}
		var recordedCount int
		opps.setEvidenceCountFn = func(_ context.Context, id int64, count int) error {
			Expect(id).To(Equal(int64(7)))
			recordedCount = count
			return nil
		}

		res, err := l.Record(ctx, evidence, opps, 7, sig)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Added).To(Equal(3))
		Expect(res.Duplicates).To(BeZero())
		Expect(res.EvidenceCount).To(Equal(1))
		Expect(recordedCount).To(Equal(1))
		Expect(inserted).To(HaveLen(3))
		for _, ev := range inserted {
			Expect(ev.OpportunityID).To(Equal(int64(7)))
			Expect(ev.RawPostID).To(Equal(int64(42)))
		}
	})

	It("treats a replayed signal as a no-op apart from the recount", func() {
		evidence.createIfAbsentFn = func(_ context.Context, _ *model.Evidence) (bool, error) {
			return false, nil
		}
		evidence.countDistinctPostsFn = func(_ context.Context, _ int64) (int, error) {
			return 5, nil
		}

		res, err := l.Record(ctx, evidence, opps, 7, sig)

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Added).To(BeZero())
		Expect(res.Duplicates).To(Equal(3))
		Expect(res.EvidenceCount).To(Equal(5))
	})

	It("fails when an insert fails", func() {
		evidence.createIfAbsentFn = func(_ context.Context, _ *model.Evidence) (bool, error) {
			return false, errors.New("connection reset")
		}

		_, err := l.Record(ctx, evidence, opps, 7, sig)
		Expect(err).To(HaveOccurred())
	})

	It("fails when the recount cannot be persisted", func() {
		evidence.countDistinctPostsFn = func(_ context.Context, _ int64) (int, error) {
			return 2, nil
		}
		opps.setEvidenceCountFn = func(_ context.Context, _ int64, _ int) error {
			return errors.New("connection reset")
		}

		_, err := l.Record(ctx, evidence, opps, 7, sig)
		Expect(err).To(HaveOccurred())
	})
})
