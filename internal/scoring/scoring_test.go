package scoring_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gapradar.app/engine/core/config"
	"gapradar.app/engine/internal/model"
	"gapradar.app/engine/internal/scoring"
)

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		ConfidenceK:         0.18,
		WTPBonus:            2,
		WTPBonusCap:         10,
		NarrowWindow:        24 * time.Hour,
		NarrowWindowPenalty: 0.85,
		TrendWindow:         7 * 24 * time.Hour,
		AccelerationFactor:  1.5,
		EmergingMaxEvidence: 5,
		TimingBase:          5.0,
		TimingAccelBonus:    3.0,
		TimingEmergingBonus: 1.0,
		MarketGrowthScale:   4.0,
		MarketGrowthCap:     2.0,
		MarketFreshness:     30 * 24 * time.Hour,
	}
}

var _ = Describe("Scoring Engine", func() {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	var engine *scoring.Engine

	record := func(postID int64, sigType model.SignalType, weight float64, pain int, wtp bool, createdAt time.Time) model.EvidenceRecord {
		return model.EvidenceRecord{
			Evidence: model.Evidence{
				OpportunityID: 1,
				RawPostID:     postID,
				SignalType:    sigType,
				Weight:        weight,
				CreatedAt:     createdAt,
			},
			PainSeverity:     pain,
			WillingnessToPay: wtp,
			PostScrapedAt:    createdAt,
		}
	}

	BeforeEach(func() {
		engine = scoring.NewWithClock(testScoringConfig(), func() time.Time { return now })
	})

	Describe("Compute", func() {
		It("scores an opportunity with no evidence at the floor", func() {
			opp := model.Opportunity{ID: 1, DetectedAt: now.Add(-time.Hour)}

			scores := engine.Compute(opp, nil, nil)

			Expect(scores.PainSeverity).To(BeZero())
			Expect(scores.Confidence).To(BeZero())
			Expect(scores.TrendScore).To(BeZero())
			Expect(scores.GrowthPattern).To(Equal(model.GrowthEmerging))
			// base 5.0 plus the emerging bonus
			Expect(scores.TimingScore).To(Equal(6.0))
		})

		It("is deterministic under a fixed clock", func() {
			opp := model.Opportunity{ID: 1, DetectedAt: now.Add(-30 * 24 * time.Hour)}
			records := []model.EvidenceRecord{
				record(1, model.SignalProblemStatement, 0.8, 8, false, now.Add(-2*24*time.Hour)),
				record(2, model.SignalProblemStatement, 0.6, 6, false, now.Add(-10*24*time.Hour)),
			}
			growth := 0.3
			market := &model.MarketDataSnapshot{GrowthRate: &growth, CollectedAt: now.Add(-24 * time.Hour)}

			first := engine.Compute(opp, records, market)
			for i := 0; i < 5; i++ {
				Expect(engine.Compute(opp, records, market)).To(Equal(first))
			}
		})
	})

	Describe("pain severity", func() {
		It("takes the weight-adjusted mean of per-post pain", func() {
			records := []model.EvidenceRecord{
				record(1, model.SignalProblemStatement, 0.8, 8, false, now.Add(-time.Hour)),
				record(2, model.SignalProblemStatement, 1.0, 6, false, now.Add(-2*time.Hour)),
			}
			scores := engine.Compute(model.Opportunity{ID: 1, DetectedAt: now}, records, nil)
			// (0.8*8 + 1.0*6) / 1.8 = 6.888...
			Expect(scores.PainSeverity).To(Equal(6.9))
		})

		It("stays within [0, 10]", func() {
			records := []model.EvidenceRecord{
				record(1, model.SignalProblemStatement, 1.0, 10, false, now),
			}
			scores := engine.Compute(model.Opportunity{ID: 1, DetectedAt: now}, records, nil)
			Expect(scores.PainSeverity).To(BeNumerically("<=", 10))
			Expect(scores.PainSeverity).To(BeNumerically(">=", 0))
		})
	})

	Describe("confidence", func() {
		It("saturates from distinct corroborating posts", func() {
			records := []model.EvidenceRecord{
				record(1, model.SignalProblemStatement, 0.8, 8, false, now.Add(-time.Hour)),
			}
			scores := engine.Compute(model.Opportunity{ID: 1, DetectedAt: now}, records, nil)
			// floor(100 * (1 - e^-0.18))
			Expect(scores.Confidence).To(Equal(16))
		})

		It("counts posts, not rows", func() {
			records := []model.EvidenceRecord{
				record(1, model.SignalProblemStatement, 0.8, 8, false, now.Add(-time.Hour)),
				record(1, model.SignalWillingnessToPay, 1.0, 8, true, now.Add(-time.Hour)),
				record(1, model.SignalCompetitorMention, 0.5, 8, true, now.Add(-time.Hour)),
			}
			scores := engine.Compute(model.Opportunity{ID: 1, DetectedAt: now}, records, nil)
			// one distinct post with one wtp post bonus: floor(16.47 + 2)
			Expect(scores.Confidence).To(Equal(18))
		})

		It("never decreases as distinct posts accumulate", func() {
			var records []model.EvidenceRecord
			prev := 0
			for i := 1; i <= 12; i++ {
				// spread far apart so the narrow-window penalty never kicks in
				records = append(records, record(int64(i), model.SignalProblemStatement, 0.8, 7, false,
					now.Add(-time.Duration(i)*3*24*time.Hour)))

				scores := engine.Compute(model.Opportunity{ID: 1, DetectedAt: now.Add(-365 * 24 * time.Hour)}, records, nil)
				Expect(scores.Confidence).To(BeNumerically(">=", prev))
				prev = scores.Confidence
			}
		})

		It("rewards willingness-to-pay corroboration", func() {
			base := []model.EvidenceRecord{
				record(1, model.SignalProblemStatement, 0.8, 8, false, now.Add(-time.Hour)),
				record(2, model.SignalProblemStatement, 0.8, 8, false, now.Add(-3*24*time.Hour)),
			}
			withWTP := append([]model.EvidenceRecord{
				record(1, model.SignalWillingnessToPay, 1.0, 8, true, now.Add(-time.Hour)),
				record(2, model.SignalWillingnessToPay, 1.0, 8, true, now.Add(-3*24*time.Hour)),
			}, base...)

			opp := model.Opportunity{ID: 1, DetectedAt: now.Add(-60 * 24 * time.Hour)}
			without := engine.Compute(opp, base, nil).Confidence
			with := engine.Compute(opp, withWTP, nil).Confidence

			Expect(with).To(Equal(without + 4))
		})

		It("caps the willingness-to-pay bonus", func() {
			var plain, wtp []model.EvidenceRecord
			for i := 1; i <= 8; i++ {
				at := now.Add(-time.Duration(i) * 3 * 24 * time.Hour)
				plain = append(plain, record(int64(i), model.SignalProblemStatement, 0.8, 8, false, at))
				wtp = append(wtp, record(int64(i), model.SignalWillingnessToPay, 1.0, 8, true, at))
			}
			opp := model.Opportunity{ID: 1, DetectedAt: now.Add(-365 * 24 * time.Hour)}

			without := engine.Compute(opp, plain, nil).Confidence
			with := engine.Compute(opp, append(plain, wtp...), nil).Confidence

			// 8 wtp posts * 2 would be 16, capped at 10
			Expect(with - without).To(BeNumerically("<=", 10))
		})

		It("penalizes evidence bursts inside one narrow window", func() {
			burst := []model.EvidenceRecord{
				record(1, model.SignalProblemStatement, 0.8, 8, false, now.Add(-time.Hour)),
				record(2, model.SignalProblemStatement, 0.8, 8, false, now.Add(-2*time.Hour)),
			}
			spread := []model.EvidenceRecord{
				record(1, model.SignalProblemStatement, 0.8, 8, false, now.Add(-time.Hour)),
				record(2, model.SignalProblemStatement, 0.8, 8, false, now.Add(-5*24*time.Hour)),
			}
			opp := model.Opportunity{ID: 1, DetectedAt: now.Add(-60 * 24 * time.Hour)}

			Expect(engine.Compute(opp, burst, nil).Confidence).
				To(BeNumerically("<", engine.Compute(opp, spread, nil).Confidence))
		})

		It("does not penalize a single post for being a burst", func() {
			records := []model.EvidenceRecord{
				record(1, model.SignalProblemStatement, 0.8, 8, false, now.Add(-time.Hour)),
			}
			scores := engine.Compute(model.Opportunity{ID: 1, DetectedAt: now}, records, nil)
			Expect(scores.Confidence).To(Equal(16))
		})

		It("stays within [0, 100]", func() {
			var records []model.EvidenceRecord
			for i := 1; i <= 100; i++ {
				at := now.Add(-time.Duration(i) * 48 * time.Hour)
				records = append(records, record(int64(i), model.SignalProblemStatement, 1.0, 10, false, at))
				records = append(records, record(int64(i), model.SignalWillingnessToPay, 1.0, 10, true, at))
			}
			opp := model.Opportunity{ID: 1, DetectedAt: now.Add(-365 * 24 * time.Hour)}
			scores := engine.Compute(opp, records, nil)
			Expect(scores.Confidence).To(BeNumerically("<=", 100))
		})
	})

	Describe("trend score", func() {
		It("counts evidence rows inside the trailing window", func() {
			records := []model.EvidenceRecord{
				record(1, model.SignalProblemStatement, 0.8, 8, false, now.Add(-24*time.Hour)),
				record(2, model.SignalProblemStatement, 0.8, 8, false, now.Add(-6*24*time.Hour)),
				record(3, model.SignalProblemStatement, 0.8, 8, false, now.Add(-10*24*time.Hour)),
			}
			opp := model.Opportunity{ID: 1, DetectedAt: now.Add(-60 * 24 * time.Hour)}
			Expect(engine.Compute(opp, records, nil).TrendScore).To(Equal(2))
		})
	})

	Describe("growth pattern", func() {
		It("marks young opportunities with little evidence as emerging", func() {
			opp := model.Opportunity{ID: 1, DetectedAt: now.Add(-2 * 24 * time.Hour)}
			records := []model.EvidenceRecord{
				record(1, model.SignalProblemStatement, 0.8, 8, false, now.Add(-24*time.Hour)),
				record(2, model.SignalProblemStatement, 0.8, 8, false, now.Add(-12*time.Hour)),
			}
			Expect(engine.Compute(opp, records, nil).GrowthPattern).To(Equal(model.GrowthEmerging))
		})

		It("marks a clear recent spike as accelerating", func() {
			opp := model.Opportunity{ID: 1, DetectedAt: now.Add(-30 * 24 * time.Hour)}
			var records []model.EvidenceRecord
			for i := 1; i <= 5; i++ {
				records = append(records, record(int64(i), model.SignalProblemStatement, 0.8, 8, false, now.Add(-time.Duration(i)*24*time.Hour)))
			}
			records = append(records,
				record(10, model.SignalProblemStatement, 0.8, 8, false, now.Add(-10*24*time.Hour)),
				record(11, model.SignalProblemStatement, 0.8, 8, false, now.Add(-11*24*time.Hour)),
			)
			// 5 recent vs 2 prior: 5 > 1.5 * 2
			Expect(engine.Compute(opp, records, nil).GrowthPattern).To(Equal(model.GrowthAccelerating))
		})

		It("marks steady evidence flow as regular", func() {
			opp := model.Opportunity{ID: 1, DetectedAt: now.Add(-30 * 24 * time.Hour)}
			records := []model.EvidenceRecord{
				record(1, model.SignalProblemStatement, 0.8, 8, false, now.Add(-2*24*time.Hour)),
				record(2, model.SignalProblemStatement, 0.8, 8, false, now.Add(-5*24*time.Hour)),
				record(3, model.SignalProblemStatement, 0.8, 8, false, now.Add(-9*24*time.Hour)),
				record(4, model.SignalProblemStatement, 0.8, 8, false, now.Add(-12*24*time.Hour)),
			}
			// 2 recent vs 2 prior: no spike
			Expect(engine.Compute(opp, records, nil).GrowthPattern).To(Equal(model.GrowthRegular))
		})
	})

	Describe("timing score", func() {
		steadyRecords := func() []model.EvidenceRecord {
			return []model.EvidenceRecord{
				record(1, model.SignalProblemStatement, 0.8, 8, false, now.Add(-2*24*time.Hour)),
				record(2, model.SignalProblemStatement, 0.8, 8, false, now.Add(-5*24*time.Hour)),
				record(3, model.SignalProblemStatement, 0.8, 8, false, now.Add(-9*24*time.Hour)),
				record(4, model.SignalProblemStatement, 0.8, 8, false, now.Add(-12*24*time.Hour)),
			}
		}
		opp := model.Opportunity{ID: 1, DetectedAt: now.Add(-30 * 24 * time.Hour)}

		It("stays at the base without market data or momentum", func() {
			Expect(engine.Compute(opp, steadyRecords(), nil).TimingScore).To(Equal(5.0))
		})

		It("adds a bounded bonus for fresh market growth", func() {
			growth := 0.3
			market := &model.MarketDataSnapshot{GrowthRate: &growth, CollectedAt: now.Add(-24 * time.Hour)}
			// 5.0 + clamp(0.3*4, 0, 2) = 6.2
			Expect(engine.Compute(opp, steadyRecords(), market).TimingScore).To(Equal(6.2))
		})

		It("caps the market growth bonus", func() {
			growth := 10.0
			market := &model.MarketDataSnapshot{GrowthRate: &growth, CollectedAt: now.Add(-24 * time.Hour)}
			Expect(engine.Compute(opp, steadyRecords(), market).TimingScore).To(Equal(7.0))
		})

		It("ignores stale market snapshots", func() {
			growth := 0.3
			market := &model.MarketDataSnapshot{GrowthRate: &growth, CollectedAt: now.Add(-45 * 24 * time.Hour)}
			Expect(engine.Compute(opp, steadyRecords(), market).TimingScore).To(Equal(5.0))
		})

		It("ignores snapshots without a growth rate", func() {
			market := &model.MarketDataSnapshot{CollectedAt: now.Add(-24 * time.Hour)}
			Expect(engine.Compute(opp, steadyRecords(), market).TimingScore).To(Equal(5.0))
		})

		It("never exceeds 10", func() {
			accelOpp := model.Opportunity{ID: 1, DetectedAt: now.Add(-30 * 24 * time.Hour)}
			var records []model.EvidenceRecord
			for i := 1; i <= 6; i++ {
				records = append(records, record(int64(i), model.SignalProblemStatement, 0.8, 8, false, now.Add(-time.Duration(i)*12*time.Hour)))
			}
			growth := 10.0
			market := &model.MarketDataSnapshot{GrowthRate: &growth, CollectedAt: now.Add(-time.Hour)}

			scores := engine.Compute(accelOpp, records, market)
			Expect(scores.GrowthPattern).To(Equal(model.GrowthAccelerating))
			Expect(scores.TimingScore).To(Equal(10.0))
		})
	})
})
