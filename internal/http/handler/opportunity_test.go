package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gapradar.app/engine/internal/http/handler"
	"gapradar.app/engine/internal/model"
	"gapradar.app/engine/internal/store"
)

var _ = Describe("OpportunityHandler", func() {
	var (
		router      *gin.Engine
		opps        *mockOpportunityStore
		evidence    *mockEvidenceStore
		competitors *mockCompetitorStore
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		opps = &mockOpportunityStore{}
		evidence = &mockEvidenceStore{}
		competitors = &mockCompetitorStore{}
		h := handler.NewOpportunityHandler(opps, evidence, competitors)
		router.GET("/opportunities", h.List)
		router.GET("/opportunities/:id", h.Get)
		router.GET("/opportunities/:id/evidence", h.ListEvidence)
		router.GET("/opportunities/:id/competitors", h.ListCompetitors)
	})

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("List", func() {
		It("passes query filters through to the store", func() {
			var captured store.ListOpportunitiesFilter
			opps.listFn = func(_ context.Context, filter store.ListOpportunitiesFilter) ([]model.Opportunity, error) {
				captured = filter
				return []model.Opportunity{{ID: 1, Title: "dog grooming"}}, nil
			}

			w := get("/opportunities?status=active&category=better_alternative&min_confidence=40&limit=5")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(captured.Status).To(Equal(model.OpportunityStatusActive))
			Expect(captured.Category).To(Equal(model.CategoryBetterAlternative))
			Expect(captured.MinConfidence).To(Equal(40))
			Expect(captured.Limit).To(Equal(int32(5)))

			var resp map[string][]model.Opportunity
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["opportunities"]).To(HaveLen(1))
		})

		It("returns 500 when the store fails", func() {
			opps.listFn = func(_ context.Context, _ store.ListOpportunitiesFilter) ([]model.Opportunity, error) {
				return nil, errors.New("connection reset")
			}

			Expect(get("/opportunities").Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("Get", func() {
		It("returns the opportunity", func() {
			opps.getByIDFn = func(_ context.Context, id int64) (*model.Opportunity, error) {
				Expect(id).To(Equal(int64(42)))
				return &model.Opportunity{ID: 42, Title: "dog grooming"}, nil
			}

			w := get("/opportunities/42")

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp model.Opportunity
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.ID).To(Equal(int64(42)))
		})

		It("returns 404 for an unknown opportunity", func() {
			opps.getByIDFn = func(_ context.Context, _ int64) (*model.Opportunity, error) {
				return nil, store.ErrNotFound
			}

			Expect(get("/opportunities/42").Code).To(Equal(http.StatusNotFound))
		})

		It("returns 400 for a non-numeric id", func() {
			Expect(get("/opportunities/abc").Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("ListEvidence", func() {
		It("returns the opportunity's evidence", func() {
			evidence.listByOpportunityFn = func(_ context.Context, id int64) ([]model.Evidence, error) {
				Expect(id).To(Equal(int64(42)))
				return []model.Evidence{{ID: 1, OpportunityID: 42, SignalType: model.SignalProblemStatement}}, nil
			}

			w := get("/opportunities/42/evidence")

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string][]model.Evidence
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["evidence"]).To(HaveLen(1))
		})
	})

	Describe("ListCompetitors", func() {
		It("returns the opportunity's competitor listings", func() {
			competitors.listByOpportunityFn = func(_ context.Context, id int64) ([]model.CompetitorListing, error) {
				return []model.CompetitorListing{{ID: 1, OpportunityID: id, Name: "TangleFree Pro"}}, nil
			}

			w := get("/opportunities/42/competitors")

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string][]model.CompetitorListing
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["competitors"]).To(HaveLen(1))
		})
	})
})
