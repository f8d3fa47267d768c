package ingest_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gapradar.app/engine/internal/ingest"
	"gapradar.app/engine/internal/model"
	"gapradar.app/engine/internal/queue"
	"gapradar.app/engine/internal/store"
)

type mockPostStore struct {
	createOrGetFn func(ctx context.Context, post *model.RawPost) (model.RawPost, bool, error)
}

func (m *mockPostStore) CreateOrGet(ctx context.Context, post *model.RawPost) (model.RawPost, bool, error) {
	if m.createOrGetFn != nil {
		return m.createOrGetFn(ctx, post)
	}
	return *post, true, nil
}

func (m *mockPostStore) GetByID(ctx context.Context, id int64) (*model.RawPost, error) {
	return nil, store.ErrNotFound
}

func (m *mockPostStore) ListUnprocessed(ctx context.Context, limit int32) ([]model.RawPost, error) {
	return nil, nil
}

func (m *mockPostStore) MarkProcessed(ctx context.Context, id int64) error {
	return nil
}

type mockProducer struct {
	enqueueFn func(ctx context.Context, msg queue.PipelineRunMessage) error
	enqueued  []queue.PipelineRunMessage
}

func (m *mockProducer) Enqueue(ctx context.Context, msg queue.PipelineRunMessage) error {
	m.enqueued = append(m.enqueued, msg)
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, msg)
	}
	return nil
}

func (m *mockProducer) Close() error { return nil }

var _ = Describe("Ingest Service", func() {
	var (
		posts    *mockPostStore
		producer *mockProducer
		svc      *ingest.Service
		ctx      context.Context
	)

	params := ingest.Params{
		Platform: "reddit",
		PostID:   "t3_abc123",
		Content:  "Every brush I buy tangles in my dog's fur.",
		Author:   "u/frustrated",
		Metrics:  map[string]float64{"upvotes": 120},
	}

	BeforeEach(func() {
		posts = &mockPostStore{}
		producer = &mockProducer{}
		svc = ingest.New(posts, producer)
		ctx = context.Background()
	})

	It("stores a first-seen post and enqueues a pipeline trigger", func() {
		var stored *model.RawPost
		posts.createOrGetFn = func(_ context.Context, post *model.RawPost) (model.RawPost, bool, error) {
			stored = post
			p := *post
			p.ID = 101
			return p, true, nil
		}

		result, err := svc.Ingest(ctx, params)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Duplicate).To(BeFalse())
		Expect(result.Post.ID).To(Equal(int64(101)))

		Expect(stored.ContentHash).To(Equal(ingest.ContentHash(params.Platform, params.PostID, params.Content)))
		Expect(stored.ScrapedAt).NotTo(BeZero())

		Expect(producer.enqueued).To(HaveLen(1))
		Expect(producer.enqueued[0].RequestedBy).To(Equal("ingest"))
	})

	It("treats an already-seen content hash as a duplicate and enqueues nothing", func() {
		posts.createOrGetFn = func(_ context.Context, post *model.RawPost) (model.RawPost, bool, error) {
			p := *post
			p.ID = 55
			return p, false, nil
		}

		result, err := svc.Ingest(ctx, params)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Duplicate).To(BeTrue())
		Expect(result.Post.ID).To(Equal(int64(55)))
		Expect(producer.enqueued).To(BeEmpty())
	})

	It("keeps a caller-provided content hash", func() {
		var stored *model.RawPost
		posts.createOrGetFn = func(_ context.Context, post *model.RawPost) (model.RawPost, bool, error) {
			stored = post
			return *post, true, nil
		}

		p := params
		p.ContentHash = "precomputed-hash"
		_, err := svc.Ingest(ctx, p)

		Expect(err).NotTo(HaveOccurred())
		Expect(stored.ContentHash).To(Equal("precomputed-hash"))
	})

	It("keeps the scraper-reported scrape time", func() {
		scrapedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		var stored *model.RawPost
		posts.createOrGetFn = func(_ context.Context, post *model.RawPost) (model.RawPost, bool, error) {
			stored = post
			return *post, true, nil
		}

		p := params
		p.ScrapedAt = scrapedAt
		_, err := svc.Ingest(ctx, p)

		Expect(err).NotTo(HaveOccurred())
		Expect(stored.ScrapedAt).To(Equal(scrapedAt))
	})

	It("succeeds even when the pipeline trigger cannot be enqueued", func() {
		producer.enqueueFn = func(_ context.Context, _ queue.PipelineRunMessage) error {
			return errors.New("stream unavailable")
		}

		result, err := svc.Ingest(ctx, params)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Duplicate).To(BeFalse())
	})

	It("fails when the post cannot be stored", func() {
		posts.createOrGetFn = func(_ context.Context, _ *model.RawPost) (model.RawPost, bool, error) {
			return model.RawPost{}, false, errors.New("connection reset")
		}

		_, err := svc.Ingest(ctx, params)
		Expect(err).To(HaveOccurred())
	})

	DescribeTable("validation",
		func(mutate func(*ingest.Params)) {
			p := params
			mutate(&p)

			_, err := svc.Ingest(ctx, p)
			Expect(errors.Is(err, ingest.ErrInvalidPost)).To(BeTrue())
		},
		Entry("missing platform", func(p *ingest.Params) { p.Platform = "" }),
		Entry("missing post id", func(p *ingest.Params) { p.PostID = "  " }),
		Entry("missing content", func(p *ingest.Params) { p.Content = "" }),
	)
})

var _ = Describe("ContentHash", func() {
	It("is stable for identical input", func() {
		Expect(ingest.ContentHash("reddit", "t3_a", "hello")).
			To(Equal(ingest.ContentHash("reddit", "t3_a", "hello")))
	})

	It("changes when any component changes", func() {
		base := ingest.ContentHash("reddit", "t3_a", "hello")
		Expect(ingest.ContentHash("twitter", "t3_a", "hello")).NotTo(Equal(base))
		Expect(ingest.ContentHash("reddit", "t3_b", "hello")).NotTo(Equal(base))
		Expect(ingest.ContentHash("reddit", "t3_a", "edited")).NotTo(Equal(base))
	})

	It("produces a 64-character hex digest", func() {
		Expect(ingest.ContentHash("reddit", "t3_a", "hello")).To(HaveLen(64))
	})
})
