package ledger_test

import (
	"context"

	"gapradar.app/engine/internal/model"
	"gapradar.app/engine/internal/store"
)

type mockEvidenceStore struct {
	createIfAbsentFn     func(ctx context.Context, ev *model.Evidence) (bool, error)
	countDistinctPostsFn func(ctx context.Context, opportunityID int64) (int, error)
}

func (m *mockEvidenceStore) CreateIfAbsent(ctx context.Context, ev *model.Evidence) (bool, error) {
	if m.createIfAbsentFn != nil {
		return m.createIfAbsentFn(ctx, ev)
	}
	return true, nil
}

func (m *mockEvidenceStore) CountDistinctPosts(ctx context.Context, opportunityID int64) (int, error) {
	if m.countDistinctPostsFn != nil {
		return m.countDistinctPostsFn(ctx, opportunityID)
	}
	return 0, nil
}

func (m *mockEvidenceStore) ListByOpportunity(ctx context.Context, opportunityID int64) ([]model.Evidence, error) {
	return nil, nil
}

func (m *mockEvidenceStore) ListRecords(ctx context.Context, opportunityID int64) ([]model.EvidenceRecord, error) {
	return nil, nil
}

type mockOpportunityStore struct {
	setEvidenceCountFn func(ctx context.Context, id int64, count int) error
}

func (m *mockOpportunityStore) Create(ctx context.Context, opp *model.Opportunity) error {
	return nil
}

func (m *mockOpportunityStore) GetByID(ctx context.Context, id int64) (*model.Opportunity, error) {
	return nil, store.ErrNotFound
}

func (m *mockOpportunityStore) ListOpen(ctx context.Context) ([]model.Opportunity, error) {
	return nil, nil
}

func (m *mockOpportunityStore) List(ctx context.Context, filter store.ListOpportunitiesFilter) ([]model.Opportunity, error) {
	return nil, nil
}

func (m *mockOpportunityStore) UpdateSnapshot(ctx context.Context, id int64, keywords []string, summary string) error {
	return nil
}

func (m *mockOpportunityStore) SetScores(ctx context.Context, id int64, scores model.Scores) error {
	return nil
}

func (m *mockOpportunityStore) SetEvidenceCount(ctx context.Context, id int64, count int) error {
	if m.setEvidenceCountFn != nil {
		return m.setEvidenceCountFn(ctx, id, count)
	}
	return nil
}

func (m *mockOpportunityStore) Archive(ctx context.Context, id int64) error {
	return nil
}
