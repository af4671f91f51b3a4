package graph

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/decomp/ngsec/pkg/access"
)

// MockExecutor implements access.QueryExecutor for testing using testify/mock
type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) BeginTransaction(ctx context.Context, db string) (*access.Tx, error) {
	args := m.Called(db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*access.Tx), args.Error(1)
}

func (m *MockExecutor) CommitTransaction(ctx context.Context, tx *access.Tx) error {
	return m.Called(tx).Error(0)
}

func (m *MockExecutor) RollbackTransaction(ctx context.Context, tx *access.Tx) error {
	return m.Called(tx).Error(0)
}

func (m *MockExecutor) Select(ctx context.Context, db, query string, tx *access.Tx) (access.Bindings, error) {
	args := m.Called(db, query, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(access.Bindings), args.Error(1)
}

func (m *MockExecutor) Update(ctx context.Context, db, update string, tx *access.Tx) error {
	return m.Called(db, update, tx).Error(0)
}

func uris(name string, values ...string) access.Bindings {
	rows := make(access.Bindings, 0, len(values))
	for _, v := range values {
		rows = append(rows, access.Binding{name: {Type: "uri", Value: v}})
	}
	return rows
}
