package iocache

import (
	"github.com/huangsam/covpost/internal/contract"
	"github.com/huangsam/covpost/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetHistoryStore implements the StoreManager interface.
func (m *MockStoreManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginRun implements the HistoryStore interface.
func (m *MockHistoryStore) BeginRun(info schema.RunInfo, total []schema.TotalCoverageRow) (int64, error) {
	args := m.Called(info, total)
	return args.Get(0).(int64), args.Error(1)
}

// RecordFileCoverage implements the HistoryStore interface.
func (m *MockHistoryStore) RecordFileCoverage(runID int64, file schema.FileCoverage) error {
	args := m.Called(runID, file)
	return args.Error(0)
}

// EndRun implements the HistoryStore interface.
func (m *MockHistoryStore) EndRun(runID int64, changedFiles int) error {
	args := m.Called(runID, changedFiles)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllRuns implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllFileCoverage implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllFileCoverage() ([]schema.FileCoverageRecord, error) {
	args := m.Called()
	files, _ := args.Get(0).([]schema.FileCoverageRecord)
	return files, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
