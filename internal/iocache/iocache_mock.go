package iocache

import (
	"time"

	"github.com/decaylab/decay/internal/contract"
	"github.com/decaylab/decay/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetActivityStore implements the CacheManager interface.
func (m *MockCacheManager) GetActivityStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetArchiveStore implements the CacheManager interface.
func (m *MockCacheManager) GetArchiveStore() contract.ArchiveStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.ArchiveStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	return args.Get(0).([]byte), args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Clear implements the CacheStore interface.
func (m *MockCacheStore) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockArchiveStore is a mock implementation of ArchiveStore for testing.
type MockArchiveStore struct {
	mock.Mock
}

var _ contract.ArchiveStore = &MockArchiveStore{} // Compile-time check

// BeginRun implements the ArchiveStore interface.
func (m *MockArchiveStore) BeginRun(startTime time.Time, repoPath, branch, modelPath string) (int64, error) {
	args := m.Called(startTime, repoPath, branch, modelPath)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the ArchiveStore interface.
func (m *MockArchiveStore) EndRun(runID int64, endTime time.Time, totalFiles int) error {
	args := m.Called(runID, endTime, totalFiles)
	return args.Error(0)
}

// RecordPrediction implements the ArchiveStore interface.
func (m *MockArchiveStore) RecordPrediction(runID int64, p schema.RiskPrediction) error {
	args := m.Called(runID, p)
	return args.Error(0)
}

// ListRuns implements the ArchiveStore interface.
func (m *MockArchiveStore) ListRuns(limit int) ([]schema.RunRecord, error) {
	args := m.Called(limit)
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// ListPredictions implements the ArchiveStore interface.
func (m *MockArchiveStore) ListPredictions(runID int64) ([]schema.RiskPrediction, error) {
	args := m.Called(runID)
	predictions, _ := args.Get(0).([]schema.RiskPrediction)
	return predictions, args.Error(1)
}

// GetStatus implements the ArchiveStore interface.
func (m *MockArchiveStore) GetStatus() (schema.ArchiveStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.ArchiveStatus), args.Error(1)
}

// Clear implements the ArchiveStore interface.
func (m *MockArchiveStore) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// Close implements the ArchiveStore interface.
func (m *MockArchiveStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
