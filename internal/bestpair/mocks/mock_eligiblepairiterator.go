// Package mocks contains a hand-written mockgen-style mock of
// bestpair.EligiblePairIterator, used to drive the best-token-pair
// command against a scripted set of candidate pairs instead of a real
// order book's BFS-derived one.
package mocks

import (
	reflect "reflect"

	bestpair "github.com/dexsolver/dexsolver/internal/bestpair"
	gomock "github.com/golang/mock/gomock"
)

// MockEligiblePairIterator is a mock of the EligiblePairIterator interface.
type MockEligiblePairIterator struct {
	ctrl     *gomock.Controller
	recorder *MockEligiblePairIteratorMockRecorder
}

// MockEligiblePairIteratorMockRecorder is the mock recorder for MockEligiblePairIterator.
type MockEligiblePairIteratorMockRecorder struct {
	mock *MockEligiblePairIterator
}

// NewMockEligiblePairIterator creates a new mock instance.
func NewMockEligiblePairIterator(ctrl *gomock.Controller) *MockEligiblePairIterator {
	mock := &MockEligiblePairIterator{ctrl: ctrl}
	mock.recorder = &MockEligiblePairIteratorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockEligiblePairIterator) EXPECT() *MockEligiblePairIteratorMockRecorder {
	return m.recorder
}

// Pairs mocks base method.
func (m *MockEligiblePairIterator) Pairs() []bestpair.TokenPair {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Pairs")
	ret0, _ := ret[0].([]bestpair.TokenPair)
	return ret0
}

// Pairs indicates an expected call of Pairs.
func (mr *MockEligiblePairIteratorMockRecorder) Pairs() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Pairs", reflect.TypeOf((*MockEligiblePairIterator)(nil).Pairs))
}
