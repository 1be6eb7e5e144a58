// Package iocache persists coverage run history in SQL databases.
package iocache

import (
	"sync"

	"github.com/huangsam/covpost/internal/contract"
)

// HistoryStoreManager holds the history store for the lifetime of the process.
type HistoryStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	history      contract.HistoryStore
}

var _ contract.StoreManager = &HistoryStoreManager{} // Compile-time check

// GetHistoryStore returns the history store, or nil when history tracking is disabled.
func (mgr *HistoryStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
