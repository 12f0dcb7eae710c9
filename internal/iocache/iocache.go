// Package iocache is for caching expensive I/O and archiving predict runs.
package iocache

import (
	"fmt"
	"sync"

	"github.com/decaylab/decay/internal/contract"
	"github.com/decaylab/decay/schema"
)

// CacheStoreManager manages the activity cache and the run archive.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	activity     contract.CacheStore
	archive      contract.ArchiveStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetActivityStore returns the activity CacheStore.
func (mgr *CacheStoreManager) GetActivityStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.activity
}

// GetArchiveStore returns the run ArchiveStore.
func (mgr *CacheStoreManager) GetArchiveStore() contract.ArchiveStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.archive
}

// activityTable is the name of the table for history aggregate caching.
const activityTable = "decay_activity_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetArchiveDBFilePath returns the path to the SQLite DB file for archive storage.
func GetArchiveDBFilePath() string {
	return contract.GetArchiveDBFilePath()
}

// InitStores initializes the global manager with separate cache and archive
// stores. Either backend can be empty to leave that store disabled.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, archiveBackend schema.DatabaseBackend, archiveConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		var err error

		var activityStore contract.CacheStore
		if cacheBackend != "" {
			activityStore, err = NewCacheStore(activityTable, cacheBackend, cacheConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize activity caching: %w", err)
				return
			}
		}

		var archiveStore contract.ArchiveStore
		if archiveBackend != "" {
			archiveStore, err = NewArchiveStore(archiveBackend, archiveConnStr)
			if err != nil {
				if activityStore != nil {
					_ = activityStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize run archive: %w", err)
				return
			}
		}

		Manager.activity = activityStore
		Manager.archive = archiveStore
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.activity != nil {
			_ = Manager.activity.Close()
		}
		if Manager.archive != nil {
			_ = Manager.archive.Close()
		}
	})
}
