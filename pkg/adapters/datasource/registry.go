package datasource

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// DatasourceAdapterInfo describes a registered adapter.
type DatasourceAdapterInfo struct {
	Type        string `json:"type"`         // "mongodb"
	DisplayName string `json:"display_name"` // "MongoDB"
	Description string `json:"description"`
}

// ConnectionTesterFactory builds a ConnectionTester from a generic config map.
type ConnectionTesterFactory func(ctx context.Context, config map[string]any, logger *zap.Logger) (ConnectionTester, error)

// DocumentReaderFactory builds a DocumentReader from a generic config map.
type DocumentReaderFactory func(ctx context.Context, config map[string]any, logger *zap.Logger) (DocumentReader, error)

// DatasourceAdapterRegistration contains info + factories for creating adapters.
type DatasourceAdapterRegistration struct {
	Info                  DatasourceAdapterInfo
	Factory               ConnectionTesterFactory
	DocumentReaderFactory DocumentReaderFactory
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]DatasourceAdapterRegistration)
)

// Register is called by each adapter's init() function.
// Thread-safe for concurrent init() calls.
func Register(reg DatasourceAdapterRegistration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Type] = reg
}

// RegisteredAdapters returns info for all registered adapters, sorted by type.
func RegisteredAdapters() []DatasourceAdapterInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]DatasourceAdapterInfo, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result
}

// GetFactory returns the connection tester factory for a datasource type.
// Returns nil if type is not registered.
func GetFactory(dsType string) ConnectionTesterFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if reg, ok := registry[dsType]; ok {
		return reg.Factory
	}
	return nil
}

// GetDocumentReaderFactory returns the document reader factory for a datasource type.
// Returns nil if type is not registered or cannot read documents.
func GetDocumentReaderFactory(dsType string) DocumentReaderFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if reg, ok := registry[dsType]; ok {
		return reg.DocumentReaderFactory
	}
	return nil
}

// IsRegistered checks if an adapter type is available.
func IsRegistered(dsType string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[dsType]
	return ok
}
