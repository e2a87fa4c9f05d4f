package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// DatasetKey returns the cache key for a validated dataset
func (r *CacheKeyStruct) DatasetKey(datasetID string) string {
	return fmt.Sprintf("dataset:%s", datasetID)
}

var CacheKey = NewCacheKeyStruct()
