package models

type BuildID = string

type CacheEntry struct {
	BuildID BuildID `json:"buildid"`
}

// CacheData is the content of the cache file
type CacheData struct {
	Apps map[AppID]CacheEntry `json:"apps"`
}

func NewCacheData() *CacheData {
	return &CacheData{Apps: make(map[AppID]CacheEntry)}
}
