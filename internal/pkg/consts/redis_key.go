package consts

const (
	CacheTierHot  = "hot"
	CacheTierWarm = "warm"
	CacheTierCold = "cold"
)

const (
	CacheKeyPrefix     = "cache:"
	AnonymousUserToken = "anonymous"
)

const (
	FeedTypeTimeline = "timeline"
	FeedTypeProfile  = "profile"
)
