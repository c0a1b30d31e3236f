package common

const (
	RedisKeyVerificationBatchLock = "verifier:batch:lock"

	DataSourceUnknown = "unknown"
)
