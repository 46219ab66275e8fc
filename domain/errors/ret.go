package errors

// The Application return code errors
const (
	RetLoadConfigError          = 1
	RetLoadCacheError           = 1
	RetCreateConfigWatcherError = 1
	RetCreateWebServerError     = 1
	RetCreateHTTPClientError    = 1
	RetLogOnError               = 1
)
