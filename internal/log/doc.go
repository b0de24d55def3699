// Package log builds slog loggers that keep secrets out of log output.
//
// Classified URLs often embed the victim's email address, one-time codes
// or session tokens in the query string. SecureHandler masks those values
// along with URL credentials and the usual secret-bearing attributes
// (API keys, cookies, authorization headers):
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Warn("fetch failed", "url", "https://x.test/?email=a@b.test")
//	// url=https://x.test/?email=%2A%2A%2AREDACTED%2A%2A%2A
package log
