package ecm

import "go.uber.org/zap"

// log is the package-wide progress logger. It defaults to a no-op core so
// that library callers pay nothing unless they opt in with SetLogger.
var log = zap.NewNop().Sugar()

// SetLogger installs the logger used for Driver and ECM-Engine round/stage
// progress. Passing nil restores the no-op logger.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		log = zap.NewNop().Sugar()
		return
	}
	log = l
}
