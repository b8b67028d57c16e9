// Package logging builds the engine's zap loggers and hosts the
// submission audit logger that records resolved reference mappings.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"arrivalcard/internal/types"
)

// New constructs the engine logger. Debug mode switches to development
// encoding with debug level enabled.
func New(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// AuditLogger receives structured records of resolved lookup mappings,
// one per category per submission. Implementations are fire-and-forget:
// a failing audit sink must never affect the submission outcome.
type AuditLogger interface {
	ResolvedMapping(submissionID string, cat types.Category, input string, row types.ReferenceRow)
}

type zapAudit struct {
	log *zap.Logger
}

// NewAudit returns an AuditLogger that writes mappings to the given
// zap logger.
func NewAudit(log *zap.Logger) AuditLogger {
	return &zapAudit{log: log}
}

func (a *zapAudit) ResolvedMapping(submissionID string, cat types.Category, input string, row types.ReferenceRow) {
	a.log.Info("resolved reference mapping",
		zap.String("submission_id", submissionID),
		zap.String("category", string(cat)),
		zap.String("input", input),
		zap.String("key", row.Key),
		zap.String("value", row.Value),
		zap.String("code", row.Code),
	)
}

type nopAudit struct{}

// NopAudit returns an AuditLogger that discards all records.
func NopAudit() AuditLogger { return nopAudit{} }

func (nopAudit) ResolvedMapping(string, types.Category, string, types.ReferenceRow) {}
