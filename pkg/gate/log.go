package gate

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const serviceName = "ActionGate"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the gate Service.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) Handle(ctx context.Context, req *ActionRequest) (outcome *Outcome, err error) {
	start := time.Now()

	ls.logger.Info("Handle started",
		zap.String("service", serviceName),
		zap.String("method", "Handle"),
		zap.String("user_id", req.UserID),
		zap.String("action", req.Action),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("Handle failed",
				zap.String("service", serviceName),
				zap.String("method", "Handle"),
				zap.String("user_id", req.UserID),
				zap.String("action", req.Action),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Handle completed",
				zap.String("service", serviceName),
				zap.String("method", "Handle"),
				zap.String("user_id", req.UserID),
				zap.String("action", req.Action),
				zap.String("outcome", string(outcome.Kind)),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Handle(ctx, req)
}
