package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vortexpump/wallet-middleware/pkg/wallet"
)

const serviceName = "ProvisionService"

// logService wraps Service with automatic logging of all method calls.
// Secret credentials never pass through responses, so nothing here needs
// redaction beyond keeping encrypted material out of the fields below.
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the provisioning Service.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) GetOrCreate(
	ctx context.Context,
	req *wallet.ProvisionRequest,
) (resp *wallet.ProvisionResponse, err error) {
	start := time.Now()

	ls.logger.Info("GetOrCreate started",
		zap.String("service", serviceName),
		zap.String("method", "GetOrCreate"),
		zap.String("user_id", req.UserID),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("GetOrCreate failed",
				zap.String("service", serviceName),
				zap.String("method", "GetOrCreate"),
				zap.String("user_id", req.UserID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("GetOrCreate completed",
				zap.String("service", serviceName),
				zap.String("method", "GetOrCreate"),
				zap.String("user_id", req.UserID),
				zap.String("public_address", resp.PublicAddress),
				zap.Bool("created", resp.Created),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.GetOrCreate(ctx, req)
}
