package logger

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

var (
	mu  sync.RWMutex
	log = zap.NewNop()
)

// New builds a JSON production logger or a colored development logger.
func New(env string) (*zap.Logger, error) {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return config.Build()
}

// Initialize installs the global logger for env and exits if it cannot be
// built.
func Initialize(env string) *zap.Logger {
	l, err := New(env)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	Set(l)
	return l
}

func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
}

// L returns the global logger. It is a no-op logger until Initialize or Set
// runs, which keeps tests quiet.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// For returns the global logger annotated with ctx's request id.
func For(ctx context.Context) *zap.Logger {
	return L().With(zap.String("request_id", requestID(ctx)))
}

func requestID(ctx context.Context) string {
	if ginCtx, ok := ctx.(*gin.Context); ok {
		if id := ginCtx.GetString(RequestIDKey); id != "" {
			return id
		}
	}
	return "unknown"
}
