package logger

import (
	"context"
	"net"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	base = zap.NewNop()
	mu   sync.RWMutex
)

// RequestIDKey is used to store a request identifier on the context.
type RequestIDKey struct{}

// New builds the process logger and installs it as the base for WithContext.
func New(env string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if env != "production" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lg, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	SetBase(lg)
	return lg, nil
}

// SetBase replaces the logger used by WithContext.
func SetBase(lg *zap.Logger) {
	if lg == nil {
		lg = zap.NewNop()
	}
	mu.Lock()
	base = lg
	mu.Unlock()
}

// WithContext returns the base logger annotated with the request id carried by ctx.
func WithContext(ctx context.Context) *zap.Logger {
	mu.RLock()
	lg := base
	mu.RUnlock()

	if ctx == nil {
		return lg
	}
	if id := RequestIDFromContext(ctx); id != "" {
		return lg.With(zap.String("request_id", id))
	}
	return lg
}

// ContextWithRequestID stores id on ctx for WithContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey{}, id)
}

// RequestIDFromContext returns the request id stored on ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if val, ok := ctx.Value(RequestIDKey{}).(string); ok {
		return val
	}
	return ""
}

// MaskEmail keeps the first two characters of the local part and the domain.
// Example: maria.lopez@correo.mx -> ma***@correo.mx
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}

	local, domain, ok := strings.Cut(email, "@")
	if !ok || domain == "" {
		return "***"
	}
	if len(local) > 2 {
		local = local[:2]
	}
	return local + "***@" + domain
}

// MaskPhone keeps the last four digits.
// Example: 5512345678 -> ******5678
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}

// MaskIP hides the host part: the last two octets for IPv4, everything after the
// first four groups for IPv6.
func MaskIP(ip string) string {
	if ip == "" {
		return ""
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "***"
	}

	if v4 := parsed.To4(); v4 != nil {
		parts := strings.Split(v4.String(), ".")
		return parts[0] + "." + parts[1] + ".*.*"
	}

	parts := strings.Split(ip, ":")
	if len(parts) >= 4 {
		return strings.Join(parts[:4], ":") + ":*:*:*:*"
	}
	return "***"
}
