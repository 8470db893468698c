// Package logger builds the zap logger used by the service and the CLI.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// FieldUserID is the structured log field key for the authenticated user.
	FieldUserID = "user_id"
	// FieldPetID is the structured log field key for a pet.
	FieldPetID = "pet_id"
	// FieldMatchID is the structured log field key for a match row.
	FieldMatchID = "match_id"
)

// Service is attached to every entry so service logs can be told apart
// from other containers writing to the same sink.
const Service = "petmatch"

// Options select the encoding, level and destination of the logger.
type Options struct {
	JSON  bool
	Debug bool
	// Output is "stdout", "stderr" or a file path. Empty means stdout.
	Output  string
	Version string
}

// New builds the service logger. Debug mode also records stack traces on
// errors.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	encoding := "console"
	encodeLevel := zapcore.CapitalColorLevelEncoder
	if opts.JSON {
		encoding = "json"
		encodeLevel = zapcore.LowercaseLevelEncoder
	}

	output := strings.TrimSpace(opts.Output)
	if output == "" {
		output = "stdout"
	}
	if output != "stdout" && output != "stderr" {
		// Colour codes only belong on a terminal.
		encodeLevel = zapcore.LowercaseLevelEncoder
	}

	fields := map[string]interface{}{"service": Service}
	if opts.Version != "" {
		fields["version"] = opts.Version
	}

	cfg := zap.Config{
		Encoding:          encoding,
		Level:             zap.NewAtomicLevelAt(level),
		DisableStacktrace: !opts.Debug,
		OutputPaths:       []string{output},
		ErrorOutputPaths:  []string{"stderr"},
		InitialFields:     fields,
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "msg",
			LevelKey:       "level",
			TimeKey:        "time",
			CallerKey:      "caller",
			StacktraceKey:  "stacktrace",
			EncodeLevel:    encodeLevel,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger for %s: %w", output, err)
	}
	return logger, nil
}

// IDFields converts key/value pairs into zap string fields, skipping
// entries whose value is blank.
func IDFields(kv ...string) []zap.Field {
	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key := strings.TrimSpace(kv[i])
		value := strings.TrimSpace(kv[i+1])
		if key == "" || value == "" {
			continue
		}
		fields = append(fields, zap.String(key, value))
	}
	return fields
}

// With attaches fields to logger, defaulting to a no-op logger when nil.
func With(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
