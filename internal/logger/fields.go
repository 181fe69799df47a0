package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldProvider  = "ai_provider"
	FieldModel     = "ai_model"
	FieldFile      = "file"
	FieldCandidate = "candidate_id"
	FieldErrorKind = "error_kind"
)

// StringField is a key/value pair that is dropped when either side is blank.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts pairs into zap fields, trimming both sides and
// skipping blank entries.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}
	return result
}

// WithFields attaches fields to logger. A nil logger becomes a no-op one.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// ServiceFields names the text generation backend.
func ServiceFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

func WithServiceFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, ServiceFields(provider, model)...)
}

// DocumentFields describes an uploaded document and, once known, its candidate
// and failure kind.
func DocumentFields(fileName, candidateID, errorKind string) []zap.Field {
	return StringFields(
		StringField{Key: FieldFile, Value: fileName},
		StringField{Key: FieldCandidate, Value: candidateID},
		StringField{Key: FieldErrorKind, Value: errorKind},
	)
}
