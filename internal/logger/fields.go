package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldCompany   = "company"
	FieldJobTitle  = "job_title"
	FieldCampaign  = "campaign_id"
	FieldRecipient = "recipient"
	FieldEmailType = "email_type"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CampaignFields describes the job a campaign targets. Empty values are dropped.
func CampaignFields(company, jobTitle string) []zap.Field {
	return StringFields(
		StringField{Key: FieldCompany, Value: company},
		StringField{Key: FieldJobTitle, Value: jobTitle},
	)
}

// WithCampaign attaches the campaign id and target job to logger.
func WithCampaign(logger *zap.Logger, id int64, company, jobTitle string) *zap.Logger {
	fields := CampaignFields(company, jobTitle)
	if id > 0 {
		fields = append([]zap.Field{zap.Int64(FieldCampaign, id)}, fields...)
	}
	return WithFields(logger, fields...)
}

// RecipientFields identifies a single delivery.
func RecipientFields(email, emailType string) []zap.Field {
	return StringFields(
		StringField{Key: FieldRecipient, Value: email},
		StringField{Key: FieldEmailType, Value: emailType},
	)
}
