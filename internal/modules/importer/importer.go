// Package importer loads chat transcripts from CSV files.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chatinsight/core/internal/models"
	"github.com/chatinsight/core/internal/store"
)

var (
	ErrInvalidCSV   = errors.New("invalid csv")
	ErrFileNotFound = errors.New("csv file not found")
)

var requiredColumns = []string{
	"conversation_id",
	"message_id",
	"message_content",
	"user_id",
	"user_type",
	"timestamp",
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// Stats summarises one import.
type Stats struct {
	TotalRows         int      `json:"total_rows"`
	Processed         int      `json:"processed"`
	Successful        int      `json:"successful"`
	Failed            int      `json:"failed"`
	Conversations     []string `json:"conversations"`
	ConversationCount int      `json:"conversation_count"`
}

// Service inserts CSV rows as chat messages.
type Service struct {
	messages store.MessageStore
	log      *zap.Logger
	now      func() time.Time
}

func NewService(messages store.MessageStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{messages: messages, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// ImportFile imports the CSV file at path.
func (s *Service) ImportFile(ctx context.Context, path string) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	defer f.Close()
	return s.Import(ctx, f)
}

// Import reads a CSV with a header row. Rows with a bad timestamp get the
// current time and rows with an unknown user type become customer messages;
// rows that cannot be stored are counted as failed.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Stats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: file is empty", ErrInvalidCSV)
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidCSV, err.Error())
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCSV, err.Error())
	}

	stats := &Stats{TotalRows: len(records), Conversations: []string{}}
	seen := make(map[string]struct{})
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stats.Processed++

		msg := s.rowToMessage(i, rec, index)
		if err := msg.Validate(); err != nil {
			s.log.Warn("skipping csv row", zap.Int("row", i), zap.Error(err))
			stats.Failed++
			continue
		}
		if err := s.messages.InsertMessage(ctx, msg); err != nil {
			s.log.Error("storing csv row failed", zap.Int("row", i), zap.Error(err))
			stats.Failed++
			continue
		}

		stats.Successful++
		if _, ok := seen[msg.ConversationID]; !ok {
			seen[msg.ConversationID] = struct{}{}
			stats.Conversations = append(stats.Conversations, msg.ConversationID)
		}
	}
	stats.ConversationCount = len(stats.Conversations)

	s.log.Info("csv import completed",
		zap.Int("successful", stats.Successful),
		zap.Int("failed", stats.Failed),
		zap.Int("conversations", stats.ConversationCount))
	return stats, nil
}

func (s *Service) rowToMessage(row int, rec []string, index map[string]int) *models.ChatMessage {
	get := func(col string) string {
		i := index[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	ts, ok := parseTimestamp(get("timestamp"))
	if !ok {
		s.log.Warn("invalid timestamp in csv row, using current time", zap.Int("row", row))
		ts = s.now()
	}
	userType, ok := models.ParseUserType(get("user_type"))
	if !ok {
		s.log.Warn("invalid user_type in csv row, defaulting to customer",
			zap.Int("row", row), zap.String("user_type", get("user_type")))
		userType = models.UserTypeCustomer
	}

	messageID := get("message_id")
	if messageID == "" {
		messageID = uuid.NewString()
	}

	return &models.ChatMessage{
		ConversationID: get("conversation_id"),
		MessageID:      messageID,
		MessageContent: get("message_content"),
		UserID:         get("user_id"),
		UserType:       userType,
		Timestamp:      ts,
	}
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: required column '%s' not found", ErrInvalidCSV, col)
		}
	}
	return index, nil
}

func parseTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
