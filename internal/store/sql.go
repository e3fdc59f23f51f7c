package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chatinsight/core/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQL is a Store on top of gorm. It serves both the mysql and sqlite drivers.
type SQL struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db, now: time.Now}
}

// DB exposes the gorm handle for migrations and tooling.
func (s *SQL) DB() *gorm.DB { return s.db }

func (s *SQL) InsertMessage(ctx context.Context, msg *models.ChatMessage) error {
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return translateSQLError(err)
	}
	return nil
}

func (s *SQL) ListMessages(ctx context.Context, conversationID string, skip, limit int) ([]models.ChatMessage, error) {
	q := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC").Order("id ASC")
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	msgs := make([]models.ChatMessage, 0)
	if err := q.Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *SQL) CountMessages(ctx context.Context, conversationID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("conversation_id = ?", conversationID).
		Count(&n).Error
	return n, err
}

func (s *SQL) ListUserConversations(ctx context.Context, userID string, page, limit int) ([]models.ConversationPreview, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.ChatMessage{}).
		Where("user_id = ?", userID).
		Distinct("conversation_id").
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []string
	if err := db.Model(&models.ChatMessage{}).
		Where("user_id = ?", userID).
		Distinct().
		Order("conversation_id DESC").
		Offset(offsetFor(page, limit)).
		Limit(limit).
		Pluck("conversation_id", &ids).Error; err != nil {
		return nil, 0, err
	}

	out := make([]models.ConversationPreview, 0, len(ids))
	for _, id := range ids {
		var last models.ChatMessage
		if err := db.Where("conversation_id = ?", id).
			Order("timestamp DESC").Order("id DESC").
			First(&last).Error; err != nil {
			return nil, 0, err
		}
		count, err := s.CountMessages(ctx, id)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, models.ConversationPreview{ConversationID: id, LastMessage: &last, MessageCount: count})
	}
	return out, total, nil
}

func (s *SQL) DeleteConversation(ctx context.Context, conversationID string) (bool, error) {
	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("conversation_id = ?", conversationID).Delete(&models.ChatMessage{})
		if res.Error != nil {
			return res.Error
		}
		removed += res.RowsAffected

		res = tx.Where("conversation_id = ?", conversationID).Delete(&models.ConversationSummary{})
		if res.Error != nil {
			return res.Error
		}
		removed += res.RowsAffected
		return nil
	})
	return removed > 0, err
}

func (s *SQL) GetSummary(ctx context.Context, conversationID string) (*models.ConversationSummary, error) {
	var summary models.ConversationSummary
	err := s.db.WithContext(ctx).Where("conversation_id = ?", conversationID).First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *SQL) UpsertSummary(ctx context.Context, summary *models.ConversationSummary) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := *summary
		row.ID = 0
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "conversation_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"summary", "action_items", "decisions", "questions",
				"sentiment", "outcome", "keywords", "updated_at",
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}

		var stored models.ConversationSummary
		if err := tx.Where("conversation_id = ?", summary.ConversationID).First(&stored).Error; err != nil {
			return err
		}
		*summary = stored
		return nil
	})
}

func (s *SQL) CreateUser(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return translateSQLError(err)
	}
	return nil
}

func (s *SQL) GetUserByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	if apiKey == "" {
		return nil, ErrNotFound
	}
	return s.firstUser(ctx, "api_key = ?", apiKey)
}

func (s *SQL) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.firstUser(ctx, "id = ?", id)
}

func (s *SQL) firstUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *SQL) TouchLastLogin(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", s.now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQL) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQL) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translateSQLError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry") {
		return ErrDuplicate
	}
	return err
}
