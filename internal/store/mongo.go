package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/chatinsight/core/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionMessages  = "chat_messages"
	collectionSummaries = "conversation_summaries"
	collectionUsers     = "users"
)

// Mongo is a Store backed by a MongoDB database.
type Mongo struct {
	client    *mongo.Client
	messages  *mongo.Collection
	summaries *mongo.Collection
	users     *mongo.Collection
	now       func() time.Time
}

func NewMongo(client *mongo.Client, database string) *Mongo {
	db := client.Database(database)
	return &Mongo{
		client:    client,
		messages:  db.Collection(collectionMessages),
		summaries: db.Collection(collectionSummaries),
		users:     db.Collection(collectionUsers),
		now:       time.Now,
	}
}

// EnsureIndexes creates the lookup indexes and the uniqueness constraints.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversation_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "timestamp", Value: 1}}},
		{
			Keys:    bson.D{{Key: "conversation_id", Value: 1}, {Key: "message_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("%s indexes: %w", collectionMessages, err)
	}

	_, err = m.summaries.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "conversation_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("%s indexes: %w", collectionSummaries, err)
	}

	_, err = m.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "api_key", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("%s indexes: %w", collectionUsers, err)
	}
	return nil
}

func (m *Mongo) InsertMessage(ctx context.Context, msg *models.ChatMessage) error {
	_, err := m.messages.InsertOne(ctx, msg)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (m *Mongo) ListMessages(ctx context.Context, conversationID string, skip, limit int) ([]models.ChatMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	if skip > 0 {
		opts.SetSkip(int64(skip))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := m.messages.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	msgs := make([]models.ChatMessage, 0)
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (m *Mongo) CountMessages(ctx context.Context, conversationID string) (int64, error) {
	return m.messages.CountDocuments(ctx, bson.M{"conversation_id": conversationID})
}

func (m *Mongo) ListUserConversations(ctx context.Context, userID string, page, limit int) ([]models.ConversationPreview, int64, error) {
	raw, err := m.messages.Distinct(ctx, "conversation_id", bson.M{"user_id": userID})
	if err != nil {
		return nil, 0, err
	}
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	total := int64(len(ids))

	ids = window(ids, offsetFor(page, limit), limit)
	out := make([]models.ConversationPreview, 0, len(ids))
	for _, id := range ids {
		var last models.ChatMessage
		err := m.messages.FindOne(ctx,
			bson.M{"conversation_id": id},
			options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}),
		).Decode(&last)
		if err != nil {
			return nil, 0, err
		}
		count, err := m.CountMessages(ctx, id)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, models.ConversationPreview{ConversationID: id, LastMessage: &last, MessageCount: count})
	}
	return out, total, nil
}

func (m *Mongo) DeleteConversation(ctx context.Context, conversationID string) (bool, error) {
	filter := bson.M{"conversation_id": conversationID}
	msgs, err := m.messages.DeleteMany(ctx, filter)
	if err != nil {
		return false, err
	}
	summaries, err := m.summaries.DeleteOne(ctx, filter)
	if err != nil {
		return msgs.DeletedCount > 0, err
	}
	return msgs.DeletedCount+summaries.DeletedCount > 0, nil
}

func (m *Mongo) GetSummary(ctx context.Context, conversationID string) (*models.ConversationSummary, error) {
	var summary models.ConversationSummary
	err := m.summaries.FindOne(ctx, bson.M{"conversation_id": conversationID}).Decode(&summary)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (m *Mongo) UpsertSummary(ctx context.Context, summary *models.ConversationSummary) error {
	update := bson.M{
		"$set": bson.M{
			"summary":      summary.Summary,
			"action_items": summary.ActionItems.Strings(),
			"decisions":    summary.Decisions.Strings(),
			"questions":    summary.Questions.Strings(),
			"sentiment":    summary.Sentiment,
			"outcome":      summary.Outcome,
			"keywords":     summary.Keywords.Strings(),
			"updated_at":   summary.UpdatedAt,
		},
		"$setOnInsert": bson.M{"created_at": summary.CreatedAt},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored models.ConversationSummary
	err := m.summaries.FindOneAndUpdate(ctx, bson.M{"conversation_id": summary.ConversationID}, update, opts).Decode(&stored)
	if err != nil {
		return err
	}
	// BSON dates hold milliseconds; hand back what GetSummary will return.
	*summary = stored
	return nil
}

func (m *Mongo) CreateUser(ctx context.Context, user *models.User) error {
	user.EnsureID()
	now := m.now()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	_, err := m.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (m *Mongo) GetUserByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	if apiKey == "" {
		return nil, ErrNotFound
	}
	return m.findUser(ctx, bson.M{"api_key": apiKey})
}

func (m *Mongo) GetUser(ctx context.Context, id string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"_id": id})
}

func (m *Mongo) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := m.users.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *Mongo) TouchLastLogin(ctx context.Context, id string) error {
	res, err := m.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_login": m.now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
