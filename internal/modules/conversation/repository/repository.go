package repository

import (
	"context"

	"anoa.com/jobboard/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationView is a conversation as seen by one participant.
type ConversationView struct {
	Conversation  *entity.Conversation
	Others        []*entity.User
	LatestMessage *entity.Message
}

type ConversationRepository interface {
	FindByPair(ctx context.Context, a, b uint) (*entity.Conversation, error)
	// CreateForPair inserts the conversation and both participant rows in
	// one transaction. A concurrent creation for the same pair fails with a
	// unique violation on pair_key.
	CreateForPair(ctx context.Context, a, b uint) (*entity.Conversation, error)
	// FindForParticipant returns gorm.ErrRecordNotFound unless userID
	// participates in the conversation.
	FindForParticipant(ctx context.Context, conversationID, userID uint) (*entity.Conversation, error)
	ParticipantIDs(ctx context.Context, conversationID uint) ([]uint, error)
	ListForUser(ctx context.Context, userID uint) ([]*ConversationView, error)

	Messages(ctx context.Context, conversationID uint) ([]*entity.Message, error)
	CreateMessage(ctx context.Context, msg *entity.Message) error
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) FindByPair(ctx context.Context, a, b uint) (*entity.Conversation, error) {
	var conv entity.Conversation
	if err := r.db.WithContext(ctx).Where("pair_key = ?", entity.PairKey(a, b)).First(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) CreateForPair(ctx context.Context, a, b uint) (*entity.Conversation, error) {
	conv := &entity.Conversation{PairKey: entity.PairKey(a, b)}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		members := []entity.ConversationUser{
			{ConversationID: conv.ID, UserID: a},
			{ConversationID: conv.ID, UserID: b},
		}
		return tx.Omit(clause.Associations).Create(&members).Error
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *conversationRepository) FindForParticipant(ctx context.Context, conversationID, userID uint) (*entity.Conversation, error) {
	var conv entity.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN conversation_user ON conversation_user.conversation_id = conversations.id").
		Where("conversations.id = ? AND conversation_user.user_id = ?", conversationID, userID).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) ParticipantIDs(ctx context.Context, conversationID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&entity.ConversationUser{}).
		Where("conversation_id = ?", conversationID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID uint) ([]*ConversationView, error) {
	db := r.db.WithContext(ctx)

	var convs []*entity.Conversation
	err := db.
		Joins("JOIN conversation_user ON conversation_user.conversation_id = conversations.id").
		Where("conversation_user.user_id = ?", userID).
		Order("conversations.updated_at DESC").Order("conversations.id DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}

	views := make([]*ConversationView, 0, len(convs))
	if len(convs) == 0 {
		return views, nil
	}

	ids := make([]uint, len(convs))
	byID := make(map[uint]*ConversationView, len(convs))
	for i, c := range convs {
		ids[i] = c.ID
		v := &ConversationView{Conversation: c, Others: []*entity.User{}}
		byID[c.ID] = v
		views = append(views, v)
	}

	var members []*entity.ConversationUser
	err = db.Preload("User").
		Where("conversation_id IN ? AND user_id <> ?", ids, userID).
		Order("user_id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.User != nil {
			byID[m.ConversationID].Others = append(byID[m.ConversationID].Others, m.User)
		}
	}

	latest := db.Model(&entity.Message{}).
		Select("MAX(id)").
		Where("conversation_id IN ?", ids).
		Group("conversation_id")

	var messages []*entity.Message
	if err := db.Where("id IN (?)", latest).Find(&messages).Error; err != nil {
		return nil, err
	}
	for _, m := range messages {
		byID[m.ConversationID].LatestMessage = m
	}

	return views, nil
}

func (r *conversationRepository) Messages(ctx context.Context, conversationID uint) ([]*entity.Message, error) {
	var messages []*entity.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// CreateMessage also bumps the conversation's updated_at so conversation
// lists sort by activity.
func (r *conversationRepository) CreateMessage(ctx context.Context, msg *entity.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&entity.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("updated_at", msg.CreatedAt).Error
	})
}
