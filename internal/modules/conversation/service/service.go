package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"anoa.com/jobboard/internal/entity"
	"anoa.com/jobboard/internal/modules/conversation/dto"
	"anoa.com/jobboard/internal/modules/conversation/repository"
	userRepo "anoa.com/jobboard/internal/modules/user/repository"
	"anoa.com/jobboard/pkg/apperror"
	"anoa.com/jobboard/pkg/database"
	"anoa.com/jobboard/pkg/ratelimiter"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxMessageLength = 2000

// UserChannel is the pub/sub channel carrying every message addressed to a
// participant.
func UserChannel(userID uint) string {
	return fmt.Sprintf("user_messages:%d", userID)
}

func conversationChannel(conversationID uint) string {
	return fmt.Sprintf("conversation:%d", conversationID)
}

type ConversationService interface {
	// StartConversation returns the pair's conversation, creating it when
	// needed. created reports whether this call created it.
	StartConversation(ctx context.Context, actor *entity.User, recipientID uint) (view *repository.ConversationView, created bool, err error)
	ListConversations(ctx context.Context, actor *entity.User) ([]*repository.ConversationView, error)
	ListMessages(ctx context.Context, actor *entity.User, conversationID uint) ([]*entity.Message, error)
	PostMessage(ctx context.Context, actor *entity.User, conversationID uint, body string) (*entity.Message, error)
}

type conversationService struct {
	repo      repository.ConversationRepository
	users     userRepo.UserRepository
	rdb       *redis.Client
	limiter   *ratelimiter.Limiter
	rateLimit time.Duration
	log       logrus.FieldLogger
}

func NewConversationService(
	repo repository.ConversationRepository,
	users userRepo.UserRepository,
	rdb *redis.Client,
	limiter *ratelimiter.Limiter,
	rateLimit time.Duration,
	log logrus.FieldLogger,
) ConversationService {
	return &conversationService{
		repo:      repo,
		users:     users,
		rdb:       rdb,
		limiter:   limiter,
		rateLimit: rateLimit,
		log:       log,
	}
}

func (s *conversationService) StartConversation(ctx context.Context, actor *entity.User, recipientID uint) (*repository.ConversationView, bool, error) {
	entry := s.log.WithFields(logrus.Fields{"actor_id": actor.ID, "recipient_id": recipientID})

	if recipientID == actor.ID {
		entry.Warn("conversation with self rejected")
		return nil, false, apperror.Validation("You cannot start a conversation with yourself.",
			map[string]string{"recipient_id": "You cannot start a conversation with yourself."})
	}

	recipient, err := s.users.FindByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry.Warn("conversation with missing recipient")
			return nil, false, apperror.Validation("the given data was invalid",
				map[string]string{"recipient_id": "the selected recipient is invalid"})
		}
		entry.WithError(err).Error("failed to load recipient")
		return nil, false, apperror.Storage("could not start conversation due to a server error", err)
	}

	created := false
	conv, err := s.repo.FindByPair(ctx, actor.ID, recipient.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		conv, err = s.repo.CreateForPair(ctx, actor.ID, recipient.ID)
		switch {
		case err == nil:
			created = true
		case database.IsUniqueViolation(err):
			// lost the race against the other participant
			conv, err = s.repo.FindByPair(ctx, actor.ID, recipient.ID)
		}
	}
	if err != nil {
		entry.WithError(err).Error("failed to start conversation")
		return nil, false, apperror.Storage("could not start conversation due to a server error", err)
	}

	if created {
		entry.WithField("conversation_id", conv.ID).Info("conversation started")
	}
	return &repository.ConversationView{Conversation: conv, Others: []*entity.User{recipient}}, created, nil
}

func (s *conversationService) ListConversations(ctx context.Context, actor *entity.User) ([]*repository.ConversationView, error) {
	views, err := s.repo.ListForUser(ctx, actor.ID)
	if err != nil {
		s.log.WithField("actor_id", actor.ID).WithError(err).Error("failed to list conversations")
		return nil, apperror.Storage("failed to load conversations", err)
	}
	return views, nil
}

func (s *conversationService) participant(ctx context.Context, entry logrus.FieldLogger, actor *entity.User, conversationID uint) error {
	_, err := s.repo.FindForParticipant(ctx, conversationID, actor.ID)
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		entry.Warn("conversation not visible to actor")
		return apperror.NotFound("conversation not found")
	}
	entry.WithError(err).Error("failed to load conversation")
	return apperror.Storage("failed to load conversation", err)
}

func (s *conversationService) ListMessages(ctx context.Context, actor *entity.User, conversationID uint) ([]*entity.Message, error) {
	entry := s.log.WithFields(logrus.Fields{"actor_id": actor.ID, "conversation_id": conversationID})
	if err := s.participant(ctx, entry, actor, conversationID); err != nil {
		return nil, err
	}

	messages, err := s.repo.Messages(ctx, conversationID)
	if err != nil {
		entry.WithError(err).Error("failed to list messages")
		return nil, apperror.Storage("failed to load messages", err)
	}
	return messages, nil
}

func (s *conversationService) PostMessage(ctx context.Context, actor *entity.User, conversationID uint, body string) (*entity.Message, error) {
	entry := s.log.WithFields(logrus.Fields{"actor_id": actor.ID, "conversation_id": conversationID})
	if err := s.participant(ctx, entry, actor, conversationID); err != nil {
		return nil, err
	}

	// Stored verbatim; clients render bodies as plain text.
	body = strings.TrimSpace(body)
	switch {
	case body == "":
		return nil, apperror.Validation("the given data was invalid", map[string]string{"body": "body is required"})
	case utf8.RuneCountInString(body) > maxMessageLength:
		return nil, apperror.Validation("the given data was invalid",
			map[string]string{"body": fmt.Sprintf("body may not be greater than %d characters", maxMessageLength)})
	}

	if err := s.limiter.Check(ctx, actor.ID, "send_message", s.rateLimit); err != nil {
		entry.WithError(err).Warn("message rate limited")
		return nil, err
	}

	msg := &entity.Message{ConversationID: conversationID, UserID: actor.ID, Body: body}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		entry.WithError(err).Error("failed to post message")
		return nil, apperror.Storage("could not send message due to a server error", err)
	}
	msg.User = actor

	s.publish(ctx, entry, msg)
	return msg, nil
}

// publish fans the committed message out to the conversation channel and to
// each participant's channel. Failures only affect live delivery.
func (s *conversationService) publish(ctx context.Context, entry logrus.FieldLogger, msg *entity.Message) {
	if s.rdb == nil {
		return
	}

	payload, err := json.Marshal(dto.NewMessageResponse(msg))
	if err != nil {
		entry.WithError(err).Warn("failed to encode message for broadcast")
		return
	}

	channels := []string{conversationChannel(msg.ConversationID)}
	ids, err := s.repo.ParticipantIDs(ctx, msg.ConversationID)
	if err != nil {
		entry.WithError(err).Warn("failed to load participants for broadcast")
	}
	for _, id := range ids {
		channels = append(channels, UserChannel(id))
	}

	for _, ch := range channels {
		if err := s.rdb.Publish(ctx, ch, payload).Err(); err != nil {
			entry.WithError(err).WithField("channel", ch).Warn("failed to broadcast message")
		}
	}
}
