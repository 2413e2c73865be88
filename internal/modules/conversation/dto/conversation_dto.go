package dto

import (
	"time"

	"anoa.com/jobboard/internal/entity"
	"anoa.com/jobboard/internal/modules/conversation/repository"
	commonDto "anoa.com/jobboard/pkg/dto"
)

type StartConversationRequest struct {
	RecipientID uint `json:"recipient_id" binding:"required"`
}

// PostMessageRequest is validated by the service after the body is trimmed
// and stripped of markup.
type PostMessageRequest struct {
	Body string `json:"body"`
}

type Sender struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	ProfilePhoto *string `json:"profile_photo"`
}

type MessageResponse struct {
	ID             uint       `json:"id"`
	ConversationID uint       `json:"conversation_id"`
	UserID         uint       `json:"user_id"`
	Body           string     `json:"body"`
	ReadAt         *time.Time `json:"read_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	User           *Sender    `json:"user,omitempty"`
}

func NewMessageResponse(m *entity.Message) *MessageResponse {
	res := &MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		UserID:         m.UserID,
		Body:           m.Body,
		ReadAt:         m.ReadAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.User != nil {
		res.User = &Sender{ID: m.User.ID, Name: m.User.Name, ProfilePhoto: m.User.ProfilePhoto}
	}
	return res
}

func NewMessageList(items []*entity.Message) []*MessageResponse {
	out := make([]*MessageResponse, 0, len(items))
	for _, m := range items {
		out = append(out, NewMessageResponse(m))
	}
	return out
}

// ConversationResponse lists only the participants other than the caller.
type ConversationResponse struct {
	ID            uint                     `json:"id"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
	Users         []*commonDto.UserSummary `json:"users"`
	LatestMessage *MessageResponse         `json:"latest_message"`
}

func NewConversationResponse(v *repository.ConversationView) *ConversationResponse {
	res := &ConversationResponse{
		ID:        v.Conversation.ID,
		CreatedAt: v.Conversation.CreatedAt,
		UpdatedAt: v.Conversation.UpdatedAt,
		Users:     make([]*commonDto.UserSummary, 0, len(v.Others)),
	}
	for _, u := range v.Others {
		res.Users = append(res.Users, commonDto.NewUserSummary(u))
	}
	if v.LatestMessage != nil {
		res.LatestMessage = NewMessageResponse(v.LatestMessage)
	}
	return res
}

func NewConversationList(views []*repository.ConversationView) []*ConversationResponse {
	out := make([]*ConversationResponse, 0, len(views))
	for _, v := range views {
		out = append(out, NewConversationResponse(v))
	}
	return out
}
