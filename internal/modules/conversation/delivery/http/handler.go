package handler

import (
	"net/http"
	"strings"

	"anoa.com/jobboard/internal/modules/conversation/dto"
	conversationService "anoa.com/jobboard/internal/modules/conversation/service"
	"anoa.com/jobboard/pkg/response"
	"anoa.com/jobboard/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

type ConversationHandler struct {
	service     conversationService.ConversationService
	redisClient *redis.Client
	upgrader    websocket.Upgrader
}

// NewConversationHandler accepts websocket upgrades from the given
// comma-separated origins, or from anywhere when the list contains "*".
func NewConversationHandler(service conversationService.ConversationService, redisClient *redis.Client, allowedOrigins string) *ConversationHandler {
	origins := map[string]bool{}
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = true
		}
	}

	return &ConversationHandler{
		service:     service,
		redisClient: redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
	}
}

func (h *ConversationHandler) Start(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}

	view, created, err := h.service.StartConversation(c.Request.Context(), actor, req.RecipientID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.NewConversationResponse(view))
}

func (h *ConversationHandler) List(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	views, err := h.service.ListConversations(c.Request.Context(), actor)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewConversationList(views))
}

func (h *ConversationHandler) Messages(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	conversationID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	messages, err := h.service.ListMessages(c.Request.Context(), actor, conversationID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMessageList(messages))
}

func (h *ConversationHandler) PostMessage(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	conversationID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindingError(err))
		return
	}

	msg, err := h.service.PostMessage(c.Request.Context(), actor, conversationID, req.Body)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewMessageResponse(msg))
}

// Stream forwards every message addressed to the caller over a websocket.
func (h *ConversationHandler) Stream(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if h.redisClient == nil {
		response.Message(c, http.StatusServiceUnavailable, "live updates are not available")
		return
	}
	log := response.Logger(c).WithField("actor_id", actor.ID)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("failed to upgrade websocket")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	pubsub := h.redisClient.Subscribe(ctx, conversationService.UserChannel(actor.ID))
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		log.WithError(err).Error("failed to subscribe to message channel")
		return
	}
	ch := pubsub.Channel()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.WithError(err).Warn("failed to write to websocket")
				return
			}
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		}
	}
}
