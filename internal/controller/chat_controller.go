package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"docuchat-be/internal/dto"
	"docuchat-be/internal/pkg/serverutils"
	"docuchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendChat(ctx *fiber.Ctx) error
	GetAllConversations(ctx *fiber.Ctx) error
	GetConversation(ctx *fiber.Ctx) error
	DeleteConversation(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.SendChat)
	h.Get("/conversations", c.GetAllConversations)
	h.Get("/conversations/:id", c.GetConversation)
	h.Delete("/conversations/:id", c.DeleteConversation)
}

func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIDFromLocals(ctx)
	if err != nil {
		return err
	}

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if req.Stream {
		return c.streamChat(ctx, userId, &req)
	}

	res, err := c.service.SendChat(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

// streamChat answers over SSE: one "delta" event per token batch, then a
// terminal "done" event with the full answer and citations. The generation
// runs inside the fasthttp stream writer, after the handler has returned.
func (c *chatController) streamChat(ctx *fiber.Ctx, userId uuid.UUID, req *dto.SendChatRequest) error {
	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// The fiber ctx is gone once this runs; use a fresh context.
		streamCtx := context.Background()

		onDelta := func(delta string) error {
			if err := writeSSE(w, dto.StreamEvent{Type: "delta", Delta: delta}); err != nil {
				return err
			}
			return w.Flush()
		}

		res, err := c.service.SendChatStream(streamCtx, userId, req, onDelta)
		if err != nil {
			writeSSE(w, dto.StreamEvent{Type: "error", Delta: err.Error()})
			w.Flush()
			return
		}

		writeSSE(w, dto.StreamEvent{
			Type:           "done",
			ConversationId: &res.ConversationId,
			Answer:         res.Answer,
			Citations:      res.Citations,
		})
		w.Flush()
	}))

	return nil
}

func writeSSE(w *bufio.Writer, event dto.StreamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

func (c *chatController) GetAllConversations(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIDFromLocals(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetAllConversations(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all conversations", res))
}

func (c *chatController) GetConversation(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIDFromLocals(ctx)
	if err != nil {
		return err
	}
	idParam := ctx.Params("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid conversation id")
	}

	res, err := c.service.GetConversation(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get conversation", res))
}

func (c *chatController) DeleteConversation(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIDFromLocals(ctx)
	if err != nil {
		return err
	}
	idParam := ctx.Params("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid conversation id")
	}

	if err := c.service.DeleteConversation(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete conversation", nil))
}
