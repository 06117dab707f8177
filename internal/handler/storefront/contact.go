package storefront

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/seamark/curio/internal/domain"
	"github.com/seamark/curio/internal/email"
	"github.com/seamark/curio/internal/handler"
)

// ContactHandler relays contact form submissions to the shop inbox.
type ContactHandler struct {
	sender   email.Sender
	from     string
	to       string
	validate *validator.Validate
	logger   *slog.Logger
}

func NewContactHandler(sender email.Sender, from, to string, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		sender:   sender,
		from:     from,
		to:       to,
		validate: validator.New(),
		logger:   logger,
	}
}

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

// Send handles POST /contact. The visitor's address goes on Reply-To
// so the shop can answer directly.
func (h *ContactHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("contact.send", "name, email and message are required"))
		return
	}

	msg := &email.Message{
		To:      []string{h.to},
		From:    h.from,
		ReplyTo: req.Email,
		Subject: fmt.Sprintf("Contact Form: Message from %s", req.Name),
		Text:    fmt.Sprintf("Name: %s\nEmail: %s\n\nMessage:\n%s", req.Name, req.Email, req.Message),
	}

	id, err := h.sender.Send(r.Context(), msg)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	h.logger.Info("contact message relayed",
		slog.String("message_id", id),
		slog.String("reply_to", req.Email),
	)
	handler.JSON(w, http.StatusOK, map[string]any{"sent": true})
}
