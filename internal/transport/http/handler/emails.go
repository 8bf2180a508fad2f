package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-workspace/internal/bootstrap"
	"ai-workspace/internal/connector"
	"ai-workspace/internal/connector/gmail"
	"ai-workspace/internal/pkg/oauthstate"
	"ai-workspace/internal/transport/http/response"
)

// EmailsHandler drives the Gmail account lifecycle: OAuth connect, poller
// status, and disconnect.
type EmailsHandler struct {
	app   *bootstrap.App
	state *oauthstate.Signer
}

func NewEmailsHandler(app *bootstrap.App) *EmailsHandler {
	return &EmailsHandler{
		app:   app,
		state: oauthstate.NewSigner(app.Config.Google.StateSecret),
	}
}

func (h *EmailsHandler) AuthURL(c *gin.Context) {
	state, err := h.state.Issue("gmail")
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "issue oauth state failed")
		return
	}

	response.OK(c, gin.H{
		"auth_url": h.app.GoogleOAuth.AuthCodeURL(state),
	})
}

func (h *EmailsHandler) AuthCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing code parameter")
		return
	}
	if _, err := h.state.Verify(c.Query("state")); err != nil {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid oauth state")
		return
	}

	ctx := c.Request.Context()
	token, err := h.app.GoogleOAuth.Exchange(ctx, code)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "exchange authorization code failed")
		return
	}

	account, err := gmail.ResolveAccount(ctx, h.app.GoogleOAuth, token)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "resolve account failed")
		return
	}
	if err := h.app.GoogleTokens.Save(account, token); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "store credential failed")
		return
	}

	// The poller must outlive this request.
	runner := h.app.NewGmailRunner(account)
	if err := h.app.Connectors.Add(context.Background(), runner); err != nil && !errors.Is(err, connector.ErrAlreadyConnected) {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "start connector failed")
		return
	}

	response.OK(c, gin.H{
		"account": account,
		"status":  "connected",
	})
}

// Accounts lists every stored credential with its runner state.
func (h *EmailsHandler) Accounts(c *gin.Context) {
	accounts, err := h.app.GoogleTokens.Accounts()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list accounts failed")
		return
	}

	running := make(map[string]connector.Status)
	for _, status := range h.app.Connectors.Statuses() {
		running[status.Account] = status
	}

	type accountInfo struct {
		Email string          `json:"email"`
		State connector.State `json:"state"`
	}
	infos := make([]accountInfo, 0, len(accounts))
	for _, account := range accounts {
		state := connector.StateDisconnected
		if status, ok := running[account]; ok {
			state = status.State
		}
		infos = append(infos, accountInfo{Email: account, State: state})
	}

	response.OK(c, gin.H{"accounts": infos})
}

func (h *EmailsHandler) Status(c *gin.Context) {
	response.OK(c, gin.H{"connectors": h.app.Connectors.Statuses()})
}

func (h *EmailsHandler) Disconnect(c *gin.Context) {
	account := c.Param("email")
	if account == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing account email")
		return
	}

	removed := h.app.Connectors.Remove(account)
	_, loadErr := h.app.GoogleTokens.Load(account)
	if !removed && errors.Is(loadErr, gmail.ErrNoCredential) {
		response.Error(c, http.StatusNotFound, response.CodeNoCredential, "account is not connected")
		return
	}
	if err := h.app.GoogleTokens.Delete(account); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete credential failed")
		return
	}

	response.OK(c, gin.H{
		"account": account,
		"status":  "disconnected",
	})
}
