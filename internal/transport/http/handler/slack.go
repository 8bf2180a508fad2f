package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	slackoauth "golang.org/x/oauth2/slack"

	"ai-workspace/internal/bootstrap"
	slackconn "ai-workspace/internal/connector/slack"
	"ai-workspace/internal/pkg/oauthstate"
	"ai-workspace/internal/transport/http/response"
)

type SlackHandler struct {
	app       *bootstrap.App
	connector *slackconn.Connector
	oauth     *oauth2.Config
	state     *oauthstate.Signer
}

func NewSlackHandler(app *bootstrap.App, conn *slackconn.Connector) *SlackHandler {
	return &SlackHandler{
		app:       app,
		connector: conn,
		oauth: &oauth2.Config{
			ClientID:     app.Config.Slack.ClientID,
			ClientSecret: app.Config.Slack.ClientSecret,
			RedirectURL:  app.Config.Slack.RedirectURI,
			Endpoint:     slackoauth.Endpoint,
			Scopes:       []string{"channels:history", "files:read"},
		},
		state: oauthstate.NewSigner(app.Config.Google.StateSecret),
	}
}

func (h *SlackHandler) Connect(c *gin.Context) {
	state, err := h.state.Issue("slack")
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "issue oauth state failed")
		return
	}

	response.OK(c, gin.H{
		"auth_url": h.oauth.AuthCodeURL(state),
	})
}

func (h *SlackHandler) OAuthCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing code parameter")
		return
	}
	if _, err := h.state.Verify(c.Query("state")); err != nil {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid oauth state")
		return
	}

	token, err := h.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "exchange authorization code failed")
		return
	}

	ws := slackconn.Workspace{
		AccessToken: token.AccessToken,
	}
	if teamID, ok := token.Extra("team_id").(string); ok {
		ws.TeamID = teamID
	}
	if teamName, ok := token.Extra("team_name").(string); ok {
		ws.TeamName = teamName
	}
	if err := h.app.SlackTokens.Save(ws); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "store workspace failed")
		return
	}

	response.OK(c, gin.H{
		"team_id":   ws.TeamID,
		"team_name": ws.TeamName,
		"status":    "connected",
	})
}

// Events receives Events API deliveries. Signature verification happens
// before any parsing; Slack expects the challenge echoed back raw during
// URL verification.
func (h *SlackHandler) Events(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read request body failed")
		return
	}

	if err := slackconn.VerifySignature(
		h.app.Config.Slack.SigningSecret,
		c.GetHeader("X-Slack-Request-Timestamp"),
		c.GetHeader("X-Slack-Signature"),
		body,
	); err != nil {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
		return
	}

	challenge, err := h.connector.HandleEvent(c.Request.Context(), body)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "process event failed")
		return
	}
	if challenge != "" {
		c.JSON(http.StatusOK, gin.H{"challenge": challenge})
		return
	}

	response.OK(c, gin.H{"status": "processed"})
}

func (h *SlackHandler) Status(c *gin.Context) {
	workspaces, err := h.app.SlackTokens.List()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list workspaces failed")
		return
	}
	response.OK(c, gin.H{"workspaces": workspaces})
}
