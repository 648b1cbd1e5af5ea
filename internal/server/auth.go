package server

import (
	"github.com/gin-gonic/gin"
	"github.com/telestore/telestore/internal/session"
	"github.com/telestore/telestore/internal/tgauth"
	"go.uber.org/zap"
)

func (s *Server) registerAuthRoutes() {
	s.engine.GET("/tg_login", s.tgLogin)
	s.engine.GET("/logout", s.logout)
}

// tgLogin is the Telegram Login Widget callback. The widget passes the signed
// identity as query parameters.
func (s *Server) tgLogin(c *gin.Context) {
	fields := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}

	if err := tgauth.Verify(fields, s.cfg.TelegramLoginToken); err != nil {
		s.log.Warn("telegram login rejected", zap.Error(err))
		s.flashAndRedirect(c, "error", "Не удалось подтвердить вход через Telegram", "/account")
		return
	}

	ident, err := tgauth.ParseIdentity(fields)
	if err != nil {
		s.flashAndRedirect(c, "error", "Не удалось подтвердить вход через Telegram", "/account")
		return
	}

	sess := session.FromContext(c)
	sess.State.UserID = ident.TgID
	sess.State.FirstName = ident.FirstName
	sess.State.Username = ident.Username
	sess.State.IsAdmin = s.cfg.IsAdmin(ident.TgID)

	s.purchaseSvc.EnsureUser(c.Request.Context(), ident.TgID, sess.State.IsAdmin)

	s.flashAndRedirect(c, "success", "Вы вошли как "+ident.FirstName, "/account")
}

func (s *Server) logout(c *gin.Context) {
	sess := session.FromContext(c)
	if err := sess.Destroy(c); err != nil {
		s.log.Error("session destroy failed", zap.Error(err))
	}
	s.flashAndRedirect(c, "info", "Вы вышли из аккаунта", "/")
}
