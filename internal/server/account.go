package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	purchasedomain "github.com/telestore/telestore/internal/purchase/domain"
	"github.com/telestore/telestore/internal/session"
)

func (s *Server) registerAccountRoutes() {
	s.engine.GET("/account", s.accountPage)
	s.engine.POST("/refresh_access/:purchase_id", s.refreshAccess)
}

func (s *Server) accountPage(c *gin.Context) {
	ctx := c.Request.Context()
	sess := session.FromContext(c)

	var purchases []purchasedomain.Purchase
	if sess.State.LoggedIn() {
		var err error
		purchases, err = s.purchaseSvc.List(ctx, sess.State.UserID)
		if err != nil {
			s.serverError(c, "purchase listing failed", err)
			return
		}
	}

	s.render(c, http.StatusOK, "account.tmpl", gin.H{
		"Title":          "Кабинет",
		"Purchases":      purchases,
		"GuestPurchases": sess.State.GuestPurchases,
	})
}

func (s *Server) refreshAccess(c *gin.Context) {
	ctx := c.Request.Context()
	sess := session.FromContext(c)

	if !sess.State.LoggedIn() {
		s.flashAndRedirect(c, "warning", "Войдите через Telegram", "/account")
		return
	}
	purchaseID, err := strconv.ParseInt(c.Param("purchase_id"), 10, 64)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	_, err = s.purchaseSvc.RefreshAccess(ctx, sess.State.UserID, purchaseID)
	switch {
	case errors.Is(err, purchasedomain.ErrNotFound):
		s.flashAndRedirect(c, "error", "Покупка не найдена", "/account")
	case errors.Is(err, purchasedomain.ErrNoInviteLink):
		s.flashAndRedirect(c, "error", "У канала нет ссылки-приглашения, обратитесь в поддержку", "/account")
	case err != nil:
		s.serverError(c, "access refresh failed", err)
	default:
		s.flashAndRedirect(c, "success", "Ссылка обновлена", "/account")
	}
}
