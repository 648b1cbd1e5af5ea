package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	cartdomain "github.com/telestore/telestore/internal/cart/domain"
	promodomain "github.com/telestore/telestore/internal/promo/domain"
	"github.com/telestore/telestore/internal/session"
)

func (s *Server) registerCartRoutes() {
	s.engine.GET("/cart", s.cartPage)
	s.engine.POST("/cart/add", s.cartAdd)
	s.engine.POST("/cart/remove", s.cartRemove)
	s.engine.POST("/apply_promo", s.applyPromo)
}

func (s *Server) cartPage(c *gin.Context) {
	ctx := c.Request.Context()
	sess := session.FromContext(c)

	enriched, err := s.cartSvc.Enrich(ctx, sess.State.Cart)
	if err != nil {
		s.serverError(c, "cart enrichment failed", err)
		return
	}

	var discount int64
	if sess.State.PromoCode != "" {
		d, err := s.promoSvc.Evaluate(ctx, sess.State.PromoCode, enriched, sess.State.UserID)
		switch {
		case err == nil && d != nil:
			discount = d.Amount
		default:
			// Unknown or no longer applicable: drop it once with a notice.
			sess.State.PromoCode = ""
			sess.Flash("warning", "Промокод не применим и был сброшен")
		}
	}

	total := enriched.Total - discount
	if total < 0 {
		total = 0
	}

	s.render(c, http.StatusOK, "cart.tmpl", gin.H{
		"Title":     "Корзина",
		"Items":     enriched.Items,
		"Total":     total,
		"Discount":  discount,
		"PromoCode": sess.State.PromoCode,
	})
}

func (s *Server) cartAdd(c *gin.Context) {
	sess := session.FromContext(c)

	tariffID, err := strconv.ParseInt(c.PostForm("tariff_id"), 10, 64)
	if err != nil {
		s.flashAndRedirect(c, "error", "Некорректный товар", "/")
		return
	}
	durationSeconds, _ := strconv.ParseInt(c.PostForm("duration_seconds"), 10, 64)

	lines, err := s.cartSvc.Add(sess.State.Cart, tariffID, durationSeconds)
	if err != nil {
		if errors.Is(err, cartdomain.ErrDuplicateLine) {
			s.flashAndRedirect(c, "warning", "Этот товар уже в корзине", "/cart")
			return
		}
		s.serverError(c, "cart add failed", err)
		return
	}

	sess.State.Cart = lines
	s.flashAndRedirect(c, "success", "Товар добавлен в корзину", "/cart")
}

func (s *Server) cartRemove(c *gin.Context) {
	sess := session.FromContext(c)

	tariffID, err := strconv.ParseInt(c.PostForm("tariff_id"), 10, 64)
	if err != nil {
		s.flashAndRedirect(c, "error", "Некорректный товар", "/cart")
		return
	}

	sess.State.Cart = s.cartSvc.Remove(sess.State.Cart, tariffID)
	s.flashAndRedirect(c, "info", "Товар убран из корзины", "/cart")
}

func (s *Server) applyPromo(c *gin.Context) {
	ctx := c.Request.Context()
	sess := session.FromContext(c)

	code := strings.TrimSpace(c.PostForm("code"))
	if code == "" {
		sess.State.PromoCode = ""
		s.flashAndRedirect(c, "info", "Промокод сброшен", "/cart")
		return
	}

	enriched, err := s.cartSvc.Enrich(ctx, sess.State.Cart)
	if err != nil {
		s.serverError(c, "cart enrichment failed", err)
		return
	}

	d, err := s.promoSvc.Evaluate(ctx, code, enriched, sess.State.UserID)
	switch {
	case errors.Is(err, promodomain.ErrNotFound):
		s.flashAndRedirect(c, "error", "Такого промокода нет", "/cart")
	case err != nil:
		s.serverError(c, "promo evaluation failed", err)
	case d == nil:
		s.flashAndRedirect(c, "warning", "Промокод не применим к вашей корзине", "/cart")
	default:
		sess.State.PromoCode = code
		s.flashAndRedirect(c, "success", "Промокод применён", "/cart")
	}
}
