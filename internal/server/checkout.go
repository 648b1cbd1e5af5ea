package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/telestore/telestore/internal/payment/domain"
	"github.com/telestore/telestore/internal/session"
	"go.uber.org/zap"
)

func (s *Server) registerCheckoutRoutes() {
	s.engine.POST("/checkout", s.checkout)
	s.engine.GET("/payment/:id", s.paymentPage)
	s.engine.GET("/api/payment_status/:id", s.paymentStatus)
}

func (s *Server) checkout(c *gin.Context) {
	ctx := c.Request.Context()
	sess := session.FromContext(c)

	if len(sess.State.Cart) == 0 {
		s.flashAndRedirect(c, "error", "Корзина пуста", "/cart")
		return
	}

	enriched, err := s.cartSvc.Enrich(ctx, sess.State.Cart)
	if err != nil {
		s.serverError(c, "cart enrichment failed", err)
		return
	}
	if len(enriched.Items) == 0 {
		sess.State.Cart = nil
		s.flashAndRedirect(c, "error", "Товары из корзины больше не продаются", "/cart")
		return
	}

	if s.cartSvc.RequiresLogin(enriched.Items) && !sess.State.LoggedIn() {
		s.flashAndRedirect(c, "warning", "Для покупки доступа к каналам войдите через Telegram", "/account")
		return
	}

	total := enriched.Total
	promoCode := ""
	if sess.State.PromoCode != "" {
		d, err := s.promoSvc.Evaluate(ctx, sess.State.PromoCode, enriched, sess.State.UserID)
		if err == nil && d != nil {
			total -= d.Amount
			promoCode = sess.State.PromoCode
		} else {
			sess.State.PromoCode = ""
		}
	}
	if total < 0 {
		total = 0
	}

	userID := sess.State.UserID
	if userID == 0 {
		userID = paymentdomain.GuestUserID
	}

	resp, err := s.paymentSvc.CreateOrder(ctx, paymentdomain.CreateRequest{
		UserID:    userID,
		Items:     enriched.Items,
		Total:     total,
		PromoCode: promoCode,
	})
	if err != nil {
		s.log.Error("order creation failed", zap.Error(err))
		s.flashAndRedirect(c, "error", "Не удалось создать платёж, попробуйте позже", "/cart")
		return
	}

	c.Redirect(http.StatusSeeOther, "/payment/"+resp.PaymentID)
}

// paymentPage also serves provider return visits for orders this process no
// longer holds; those render without a total or pay link and rely on polling.
func (s *Server) paymentPage(c *gin.Context) {
	paymentID := c.Param("id")

	var total int64
	redirectURL := ""
	if order, ok := s.paymentSvc.Lookup(paymentID); ok {
		total = order.Total
		redirectURL = order.RedirectURL
	}

	settings := s.settings.Get()
	s.render(c, http.StatusOK, "payment.tmpl", gin.H{
		"Title":          "Оплата",
		"PaymentID":      paymentID,
		"Total":          total,
		"RedirectURL":    redirectURL,
		"PollIntervalMS": settings.PollIntervalSec * 1000,
		"PollAttempts":   settings.PollAttempts,
	})
}

// paymentStatus is polled by the payment page. A confirmed status triggers the
// claim-then-deliver sequence; the claim guarantees at-most-once fulfillment
// even under concurrent polls.
func (s *Server) paymentStatus(c *gin.Context) {
	ctx := c.Request.Context()
	paymentID := c.Param("id")
	sess := session.FromContext(c)

	order, ok := s.paymentSvc.Lookup(paymentID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"status": "unknown"})
		return
	}
	if order.Delivered {
		c.JSON(http.StatusOK, gin.H{"status": paymentdomain.StatusConfirmed})
		return
	}

	result := s.paymentSvc.Poll(ctx, paymentID)
	if !result.Confirmed {
		c.JSON(http.StatusOK, gin.H{"status": result.Status})
		return
	}

	claimed, ok := s.paymentSvc.ClaimForDelivery(ctx, paymentID)
	if !ok {
		// Another poll won the claim; report success without redelivering.
		c.JSON(http.StatusOK, gin.H{"status": paymentdomain.StatusConfirmed})
		return
	}

	grants := s.fulfillSvc.Deliver(ctx, paymentID, claimed)

	sess.State.GuestPurchases = append(sess.State.GuestPurchases, grants...)
	sess.State.Cart = nil
	sess.State.PromoCode = ""
	sess.Flash("success", "Оплата прошла, покупка доставлена")
	if err := sess.Save(c); err != nil {
		s.log.Error("session save failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"status": paymentdomain.StatusConfirmed})
}
