package server

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/telestore/telestore/internal/session"
	"go.uber.org/zap"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

func loadTemplates(r *gin.Engine) error {
	funcs := template.FuncMap{
		"rub":      formatRub,
		"duration": formatDuration,
		"deref": func(p *int64) int64 {
			if p == nil {
				return 0
			}
			return *p
		},
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)
	return nil
}

// formatRub renders kopeck-less ruble amounts.
func formatRub(amount int64) string {
	return fmt.Sprintf("%d ₽", amount)
}

func formatDuration(seconds int64) string {
	switch {
	case seconds <= 0:
		return "бессрочно"
	case seconds%86400 == 0:
		return fmt.Sprintf("%d дн.", seconds/86400)
	case seconds%3600 == 0:
		return fmt.Sprintf("%d ч.", seconds/3600)
	default:
		return fmt.Sprintf("%d сек.", seconds)
	}
}

// render draws a page with the shared session context merged in. Flashes are
// drained here, which requires a session save.
func (s *Server) render(c *gin.Context, status int, name string, data gin.H) {
	sess := session.FromContext(c)

	if data == nil {
		data = gin.H{}
	}
	data["Flashes"] = sess.DrainFlashes()
	data["LoggedIn"] = sess.State.LoggedIn()
	data["FirstName"] = sess.State.FirstName
	data["IsAdmin"] = sess.State.LoggedIn() && s.cfg.IsAdmin(sess.State.UserID)
	data["CartCount"] = len(sess.State.Cart)
	data["TgLoginBot"] = s.cfg.TelegramLoginBot

	if err := sess.Save(c); err != nil {
		s.log.Error("session save failed", zap.Error(err))
	}
	c.HTML(status, name, data)
}

// flashAndRedirect is the error style for user-facing form posts.
func (s *Server) flashAndRedirect(c *gin.Context, level, message, location string) {
	sess := session.FromContext(c)
	sess.Flash(level, message)
	if err := sess.Save(c); err != nil {
		s.log.Error("session save failed", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, location)
}
