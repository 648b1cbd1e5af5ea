package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/telestore/telestore/internal/catalog/domain"
	"go.uber.org/zap"
)

func (s *Server) registerStorefrontRoutes() {
	s.engine.GET("/", s.indexPage)
	s.engine.GET("/category/:id", s.categoryPage)
	s.engine.GET("/product/:id", s.productPage)
}

func (s *Server) indexPage(c *gin.Context) {
	ctx := c.Request.Context()

	categories, err := s.catalogSvc.Categories(ctx, nil)
	if err != nil {
		s.serverError(c, "catalog load failed", err)
		return
	}
	uncat := catalogdomain.UncategorizedID
	tariffs, err := s.catalogSvc.Tariffs(ctx, &uncat)
	if err != nil {
		s.serverError(c, "catalog load failed", err)
		return
	}

	// Top-level view shows root categories plus uncategorized tariffs.
	roots := categories[:0:0]
	for _, cat := range categories {
		if cat.ParentID == nil {
			roots = append(roots, cat)
		}
	}

	s.render(c, http.StatusOK, "index.tmpl", gin.H{
		"Title":      "Магазин",
		"Categories": roots,
		"Tariffs":    tariffs,
	})
}

func (s *Server) categoryPage(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	// Id 0 is the sentinel for tariffs without a category.
	if id == catalogdomain.UncategorizedID {
		tariffs, err := s.catalogSvc.Tariffs(ctx, &id)
		if err != nil {
			s.serverError(c, "category load failed", err)
			return
		}
		s.render(c, http.StatusOK, "category.tmpl", gin.H{
			"Title":    "Без раздела",
			"Category": catalogdomain.Category{Name: "Без раздела"},
			"Tariffs":  tariffs,
		})
		return
	}

	category, err := s.catalogSvc.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		s.serverError(c, "category load failed", err)
		return
	}

	children, err := s.catalogSvc.Categories(ctx, &id)
	if err != nil {
		s.serverError(c, "category load failed", err)
		return
	}
	tariffs, err := s.catalogSvc.Tariffs(ctx, &id)
	if err != nil {
		s.serverError(c, "category load failed", err)
		return
	}

	s.render(c, http.StatusOK, "category.tmpl", gin.H{
		"Title":    category.Name,
		"Category": category,
		"Children": children,
		"Tariffs":  tariffs,
	})
}

func (s *Server) productPage(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	tariff, err := s.catalogSvc.GetTariff(ctx, id)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		s.serverError(c, "tariff load failed", err)
		return
	}

	durations, err := s.catalogSvc.Durations(ctx, id)
	if err != nil {
		s.serverError(c, "tariff load failed", err)
		return
	}

	s.render(c, http.StatusOK, "product.tmpl", gin.H{
		"Title":     tariff.Name,
		"Tariff":    tariff,
		"Durations": durations,
	})
}

func (s *Server) serverError(c *gin.Context, msg string, err error) {
	s.log.Error(msg, zap.Error(err))
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, "Внутренняя ошибка сервера")
	c.Abort()
}
