package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/telestore/telestore/internal/catalog/domain"
)

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.requireAdmin())

	admin.GET("/categories", s.adminCategories)
	admin.GET("/categories/new", s.adminCategoryNew)
	admin.POST("/categories", s.adminCategoryCreate)
	admin.GET("/categories/:id/edit", s.adminCategoryEdit)
	admin.POST("/categories/:id", s.adminCategoryUpdate)
	admin.POST("/categories/:id/delete", s.adminCategoryDelete)

	admin.GET("/tariffs", s.adminTariffs)
	admin.GET("/tariffs/new", s.adminTariffNew)
	admin.POST("/tariffs", s.adminTariffCreate)
	admin.GET("/tariffs/:id/edit", s.adminTariffEdit)
	admin.POST("/tariffs/:id", s.adminTariffUpdate)
	admin.POST("/tariffs/:id/delete", s.adminTariffDelete)

	admin.POST("/tariffs/:id/durations", s.adminDurationAdd)
	admin.POST("/durations/:id/delete", s.adminDurationDelete)
	admin.POST("/tariffs/:id/bundle", s.adminBundleSet)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatus(http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// optionalFormID parses an optional select value; empty means absent.
func optionalFormID(c *gin.Context, field string) *int64 {
	raw := c.PostForm(field)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

func (s *Server) adminCatalogError(c *gin.Context, err error, back string) {
	switch {
	case errors.Is(err, catalogdomain.ErrNotFound):
		c.AbortWithStatus(http.StatusNotFound)
	case errors.Is(err, catalogdomain.ErrInvalidName):
		s.flashAndRedirect(c, "error", "Название не может быть пустым", back)
	case errors.Is(err, catalogdomain.ErrInvalidType):
		s.flashAndRedirect(c, "error", "Неизвестный тип товара", back)
	case errors.Is(err, catalogdomain.ErrInvalidParent):
		s.flashAndRedirect(c, "error", "Указан несуществующий раздел", back)
	case errors.Is(err, catalogdomain.ErrParentCycle):
		s.flashAndRedirect(c, "error", "Раздел не может быть вложен сам в себя", back)
	case errors.Is(err, catalogdomain.ErrInvalidSeconds):
		s.flashAndRedirect(c, "error", "Срок должен быть неотрицательным числом секунд", back)
	case errors.Is(err, catalogdomain.ErrDuplicateSlug):
		s.flashAndRedirect(c, "error", "Такое название уже используется", back)
	default:
		s.serverError(c, "admin catalog operation failed", err)
	}
}

func (s *Server) adminCategories(c *gin.Context) {
	categories, err := s.catalogSvc.Categories(c.Request.Context(), nil)
	if err != nil {
		s.serverError(c, "category listing failed", err)
		return
	}
	s.render(c, http.StatusOK, "admin_categories.tmpl", gin.H{
		"Title":      "Разделы",
		"Categories": categories,
	})
}

func (s *Server) adminCategoryNew(c *gin.Context) {
	parents, err := s.catalogSvc.Categories(c.Request.Context(), nil)
	if err != nil {
		s.serverError(c, "category listing failed", err)
		return
	}
	s.render(c, http.StatusOK, "admin_category_form.tmpl", gin.H{
		"Title":   "Новый раздел",
		"Action":  "/admin/categories",
		"Parents": parents,
	})
}

func (s *Server) adminCategoryCreate(c *gin.Context) {
	_, err := s.catalogSvc.CreateCategory(c.Request.Context(), catalogdomain.CategoryRequest{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		ParentID:    optionalFormID(c, "parent_id"),
	})
	if err != nil {
		s.adminCatalogError(c, err, "/admin/categories/new")
		return
	}
	s.flashAndRedirect(c, "success", "Раздел создан", "/admin/categories")
}

func (s *Server) adminCategoryEdit(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c)
	if !ok {
		return
	}

	category, err := s.catalogSvc.GetCategory(ctx, id)
	if err != nil {
		s.adminCatalogError(c, err, "/admin/categories")
		return
	}
	parents, err := s.catalogSvc.Categories(ctx, nil)
	if err != nil {
		s.serverError(c, "category listing failed", err)
		return
	}

	s.render(c, http.StatusOK, "admin_category_form.tmpl", gin.H{
		"Title":    category.Name,
		"Action":   "/admin/categories/" + strconv.FormatInt(id, 10),
		"Category": category,
		"Parents":  parents,
	})
}

func (s *Server) adminCategoryUpdate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	err := s.catalogSvc.UpdateCategory(c.Request.Context(), id, catalogdomain.CategoryRequest{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		ParentID:    optionalFormID(c, "parent_id"),
	})
	if err != nil {
		s.adminCatalogError(c, err, "/admin/categories/"+strconv.FormatInt(id, 10)+"/edit")
		return
	}
	s.flashAndRedirect(c, "success", "Раздел сохранён", "/admin/categories")
}

func (s *Server) adminCategoryDelete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.catalogSvc.DeleteCategory(c.Request.Context(), id); err != nil {
		s.adminCatalogError(c, err, "/admin/categories")
		return
	}
	s.flashAndRedirect(c, "info", "Раздел удалён", "/admin/categories")
}

func (s *Server) adminTariffs(c *gin.Context) {
	tariffs, err := s.catalogSvc.Tariffs(c.Request.Context(), nil)
	if err != nil {
		s.serverError(c, "tariff listing failed", err)
		return
	}
	s.render(c, http.StatusOK, "admin_tariffs.tmpl", gin.H{
		"Title":   "Товары",
		"Tariffs": tariffs,
	})
}

func (s *Server) adminTariffNew(c *gin.Context) {
	categories, err := s.catalogSvc.Categories(c.Request.Context(), nil)
	if err != nil {
		s.serverError(c, "category listing failed", err)
		return
	}
	s.render(c, http.StatusOK, "admin_tariff_form.tmpl", gin.H{
		"Title":      "Новый товар",
		"Action":     "/admin/tariffs",
		"Categories": categories,
		"Types":      []string{catalogdomain.TypeChannel, catalogdomain.TypeText, catalogdomain.TypeStatus, catalogdomain.TypeBundle},
	})
}

func tariffRequestFromForm(c *gin.Context) catalogdomain.TariffRequest {
	price, _ := strconv.ParseInt(c.PostForm("price"), 10, 64)
	req := catalogdomain.TariffRequest{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       price,
		Type:        c.PostForm("t_type"),
		CategoryID:  optionalFormID(c, "category_id"),
	}
	if payload, ok := c.GetPostForm("payload"); ok {
		req.Payload = &payload
	}
	if statusName, ok := c.GetPostForm("status_name"); ok {
		req.StatusName = &statusName
	}
	return req
}

func (s *Server) adminTariffCreate(c *gin.Context) {
	tariff, err := s.catalogSvc.CreateTariff(c.Request.Context(), tariffRequestFromForm(c))
	if err != nil {
		s.adminCatalogError(c, err, "/admin/tariffs/new")
		return
	}
	s.flashAndRedirect(c, "success", "Товар создан", "/admin/tariffs/"+strconv.FormatInt(tariff.ID, 10)+"/edit")
}

func (s *Server) adminTariffEdit(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c)
	if !ok {
		return
	}

	tariff, err := s.catalogSvc.GetTariff(ctx, id)
	if err != nil {
		s.adminCatalogError(c, err, "/admin/tariffs")
		return
	}
	categories, err := s.catalogSvc.Categories(ctx, nil)
	if err != nil {
		s.serverError(c, "category listing failed", err)
		return
	}
	durations, err := s.catalogSvc.Durations(ctx, id)
	if err != nil {
		s.serverError(c, "duration listing failed", err)
		return
	}

	data := gin.H{
		"Title":      tariff.Name,
		"Action":     "/admin/tariffs/" + strconv.FormatInt(id, 10),
		"Tariff":     tariff,
		"Categories": categories,
		"Durations":  durations,
		"Types":      []string{catalogdomain.TypeChannel, catalogdomain.TypeText, catalogdomain.TypeStatus, catalogdomain.TypeBundle},
	}

	if tariff.Type == catalogdomain.TypeBundle {
		bundleItems, err := s.catalogSvc.BundleItems(ctx, id)
		if err != nil {
			s.serverError(c, "bundle listing failed", err)
			return
		}
		allTariffs, err := s.catalogSvc.Tariffs(ctx, nil)
		if err != nil {
			s.serverError(c, "tariff listing failed", err)
			return
		}
		data["BundleItems"] = bundleItems
		data["AllTariffs"] = allTariffs
	}

	s.render(c, http.StatusOK, "admin_tariff_form.tmpl", data)
}

func (s *Server) adminTariffUpdate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.catalogSvc.UpdateTariff(c.Request.Context(), id, tariffRequestFromForm(c)); err != nil {
		s.adminCatalogError(c, err, "/admin/tariffs/"+strconv.FormatInt(id, 10)+"/edit")
		return
	}
	s.flashAndRedirect(c, "success", "Товар сохранён", "/admin/tariffs/"+strconv.FormatInt(id, 10)+"/edit")
}

func (s *Server) adminTariffDelete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.catalogSvc.DeleteTariff(c.Request.Context(), id); err != nil {
		s.adminCatalogError(c, err, "/admin/tariffs")
		return
	}
	s.flashAndRedirect(c, "info", "Товар удалён", "/admin/tariffs")
}

func (s *Server) adminDurationAdd(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	back := "/admin/tariffs/" + strconv.FormatInt(id, 10) + "/edit"

	seconds, _ := strconv.ParseInt(c.PostForm("seconds"), 10, 64)
	price, _ := strconv.ParseInt(c.PostForm("price"), 10, 64)
	err := s.catalogSvc.AddDuration(c.Request.Context(), catalogdomain.DurationRequest{
		TariffID:  id,
		Name:      c.PostForm("name"),
		Seconds:   seconds,
		Price:     price,
		IsDefault: c.PostForm("is_default") == "1",
	})
	if err != nil {
		s.adminCatalogError(c, err, back)
		return
	}
	s.flashAndRedirect(c, "success", "Срок добавлен", back)
}

func (s *Server) adminDurationDelete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	back := c.Request.Referer()
	if back == "" {
		back = "/admin/tariffs"
	}
	if err := s.catalogSvc.DeleteDuration(c.Request.Context(), id); err != nil {
		s.adminCatalogError(c, err, back)
		return
	}
	s.flashAndRedirect(c, "info", "Срок удалён", back)
}

func (s *Server) adminBundleSet(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	back := "/admin/tariffs/" + strconv.FormatInt(id, 10) + "/edit"

	var itemIDs []int64
	for _, raw := range c.PostFormArray("item_ids") {
		itemID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || itemID <= 0 {
			continue
		}
		itemIDs = append(itemIDs, itemID)
	}

	if err := s.catalogSvc.SetBundleItems(c.Request.Context(), id, itemIDs); err != nil {
		s.adminCatalogError(c, err, back)
		return
	}
	s.flashAndRedirect(c, "success", "Состав набора сохранён", back)
}
