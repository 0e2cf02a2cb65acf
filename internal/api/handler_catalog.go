package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ovenlog-backend/internal/catalog"
	"ovenlog-backend/internal/model"
)

// registerCatalogRoutes mounts the catalog CRUD endpoints. List responses
// are cacheable; mutations are not.
func registerCatalogRoutes(api *gin.RouterGroup, h *Handler, caching gin.HandlerFunc) {
	api.GET("/manufacturers", caching, h.ListManufacturers)
	api.POST("/manufacturers", h.CreateManufacturer)
	api.PUT("/manufacturers/:id", h.UpdateManufacturer)
	api.DELETE("/manufacturers/:id", h.DeleteManufacturer)

	api.GET("/models", caching, h.ListModels)
	api.POST("/models", h.CreateModel)
	api.PUT("/models/:id", h.UpdateModel)
	api.DELETE("/models/:id", h.DeleteModel)

	api.GET("/box-types", caching, h.ListBoxTypes)
	api.POST("/box-types", h.CreateBoxType)
	api.PUT("/box-types/:id", h.UpdateBoxType)
	api.DELETE("/box-types/:id", h.DeleteBoxType)

	api.GET("/locations", caching, h.ListLocations)
	api.POST("/locations", h.CreateLocation)
	api.PUT("/locations/:id", h.UpdateLocation)
	api.DELETE("/locations/:id", h.DeleteLocation)

	api.GET("/parts", caching, h.ListParts)
	api.POST("/parts", h.CreatePart)
	api.PUT("/parts/:id", h.UpdatePart)
	api.DELETE("/parts/:id", h.DeletePart)

	api.GET("/applications", caching, h.ListApplications)
	api.POST("/applications", h.CreateApplication)
	api.PUT("/applications/:id", h.UpdateApplication)
	api.DELETE("/applications/:id", h.DeleteApplication)

	api.GET("/standard-times", caching, h.ListStandardTimes)
	api.POST("/standard-times", h.CreateStandardTime)
	api.PUT("/standard-times/:id", h.UpdateStandardTime)
	api.DELETE("/standard-times/:id", h.DeleteStandardTime)

	// Boxes and users share path segments with the tracking routes, so
	// their params keep the same names gin already registered.
	api.POST("/boxes", h.CreateBox)
	api.PUT("/boxes/:box_id", h.UpdateBox)
	api.DELETE("/boxes/:box_id", h.DeleteBox)

	api.GET("/users", h.ListUsers)
	api.POST("/users", h.CreateUser)
	api.PUT("/users/:user_id", h.UpdateUser)
	api.DELETE("/users/:user_id", h.DeleteUser)
	api.POST("/users/:user_id/aliases", h.CreateUserAlias)
	api.DELETE("/users/:user_id/aliases/:alias_id", h.DeleteUserAlias)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}

func catalogError(c *gin.Context, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (h *Handler) ListManufacturers(c *gin.Context) {
	out, err := h.catalog.ListManufacturers(c.Request.Context())
	if err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateManufacturer(c *gin.Context) {
	var m model.Manufacturer
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.CreateManufacturer(c.Request.Context(), &m); err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) UpdateManufacturer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var m model.Manufacturer
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.UpdateManufacturer(c.Request.Context(), id, m.Name); err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteManufacturer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteManufacturer(c.Request.Context(), id); err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListModels(c *gin.Context) {
	out, err := h.catalog.ListModels(c.Request.Context())
	if err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateModel(c *gin.Context) {
	var m model.EquipmentModel
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.CreateModel(c.Request.Context(), &m); err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) UpdateModel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var m model.EquipmentModel
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.UpdateModel(c.Request.Context(), id, m.Name, m.ManufacturerID); err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteModel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteModel(c.Request.Context(), id); err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListBoxTypes(c *gin.Context) {
	out, err := h.catalog.ListBoxTypes(c.Request.Context())
	if err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateBoxType(c *gin.Context) {
	var t model.BoxType
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.CreateBoxType(c.Request.Context(), &t); err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateBoxType(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var t model.BoxType
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.UpdateBoxType(c.Request.Context(), id, t.Name); err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteBoxType(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteBoxType(c.Request.Context(), id); err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListLocations(c *gin.Context) {
	out, err := h.catalog.ListLocations(c.Request.Context())
	if err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateLocation(c *gin.Context) {
	var l model.Location
	if err := c.ShouldBindJSON(&l); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.CreateLocation(c.Request.Context(), &l); err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h *Handler) UpdateLocation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var l model.Location
	if err := c.ShouldBindJSON(&l); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.UpdateLocation(c.Request.Context(), id, l.Name); err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteLocation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteLocation(c.Request.Context(), id); err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListParts(c *gin.Context) {
	out, err := h.catalog.ListParts(c.Request.Context())
	if err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreatePart(c *gin.Context) {
	var p model.Part
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.CreatePart(c.Request.Context(), &p); err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePart(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p model.Part
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.UpdatePart(c.Request.Context(), id, p.PartNumber, p.Description); err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeletePart(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeletePart(c.Request.Context(), id); err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListApplications(c *gin.Context) {
	out, err := h.catalog.ListApplications(c.Request.Context())
	if err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateApplication(c *gin.Context) {
	var a model.Application
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.CreateApplication(c.Request.Context(), &a); err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) UpdateApplication(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in model.Application
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.catalog.UpdateApplication(c.Request.Context(), id, func(a *model.Application) {
		a.Name = in.Name
		a.DefaultBakeHours = in.DefaultBakeHours
		a.DefaultTemperature = in.DefaultTemperature
		a.MinTemperature = in.MinTemperature
		a.MaxTemperature = in.MaxTemperature
		a.Barcode = in.Barcode
	})
	if err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteApplication(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteApplication(c.Request.Context(), id); err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListStandardTimes(c *gin.Context) {
	out, err := h.catalog.ListStandardTimes(c.Request.Context())
	if err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateStandardTime(c *gin.Context) {
	var t model.StandardTime
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.CreateStandardTime(c.Request.Context(), &t); err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateStandardTime(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in model.StandardTime
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.catalog.UpdateStandardTime(c.Request.Context(), id, func(t *model.StandardTime) {
		t.Barcode = in.Barcode
		t.Description = in.Description
		t.Hours = in.Hours
	})
	if err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteStandardTime(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteStandardTime(c.Request.Context(), id); err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateBox(c *gin.Context) {
	var b model.Box
	if err := c.ShouldBindJSON(&b); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.CreateBox(c.Request.Context(), &b); err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *Handler) UpdateBox(c *gin.Context) {
	id, ok := pathID(c, "box_id")
	if !ok {
		return
	}
	var in model.Box
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.catalog.UpdateBox(c.Request.Context(), id, func(b *model.Box) {
		b.ToolID = in.ToolID
		b.DefaultTemperature = in.DefaultTemperature
		b.TemperatureScale = in.TemperatureScale
		b.WarmUpMinutes = in.WarmUpMinutes
		b.HasDigitalDisplay = in.HasDigitalDisplay
		b.LocationID = in.LocationID
		b.ModelID = in.ModelID
		b.BoxTypeID = in.BoxTypeID
	})
	if err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteBox(c *gin.Context) {
	id, ok := pathID(c, "box_id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteBox(c.Request.Context(), id); err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListUsers(c *gin.Context) {
	out, err := h.catalog.ListUsers(c.Request.Context())
	if err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var u model.User
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.CreateUser(c.Request.Context(), &u); err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	var in model.User
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.catalog.UpdateUser(c.Request.Context(), id, func(u *model.User) {
		u.FirstName = in.FirstName
		u.MiddleName = in.MiddleName
		u.LastName = in.LastName
		u.Badge = in.Badge
		u.Login = in.Login
		u.IsActive = in.IsActive
		u.DedicatedBoxID = in.DedicatedBoxID
	})
	if err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteUser(c.Request.Context(), id); err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateUserAlias(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	var a model.UserAlias
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a.UserID = userID
	if err := h.catalog.CreateUserAlias(c.Request.Context(), &a); err != nil {
		catalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) DeleteUserAlias(c *gin.Context) {
	if _, ok := pathID(c, "user_id"); !ok {
		return
	}
	id, ok := pathID(c, "alias_id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteUserAlias(c.Request.Context(), id); err != nil {
		catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
