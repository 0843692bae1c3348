package httpgin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kirinyoku/tour-go/internal/service"
	"github.com/kirinyoku/tour-go/internal/service/tours"
)

// @Summary  List tours
// @Param    search       query  string  false  "name, location or description"
// @Param    difficulty   query  string  false  "all|easy|moderate|difficult"
// @Param    minPrice     query  number  false  "default 0"
// @Param    maxPrice     query  number  false  "default 999999"
// @Param    minDuration  query  int     false  "default 0"
// @Param    maxDuration  query  int     false  "default 999"
// @Param    sortBy       query  string  false  "price-asc|price-desc|rating|name"
// @Success  200  {array}   domain.Tour
// @Failure  400  {object}  ErrorResponse
// @Router   /tours [get]
func handleListTours(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := tours.ListParams{
			Search:     c.Query("search"),
			Difficulty: c.Query("difficulty"),
			SortBy:     c.Query("sortBy"),
		}

		var err error
		if p.MinPrice, err = queryFloat(c, "minPrice"); err != nil {
			badRequest(c, "invalid minPrice")
			return
		}
		if p.MaxPrice, err = queryFloat(c, "maxPrice"); err != nil {
			badRequest(c, "invalid maxPrice")
			return
		}
		if p.MinDuration, err = queryInt(c, "minDuration"); err != nil {
			badRequest(c, "invalid minDuration")
			return
		}
		if p.MaxDuration, err = queryInt(c, "maxDuration"); err != nil {
			badRequest(c, "invalid maxDuration")
			return
		}

		out, err := svcs.Tours.List(c.Request.Context(), p)
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, out, "public, max-age=30")
	}
}

// @Summary  Get tour
// @Param    id  path  string  true  "Tour ID"
// @Success  200  {object}  domain.Tour
// @Failure  404  {object}  ErrorResponse
// @Router   /tours/{id} [get]
func handleGetTour(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		t, err := svcs.Tours.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, t, "public, max-age=60")
	}
}

// @Summary  Remaining spots per departure in a month
// @Param    id     path   string  true  "Tour ID"
// @Param    month  query  string  true  "YYYY-MM"
// @Success  200  {array}   domain.DateAvailability
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /tours/{id}/availability [get]
func handleGetAvailability(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		out, err := svcs.Tours.Availability(c.Request.Context(), id, c.Query("month"))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  List all tours (admin)
// @Security BearerAuth
// @Success  200  {array}  domain.Tour
// @Router   /admin/tours [get]
func handleAdminListTours(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Tours.ListAll(c.Request.Context(), principal(c))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Create tour (admin)
// @Security BearerAuth
// @Param    req  body  TourRequest  true  "payload"
// @Success  201  {object}  domain.Tour
// @Failure  400  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "name taken"
// @Router   /admin/tours [post]
func handleAdminCreateTour(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TourRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		t, err := svcs.Tours.Create(c.Request.Context(), principal(c), tours.Input{
			Name:         req.Name,
			Description:  req.Description,
			Price:        req.Price,
			Duration:     req.Duration,
			MaxGroupSize: req.MaxGroupSize,
			Difficulty:   req.Difficulty,
			ImageURL:     req.ImageURL,
			Images:       req.Images,
			Location:     req.Location,
			StartDates:   req.StartDates,
			Highlights:   req.Highlights,
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, t)
	}
}

// @Summary  Update tour (admin)
// @Security BearerAuth
// @Param    id   path  string            true  "Tour ID"
// @Param    req  body  TourPatchRequest  true  "fields to change"
// @Success  200  {object}  domain.Tour
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /admin/tours/{id} [patch]
func handleAdminUpdateTour(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req TourPatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		t, err := svcs.Tours.Update(c.Request.Context(), principal(c), id, tours.Patch{
			Name:         req.Name,
			Description:  req.Description,
			Price:        req.Price,
			Duration:     req.Duration,
			MaxGroupSize: req.MaxGroupSize,
			Difficulty:   req.Difficulty,
			ImageURL:     req.ImageURL,
			Images:       req.Images,
			Location:     req.Location,
			StartDates:   req.StartDates,
			Highlights:   req.Highlights,
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, t)
	}
}

// @Summary  Delete tour (admin)
// @Security BearerAuth
// @Param    id  path  string  true  "Tour ID"
// @Success  200  {object}  MessageResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /admin/tours/{id} [delete]
func handleAdminDeleteTour(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		if err := svcs.Tours.Delete(c.Request.Context(), principal(c), id); err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "tour deleted"})
	}
}

func queryFloat(c *gin.Context, name string) (*float64, error) {
	s := c.Query(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func queryInt(c *gin.Context, name string) (*int, error) {
	s := c.Query(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
