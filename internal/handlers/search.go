package handlers

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/labstack/echo/v4"

	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/search"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/util"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

func NewSearchHandler(es *elasticsearch.Client, index string) *SearchHandler {
	return &SearchHandler{ES: es, Index: index}
}

func (h *SearchHandler) SearchProducts(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	page, limit, offset := util.PageParams(c)

	total, products, err := search.Products(c.Request().Context(), h.ES, h.Index, q, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Search failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":       products,
		"pagination": util.Paginate(total, page, limit),
	})
}
