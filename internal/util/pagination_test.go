package util

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	offset, limit := Calculate(1, 10)
	require.Equal(t, 0, offset)
	require.Equal(t, 10, limit)

	offset, limit = Calculate(3, 20)
	require.Equal(t, 40, offset)
	require.Equal(t, 20, limit)

	// Out-of-range inputs are normalized.
	offset, limit = Calculate(0, 0)
	require.Equal(t, 0, offset)
	require.Equal(t, DefaultPageSize, limit)

	_, limit = Calculate(1, 500)
	require.Equal(t, DefaultPageSize, limit)
}

func TestPaginate(t *testing.T) {
	p := Paginate(25, 2, 10)
	require.EqualValues(t, 25, p.Total)
	require.Equal(t, 2, p.Page)
	require.EqualValues(t, 3, p.Pages)
	require.Equal(t, 10, p.Limit)

	require.EqualValues(t, 0, Paginate(0, 1, 10).Pages)
	require.EqualValues(t, 1, Paginate(10, 1, 10).Pages)
	require.EqualValues(t, 2, Paginate(11, 1, 10).Pages)
}

func TestPageParams(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?page=2&limit=5", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	page, limit, offset := PageParams(c)
	require.Equal(t, 2, page)
	require.Equal(t, 5, limit)
	require.Equal(t, 5, offset)

	req = httptest.NewRequest(http.MethodGet, "/?page=abc&limit=-1", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	page, limit, offset = PageParams(c)
	require.Equal(t, 1, page)
	require.Equal(t, DefaultPageSize, limit)
	require.Equal(t, 0, offset)
}
