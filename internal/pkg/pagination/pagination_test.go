package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextFor(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestPageFromContext(t *testing.T) {
	b := Bounds{DefaultLimit: 10, MaxLimit: 50}

	q, err := PageFromContext(contextFor(""), b)
	require.NoError(t, err)
	assert.Equal(t, Query{Page: 1, Limit: 10}, q)

	q, err = PageFromContext(contextFor("page=3&limit=50"), b)
	require.NoError(t, err)
	assert.Equal(t, Query{Page: 3, Limit: 50}, q)

	for _, bad := range []string{"page=0", "limit=51", "limit=0", "page=x"} {
		_, err := PageFromContext(contextFor(bad), b)
		assert.Error(t, err, bad)
	}
}

func TestWindowFromContext(t *testing.T) {
	b := Bounds{DefaultLimit: 50, MaxLimit: 100}

	w, err := WindowFromContext(contextFor("skip=5"), b)
	require.NoError(t, err)
	assert.Equal(t, Window{Skip: 5, Limit: 50}, w)

	_, err = WindowFromContext(contextFor("skip=-1"), b)
	assert.Error(t, err)
	_, err = WindowFromContext(contextFor("limit=101"), b)
	assert.Error(t, err)
}
