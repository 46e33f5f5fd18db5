package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"feeledger/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categoryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "kind", "default_amount", "active", "created_at", "updated_at"})
}

func TestCategoryHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs("Library Fine").
		WillReturnRows(sqlmock.NewRows([]string{}))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `categories`").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewCategoryHandler()
	router.POST("/categories", h.Create)

	body := `{"name":"Library Fine","kind":"fine","default_amount":50}`
	req := httptest.NewRequest("POST", "/categories", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "fine", data["kind"])
	assert.Equal(t, true, data["active"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Create_InvalidKind(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	defer func() { config.GlobalConfig = nil }()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewCategoryHandler()
	router.POST("/categories", h.Create)

	body := `{"name":"Misc","kind":"donation"}`
	req := httptest.NewRequest("POST", "/categories", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "kind must be fee or fine", resp["message"])
}

func TestCategoryHandler_Delete_ReferencedDeactivates(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(categoryRows().
			AddRow(3, "Tuition Fee", "fee", 5000, true, time.Now(), time.Now()))

	// entries still reference the category, so it is deactivated
	mock.ExpectQuery("SELECT count.* FROM `ledger_entries`").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery("SELECT count.* FROM `payment_events`").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `categories`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewCategoryHandler()
	router.DELETE("/categories/:id", h.Delete)

	req := httptest.NewRequest("DELETE", "/categories/3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "category is referenced and was deactivated", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryHandler_Delete_Unreferenced(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(categoryRows().
			AddRow(9, "Old Fine", "fine", 10, false, time.Now(), time.Now()))

	mock.ExpectQuery("SELECT count.* FROM `ledger_entries`").
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT count.* FROM `payment_events`").
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `categories`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewCategoryHandler()
	router.DELETE("/categories/:id", h.Delete)

	req := httptest.NewRequest("DELETE", "/categories/9", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
