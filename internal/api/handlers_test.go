package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealmate/backend/internal/middleware"
	"github.com/pageza/mealmate/backend/internal/mocks"
)

type testDeps struct {
	auth     *mocks.MockAuthService
	profile  *mocks.MockProfileService
	plan     *mocks.MockPlanService
	shopping *mocks.MockShoppingService
	quota    *mocks.MockQuotaService
	sharing  *mocks.MockSharingService
	recipes  *mocks.MockRecipeCache
}

// setupRouter mounts every handler behind a stand-in auth middleware that
// signs requests in as userID. A nil userID leaves requests anonymous.
func setupRouter(t *testing.T, userID uuid.UUID) (*gin.Engine, *testDeps) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	deps := &testDeps{
		auth:     new(mocks.MockAuthService),
		profile:  new(mocks.MockProfileService),
		plan:     new(mocks.MockPlanService),
		shopping: new(mocks.MockShoppingService),
		quota:    new(mocks.MockQuotaService),
		sharing:  new(mocks.MockSharingService),
		recipes:  new(mocks.MockRecipeCache),
	}
	t.Cleanup(func() {
		deps.auth.AssertExpectations(t)
		deps.profile.AssertExpectations(t)
		deps.plan.AssertExpectations(t)
		deps.shopping.AssertExpectations(t)
		deps.quota.AssertExpectations(t)
		deps.sharing.AssertExpectations(t)
		deps.recipes.AssertExpectations(t)
	})

	router := gin.New()
	v1 := router.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set("user_id", userID)
			c.Request = c.Request.WithContext(middleware.WithUserID(c.Request.Context(), userID))
		}
		c.Next()
	})

	NewHandlers(Services{
		Auth:     deps.auth,
		Profile:  deps.profile,
		Plan:     deps.plan,
		Shopping: deps.shopping,
		Quota:    deps.quota,
		Sharing:  deps.sharing,
		Recipes:  deps.recipes,
	}).RegisterRoutes(v1, protected)

	return router, deps
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp middleware.ErrorResponse
	decode(t, w, &resp)
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	router, _ := setupRouter(t, uuid.Nil)

	w := doJSON(t, router, http.MethodGet, "/api/v1/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestProtectedRoutesNeedAUser(t *testing.T) {
	router, _ := setupRouter(t, uuid.Nil)

	for _, path := range []string{"/api/v1/plan", "/api/v1/shopping", "/api/v1/profile", "/api/v1/quota"} {
		w := doJSON(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}
