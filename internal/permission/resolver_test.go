package permission_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sprinthub/internal/permission"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHTTPResolver_Success(t *testing.T) {
	userID := uuid.New()
	projectID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := fmt.Sprintf("/api/projects/%s/members/%s/permissions", projectID, userID)
		assert.Equal(t, expected, r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"SUCCESS","data":{"isOwner":false,"isScrumMaster":true,"canCreateSprint":true,"canManageSprints":true}}`)
	}))
	defer server.Close()

	resolver := permission.NewHTTPResolver(server.URL, time.Second)

	set, err := resolver.Resolve(context.Background(), userID, projectID)
	assert.NoError(t, err)
	assert.False(t, set.IsOwner)
	assert.True(t, set.IsScrumMaster)
	assert.True(t, set.CanCreateSprint)
	assert.True(t, set.CanManageSprints)
}

func TestHTTPResolver_NoMembership(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ERROR","message":"User not found in project"}`)
	}))
	defer server.Close()

	resolver := permission.NewHTTPResolver(server.URL, time.Second)

	_, err := resolver.Resolve(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, permission.ErrNoMembership)
}

func TestHTTPResolver_NonSuccessStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	resolver := permission.NewHTTPResolver(server.URL, time.Second)

	_, err := resolver.Resolve(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, permission.ErrAuthorityUnavailable)
}

func TestHTTPResolver_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing is listening anymore

	resolver := permission.NewHTTPResolver(server.URL, time.Second)

	_, err := resolver.Resolve(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, permission.ErrAuthorityUnavailable)
}

func TestHTTPResolver_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	resolver := permission.NewHTTPResolver(server.URL, 20*time.Millisecond)

	_, err := resolver.Resolve(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, permission.ErrAuthorityUnavailable)
}

func TestHTTPResolver_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer server.Close()

	resolver := permission.NewHTTPResolver(server.URL, time.Second)

	_, err := resolver.Resolve(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, permission.ErrAuthorityUnavailable)
}
