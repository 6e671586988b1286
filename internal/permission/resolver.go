package permission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoMembership means the authority answered but has no record for
	// the (user, project) pair.
	ErrNoMembership = errors.New("user is not a member of the project")

	// ErrAuthorityUnavailable means the authority could not be reached or
	// answered with a non-success status. Callers must treat this as deny.
	ErrAuthorityUnavailable = errors.New("membership authority unavailable")
)

// Resolver fetches the permission flags for a user in a project. Fetched
// fresh on every call; decisions are never cached across requests.
type Resolver interface {
	Resolve(ctx context.Context, userID, projectID uuid.UUID) (PermissionSet, error)
}

// HTTPResolver resolves permissions against the projects service.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

func NewHTTPResolver(baseURL string, timeout time.Duration) *HTTPResolver {
	return &HTTPResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// envelope is the projects service response wrapper.
type envelope struct {
	Status string         `json:"status"`
	Data   *PermissionSet `json:"data"`
}

func (r *HTTPResolver) Resolve(ctx context.Context, userID, projectID uuid.UUID) (PermissionSet, error) {
	url := fmt.Sprintf("%s/api/projects/%s/members/%s/permissions", r.baseURL, projectID, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return PermissionSet{}, fmt.Errorf("%w: %v", ErrAuthorityUnavailable, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		// Covers timeouts too; a slow authority is a deny, not a wait.
		return PermissionSet{}, fmt.Errorf("%w: %v", ErrAuthorityUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return PermissionSet{}, fmt.Errorf("%w: status %d", ErrAuthorityUnavailable, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return PermissionSet{}, fmt.Errorf("%w: %v", ErrAuthorityUnavailable, err)
	}

	if env.Status != "SUCCESS" || env.Data == nil {
		return PermissionSet{}, ErrNoMembership
	}

	return *env.Data, nil
}
