package repositories

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"planner-board/backend/planner-service/models"
)

type spUser struct {
	ID    int    `json:"Id"`
	Title string `json:"Title"`
	Email string `json:"Email"`
}

func (u spUser) directoryUser() models.DirectoryUser {
	return models.DirectoryUser{ID: u.ID, Name: u.Title, Email: u.Email}
}

// EnsureUser resolves a login (email) to a site user, adding it to the site
// when the tenant knows it.
func (c *SharePointClient) EnsureUser(ctx context.Context, email string) (models.DirectoryUser, error) {
	var user spUser
	err := c.do(ctx, spRequest{
		method: http.MethodPost,
		path:   "/_api/web/ensureuser",
		body:   map[string]string{"logonName": email},
	}, &user)
	if err != nil {
		return models.DirectoryUser{}, fmt.Errorf("ensure user %s: %w", email, err)
	}
	return user.directoryUser(), nil
}

func (c *SharePointClient) SearchUsers(ctx context.Context, query string, limit int) ([]models.DirectoryUser, error) {
	literal := odataString(query)
	q := url.Values{}
	q.Set("$select", "Id,Title,Email")
	q.Set("$filter", fmt.Sprintf("substringof(%s,Email) or substringof(%s,Title)", literal, literal))
	if limit > 0 {
		q.Set("$top", strconv.Itoa(limit))
	}

	var page spCollection[spUser]
	if err := c.do(ctx, spRequest{method: http.MethodGet, path: "/_api/web/siteusers", query: q}, &page); err != nil {
		return nil, fmt.Errorf("search site users: %w", err)
	}

	users := make([]models.DirectoryUser, 0, len(page.Value))
	for _, u := range page.Value {
		users = append(users, u.directoryUser())
	}
	return users, nil
}

// SendEmail uses the site's utility endpoint, which only reaches site users.
func (c *SharePointClient) SendEmail(ctx context.Context, email models.Email) error {
	body := map[string]interface{}{
		"properties": map[string]interface{}{
			"__metadata": map[string]string{"type": "SP.Utilities.EmailProperties"},
			"To":         map[string]interface{}{"results": email.To},
			"Subject":    email.Subject,
			"Body":       email.Body,
		},
	}
	err := c.do(ctx, spRequest{
		method:      http.MethodPost,
		path:        "/_api/SP.Utilities.Utility.SendEmail",
		contentType: contentTypeVerbose,
		body:        body,
	}, nil)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
