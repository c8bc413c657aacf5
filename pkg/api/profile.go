package api

import (
	"context"
	"net/url"

	"github.com/go-resty/resty/v2"
)

// ProfileUpdate holds the editable profile fields. Empty fields are left alone.
type ProfileUpdate struct {
	DisplayName string `json:"display_name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Location    string `json:"location,omitempty"`
	Website     string `json:"website,omitempty"`
}

// Fields returns the non-empty fields keyed by their JSON names
func (u ProfileUpdate) Fields() map[string]any {
	out := map[string]any{}
	if u.DisplayName != "" {
		out["display_name"] = u.DisplayName
	}
	if u.Bio != "" {
		out["bio"] = u.Bio
	}
	if u.Location != "" {
		out["location"] = u.Location
	}
	if u.Website != "" {
		out["website"] = u.Website
	}
	return out
}

// Profile fetches a user's public profile
func (c *Client) Profile(ctx context.Context, userID string) ([]byte, error) {
	return c.get(ctx, "profile", "/users/"+url.PathEscape(userID), nil)
}

// UpdateProfile edits the current user's profile
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) ([]byte, error) {
	return c.send(ctx, resty.MethodPut, "update_profile", "/users/me", update)
}

// ToggleFollow follows or unfollows a user
func (c *Client) ToggleFollow(ctx context.Context, userID string) ([]byte, error) {
	return c.send(ctx, resty.MethodPost, "follow", "/users/"+url.PathEscape(userID)+"/follow", nil)
}
