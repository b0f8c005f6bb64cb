package platform

import (
	"context"
	"net/url"
)

// Shellmates is the client for the Shellmates social directory API.
type Shellmates struct {
	c *Client
}

func NewShellmates(c *Client) *Shellmates {
	return &Shellmates{c: c}
}

// Profile is a Shellmates member profile.
type Profile struct {
	Handle  string `json:"handle"`
	Name    string `json:"name"`
	Bio     string `json:"bio"`
	Friends int    `json:"friends"`
}

// GetProfile fetches a member profile by handle.
func (s *Shellmates) GetProfile(ctx context.Context, handle string) (*Profile, error) {
	var p Profile
	if err := s.c.get(ctx, "/api/v1/profiles/"+url.PathEscape(handle), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Friends lists the profiles connected to the given handle.
func (s *Shellmates) Friends(ctx context.Context, handle string) ([]Profile, error) {
	var out struct {
		Friends []Profile `json:"friends"`
	}
	if err := s.c.get(ctx, "/api/v1/profiles/"+url.PathEscape(handle)+"/friends", nil, &out); err != nil {
		return nil, err
	}
	return out.Friends, nil
}
