// Package client provides a Go client for the chronicle API.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/westeroschronicles/chronicle/internal/model"
	"github.com/westeroschronicles/chronicle/internal/vote"
)

// ErrUsernameTaken is returned by Signup when the alias is already claimed.
var ErrUsernameTaken = errors.New("username taken")

// Client is a chronicle API client. Signup or Login fills Token; every
// later call sends it as a bearer token.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Signup registers a persona and stores the returned token on the client.
func (c *Client) Signup(username, password, house string) (*model.Profile, error) {
	var result struct {
		Profile model.Profile `json:"profile"`
		Token   string        `json:"token"`
	}
	err := c.call(http.MethodPost, "/api/auth/signup", map[string]string{
		"username": username,
		"password": password,
		"house":    house,
	}, &result)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	c.Token = result.Token
	return &result.Profile, nil
}

// Login authenticates an existing persona and stores the token.
func (c *Client) Login(username, password string) (*model.Profile, error) {
	var result struct {
		Profile model.Profile `json:"profile"`
		Token   string        `json:"token"`
	}
	err := c.call(http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	c.Token = result.Token
	return &result.Profile, nil
}

// Me fetches the signed-in persona.
func (c *Client) Me() (*model.Profile, error) {
	var result struct {
		Profile model.Profile `json:"profile"`
	}
	if err := c.call(http.MethodGet, "/api/auth/me", nil, &result); err != nil {
		return nil, err
	}
	return &result.Profile, nil
}

// PostStory creates a chapter. parentID empty starts a new thread.
func (c *Client) PostStory(title, content, region, parentID string) (*model.Story, error) {
	body := map[string]string{
		"title":   title,
		"content": content,
	}
	if region != "" {
		body["region"] = region
	}
	if parentID != "" {
		body["parent_id"] = parentID
	}
	var result struct {
		Story model.Story `json:"story"`
	}
	if err := c.call(http.MethodPost, "/api/stories", body, &result); err != nil {
		return nil, err
	}
	return &result.Story, nil
}

// PostComment comments on a chapter.
func (c *Client) PostComment(storyID, text string) (*model.Comment, error) {
	var result struct {
		Comment model.Comment `json:"comment"`
	}
	err := c.call(http.MethodPost, "/api/stories/"+storyID+"/comments", map[string]string{"text": text}, &result)
	if err != nil {
		return nil, err
	}
	return &result.Comment, nil
}

// Vote toggles the persona's vote on a chapter. direction is "up" or "down".
func (c *Client) Vote(storyID, direction string) (*vote.Result, error) {
	var result vote.Result
	err := c.call(http.MethodPost, "/api/votes", map[string]string{
		"story_id":  storyID,
		"direction": direction,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SendRaven sends a direct message to another persona by username.
func (c *Client) SendRaven(to, body string) (*model.Raven, error) {
	var result struct {
		Raven model.Raven `json:"raven"`
	}
	err := c.call(http.MethodPost, "/api/ravens", map[string]string{"to": to, "body": body}, &result)
	if err != nil {
		return nil, err
	}
	return &result.Raven, nil
}

// PostDiscussion opens a community thread. Content is markdown-free rich
// text; the server sanitizes it.
func (c *Client) PostDiscussion(title, category, content string) (*model.Discussion, error) {
	var result struct {
		Discussion model.Discussion `json:"discussion"`
	}
	err := c.call(http.MethodPost, "/api/discussions", map[string]string{
		"title":    title,
		"category": category,
		"content":  content,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result.Discussion, nil
}

// VoteDiscussion toggles the persona's vote on a discussion thread.
func (c *Client) VoteDiscussion(discussionID, direction string) (*vote.Result, error) {
	var result vote.Result
	err := c.call(http.MethodPost, "/api/discussions/"+discussionID+"/votes", map[string]string{
		"direction": direction,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// call performs a JSON round trip and decodes the response into out.
func (c *Client) call(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(respBody, &envelope)
		if envelope.Error == "" {
			envelope.Error = string(respBody)
		}
		return &APIError{Status: resp.StatusCode, Message: envelope.Error}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}
