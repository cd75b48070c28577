package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/osse101/MentionBot_Go/internal/domain"
)

// Account is the platform's view of the authenticated bot account.
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// MentionsPage is one page of the mention feed.
type MentionsPage struct {
	Items     []domain.Mention `json:"items"`
	NextToken string           `json:"next_token"`
}

// Self fetches the bot's own account identity.
func (c *Client) Self(ctx context.Context) (Account, error) {
	data, err := c.do(ctx, http.MethodGet, PathSelf, nil, nil)
	if err != nil {
		return Account{}, err
	}
	var account Account
	if err := json.Unmarshal(data, &account); err != nil {
		return Account{}, fmt.Errorf("decode account: %w", err)
	}
	if account.ID == "" {
		return Account{}, fmt.Errorf("account response missing id")
	}
	return account, nil
}

// MentionsSince fetches one page of mentions newer than sinceID (exclusive
// lower bound, enforced provider-side). An empty pageToken starts from the
// newest items; the returned NextToken continues the same window.
func (c *Client) MentionsSince(ctx context.Context, sinceID, pageToken string) (MentionsPage, error) {
	query := url.Values{}
	query.Set("page_size", strconv.Itoa(MentionsPageSize))
	if sinceID != "" {
		query.Set("since_id", sinceID)
	}
	if pageToken != "" {
		query.Set("page_token", pageToken)
	}

	data, err := c.do(ctx, http.MethodGet, PathMentions, query, nil)
	if err != nil {
		return MentionsPage{}, err
	}

	var page MentionsPage
	if err := json.Unmarshal(data, &page); err != nil {
		return MentionsPage{}, fmt.Errorf("decode mentions: %w", err)
	}
	return page, nil
}

type replyRequest struct {
	Text      string `json:"text"`
	InReplyTo string `json:"in_reply_to"`
}

type replyResponse struct {
	ID string `json:"id"`
}

// PostReply posts a reply to the given parent item and returns the new
// post's id.
func (c *Client) PostReply(ctx context.Context, text, parentID string) (string, error) {
	data, err := c.do(ctx, http.MethodPost, PathPosts, nil, replyRequest{Text: text, InReplyTo: parentID})
	if err != nil {
		return "", err
	}
	var posted replyResponse
	if err := json.Unmarshal(data, &posted); err != nil {
		return "", fmt.Errorf("decode reply response: %w", err)
	}
	return posted.ID, nil
}
