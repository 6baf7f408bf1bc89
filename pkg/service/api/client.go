package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
	"github.com/cottonlesergal/ucontrol/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Client implements interfaces.APIClient against the bot's REST surface.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	cache      *responseCache
}

var _ interfaces.APIClient = &Client{}

// Option is a functional option for client configuration
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sets the bearer token attached to every request
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithCacheTTL sets the TTL for the response cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = newResponseCache(ttl)
	}
}

// New creates a REST client for the given base URL
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, goerr.New("API base URL is required")
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      newResponseCache(DefaultCacheTTL),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// apiErrorBody is the optional JSON error payload of a non-2xx response.
type apiErrorBody struct {
	Message string `json:"message"`
}

func cacheKey(method, endpoint string) string {
	return method + " " + endpoint
}

// do performs one HTTP round trip and decodes the JSON response into out.
// Non-2xx responses map to types.ErrAPI with status and server message;
// transport failures map to types.ErrNetwork. No retries.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	u := c.baseURL + "/" + endpoint

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal request body",
				goerr.V(types.EndpointKey, endpoint))
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return goerr.Wrap(err, "failed to build request", goerr.V(types.EndpointKey, endpoint))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(types.ErrNetwork, "request failed",
			goerr.V(types.EndpointKey, endpoint), goerr.V("cause", err.Error()))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerr.Wrap(types.ErrNetwork, "failed to read response body",
			goerr.V(types.EndpointKey, endpoint))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody apiErrorBody
		_ = json.Unmarshal(raw, &errBody)
		msg := errBody.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return goerr.Wrap(types.ErrAPI, msg,
			goerr.V(types.StatusKey, resp.StatusCode),
			goerr.V(types.EndpointKey, endpoint))
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return goerr.Wrap(err, "failed to decode response",
				goerr.V(types.EndpointKey, endpoint))
		}
	}

	if method == http.MethodGet {
		c.cache.put(cacheKey(method, endpoint), raw)
	}

	return nil
}

// getCached serves endpoint from the response cache when a fresh entry
// exists, falling back to a live round trip.
func (c *Client) getCached(ctx context.Context, endpoint string, out any) error {
	key := cacheKey(http.MethodGet, endpoint)
	if body, ok := c.cache.get(key); ok {
		logging.From(ctx).Debug("serving cached response", "endpoint", endpoint)
		return json.Unmarshal(body, out)
	}
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) GetBotUser(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.getCached(ctx, "bot/info", &user); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch bot identity")
	}
	return &user, nil
}

func (c *Client) GetBotOwner(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.getCached(ctx, "bot/info/owner", &user); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch bot owner")
	}
	return &user, nil
}

func (c *Client) ListGuilds(ctx context.Context) ([]model.Guild, error) {
	var guilds []model.Guild
	if err := c.getCached(ctx, "guilds", &guilds); err != nil {
		return nil, goerr.Wrap(err, "failed to list guilds")
	}
	return guilds, nil
}

func (c *Client) GetGuild(ctx context.Context, guildID types.GuildID) (*model.Guild, error) {
	if err := guildID.Validate(); err != nil {
		return nil, err
	}
	var guild model.Guild
	if err := c.getCached(ctx, "guilds/"+guildID.String(), &guild); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch guild", goerr.V(types.GuildKey, guildID))
	}
	return &guild, nil
}

func (c *Client) ListGuildChannels(ctx context.Context, guildID types.GuildID) ([]model.Channel, error) {
	if err := guildID.Validate(); err != nil {
		return nil, err
	}
	var channels []model.Channel
	if err := c.getCached(ctx, "guilds/"+guildID.String()+"/channels", &channels); err != nil {
		return nil, goerr.Wrap(err, "failed to list channels", goerr.V(types.GuildKey, guildID))
	}
	for i := range channels {
		channels[i].Type = types.ParseChannelType(channels[i].Type.String())
	}
	return channels, nil
}

func (c *Client) ListGuildMembers(ctx context.Context, guildID types.GuildID) ([]model.User, error) {
	if err := guildID.Validate(); err != nil {
		return nil, err
	}
	var members []model.User
	if err := c.getCached(ctx, "guilds/"+guildID.String()+"/members", &members); err != nil {
		return nil, goerr.Wrap(err, "failed to list members", goerr.V(types.GuildKey, guildID))
	}
	normalizeStatuses(members)
	return members, nil
}

func (c *Client) ListDMUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.getCached(ctx, "users?dm=true", &users); err != nil {
		return nil, goerr.Wrap(err, "failed to list DM users")
	}
	normalizeStatuses(users)
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, userID types.UserID) (*model.User, error) {
	if err := userID.Validate(); err != nil {
		return nil, err
	}
	var user model.User
	if err := c.getCached(ctx, "users/"+userID.String(), &user); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch user", goerr.V(types.UserKey, userID))
	}
	return &user, nil
}

func (c *Client) OpenDMChannel(ctx context.Context, userID types.UserID) (*model.Channel, error) {
	if err := userID.Validate(); err != nil {
		return nil, err
	}
	var channel model.Channel
	if err := c.do(ctx, http.MethodPost, "users/"+userID.String()+"/dm", nil, &channel); err != nil {
		return nil, goerr.Wrap(err, "failed to open DM channel", goerr.V(types.UserKey, userID))
	}
	return &channel, nil
}

func (c *Client) UpdateUserStatus(ctx context.Context, userID types.UserID, status types.PresenceStatus) error {
	if err := userID.Validate(); err != nil {
		return err
	}
	body := map[string]string{"status": status.String()}
	if err := c.do(ctx, http.MethodPatch, "users/"+userID.String()+"/status", body, nil); err != nil {
		return goerr.Wrap(err, "failed to update user status", goerr.V(types.UserKey, userID))
	}
	return nil
}

func messagesEndpoint(channelID types.ChannelID, query interfaces.MessageQuery) string {
	endpoint := "channels/" + channelID.String() + "/messages"
	params := url.Values{}
	if query.Before != "" {
		params.Set("before", query.Before.String())
	}
	if query.After != "" {
		params.Set("after", query.After.String())
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	return endpoint
}

// ListMessages always performs a live fetch; the cache is only used to serve
// the previous window when the transport fails for an unpaginated load.
func (c *Client) ListMessages(ctx context.Context, channelID types.ChannelID, query interfaces.MessageQuery) ([]model.Message, error) {
	if err := channelID.Validate(); err != nil {
		return nil, err
	}

	endpoint := messagesEndpoint(channelID, query)
	var messages []model.Message
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &messages); err != nil {
		if query.IsZero() {
			if body, ok := c.cache.getStale(cacheKey(http.MethodGet, endpoint)); ok {
				logging.From(ctx).Warn("message fetch failed, serving cached window",
					"channel_id", channelID, "error", err.Error())
				var cached []model.Message
				if decodeErr := json.Unmarshal(body, &cached); decodeErr == nil {
					model.SortMessages(cached)
					return cached, nil
				}
			}
		}
		return nil, goerr.Wrap(err, "failed to list messages", goerr.V(types.ChannelKey, channelID))
	}

	model.SortMessages(messages)
	return messages, nil
}

func (c *Client) PostMessage(ctx context.Context, channelID types.ChannelID, content string) (*model.Message, error) {
	if err := channelID.Validate(); err != nil {
		return nil, err
	}
	if content == "" {
		return nil, goerr.New("message content is required", goerr.V(types.ChannelKey, channelID))
	}

	body := map[string]string{"content": content}
	var msg model.Message
	if err := c.do(ctx, http.MethodPost, "channels/"+channelID.String()+"/messages", body, &msg); err != nil {
		return nil, goerr.Wrap(err, "failed to post message", goerr.V(types.ChannelKey, channelID))
	}
	return &msg, nil
}

func normalizeStatuses(users []model.User) {
	for i := range users {
		users[i].Status = types.ParsePresenceStatus(users[i].Status.String())
	}
}
