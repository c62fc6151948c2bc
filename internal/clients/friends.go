package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	"microblog/internal/observability"
)

// Friends is the friends-service contract the microblog depends on.
type Friends interface {
	GetFriends(ctx context.Context, me string) ([]string, error)
	AddFriend(ctx context.Context, me, user string) ([]string, error)
	RemoveFriend(ctx context.Context, me, user string) ([]string, error)
	Initialize(ctx context.Context) error
}

// ErrTransport wraps failures that happened before a response was read.
var ErrTransport = errors.New("friends service unreachable")

// ErrBadResponse wraps a 200 reply whose body could not be decoded.
var ErrBadResponse = errors.New("friends service sent an unreadable reply")

// StatusError is a reply with a status other than 200.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("friends %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// FriendsClient talks JSON over HTTP to the friends service.
type FriendsClient struct {
	origin string
	client *http.Client
}

// NewFriendsClient constructs the client. A nil httpClient means http.DefaultClient.
func NewFriendsClient(origin string, httpClient *http.Client) *FriendsClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &FriendsClient{origin: strings.TrimRight(origin, "/"), client: httpClient}
}

type friendsResponse struct {
	Friends []string `json:"friends"`
}

type friendRequest struct {
	User string `json:"user"`
}

// GetFriends fetches the friend names of me.
func (f *FriendsClient) GetFriends(ctx context.Context, me string) ([]string, error) {
	var out friendsResponse
	if err := f.do(ctx, "get", http.MethodGet, "/"+url.PathEscape(me), nil, &out); err != nil {
		return nil, err
	}
	return out.Friends, nil
}

// AddFriend adds user to the friend list of me.
func (f *FriendsClient) AddFriend(ctx context.Context, me, user string) ([]string, error) {
	var out friendsResponse
	if err := f.do(ctx, "add", http.MethodPost, "/"+url.PathEscape(me), friendRequest{User: user}, &out); err != nil {
		return nil, err
	}
	return out.Friends, nil
}

// RemoveFriend removes user from the friend list of me.
func (f *FriendsClient) RemoveFriend(ctx context.Context, me, user string) ([]string, error) {
	var out friendsResponse
	if err := f.do(ctx, "remove", http.MethodDelete, "/"+url.PathEscape(me), friendRequest{User: user}, &out); err != nil {
		return nil, err
	}
	return out.Friends, nil
}

// Initialize asks the friends service to re-seed its table.
func (f *FriendsClient) Initialize(ctx context.Context) error {
	return f.do(ctx, "initialize", http.MethodGet, "/initialize", nil, nil)
}

func (f *FriendsClient) do(ctx context.Context, op, method, path string, body any, out any) (err error) {
	ctx, span := otel.Tracer("microblog/clients").Start(ctx, "friends."+op)
	span.SetAttributes(attribute.String("http.method", method), attribute.String("friends.path", path))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, f.origin+path, reader)
	if err != nil {
		return fmt.Errorf("build friends %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := observability.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(observability.RequestIDHeader, id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := f.client.Do(req)
	if err != nil {
		observability.IncFriendsClientRequest(op, "transport_error")
		return fmt.Errorf("%w: %s: %v", ErrTransport, op, err)
	}
	defer resp.Body.Close()

	observability.IncFriendsClientRequest(op, strconv.Itoa(resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadResponse, op, err)
	}
	return nil
}
