package facebook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newClientForServer(t *testing.T, ts *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(WithBaseURL(ts.URL), WithAccessToken("tok"), WithHTTPClient(ts.Client()))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func TestNewClientRequiresBaseURLAndToken(t *testing.T) {
	if _, err := NewClient(WithAccessToken("tok")); err == nil {
		t.Error("expected error without base URL")
	}
	if _, err := NewClient(WithBaseURL("https://graph.example")); err == nil {
		t.Error("expected error without access token")
	}
}

func TestGetObject(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/100_1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("access_token") != "tok" {
			t.Error("access token missing from query")
		}
		if r.URL.Query().Get("fields") == "" {
			t.Error("fields missing from query")
		}
		w.Write([]byte(`{"id":"100_1","message":"hello","from":{"id":"42","name":"Space News"}}`))
	}))
	defer ts.Close()
	c := newClientForServer(t, ts)

	obj, err := c.GetObject(context.Background(), "100_1", "message,from")
	if err != nil {
		t.Fatalf("GetObject failed: %v", err)
	}
	if obj.Message != "hello" || obj.From == nil || obj.From.Name != "Space News" {
		t.Errorf("unexpected object: %+v", obj)
	}
	if obj.Error != nil {
		t.Errorf("unexpected graph error: %v", obj.Error)
	}
}

func TestGetObjectGraphErrorIsNotAGoError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"(#10) This endpoint requires the pages_read_engagement permission","type":"OAuthException","code":10}}`))
	}))
	defer ts.Close()
	c := newClientForServer(t, ts)

	obj, err := c.GetObject(context.Background(), "100_1", "message")
	if err != nil {
		t.Fatalf("graph-level errors must not surface as Go errors: %v", err)
	}
	if obj.Error == nil {
		t.Fatal("expected graph error object")
	}
	if obj.Error.Code != 10 {
		t.Errorf("unexpected code: %d", obj.Error.Code)
	}
	if !obj.Error.PermissionDenied() {
		t.Error("code 10 should classify as permission denied")
	}
}

func TestGetObjectEmptyID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ts.Close()
	c := newClientForServer(t, ts)

	if _, err := c.GetObject(context.Background(), "", "message"); err == nil {
		t.Error("expected error for empty object id")
	}
}

func TestGraphErrorPermissionClassification(t *testing.T) {
	tests := []struct {
		err  GraphError
		want bool
	}{
		{GraphError{Code: 10}, true},
		{GraphError{Code: 100}, true},
		{GraphError{Code: 104}, true},
		{GraphError{Code: 200}, true},
		{GraphError{Code: 1, Message: "missing permission"}, true},
		{GraphError{Code: 1, Message: "content restricted by privacy settings"}, true},
		{GraphError{Code: 1, Message: "something else"}, false},
	}
	for _, tc := range tests {
		if got := tc.err.PermissionDenied(); got != tc.want {
			t.Errorf("PermissionDenied(code=%d, %q) = %v, want %v", tc.err.Code, tc.err.Message, got, tc.want)
		}
	}
}

func TestPostComment(t *testing.T) {
	var gotPath, gotMessage, gotToken string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		gotMessage = r.PostFormValue("message")
		gotToken = r.PostFormValue("access_token")
		w.Write([]byte(`{"id":"100_2_3"}`))
	}))
	defer ts.Close()
	c := newClientForServer(t, ts)

	if err := c.PostComment(context.Background(), "100_2", "a reply"); err != nil {
		t.Fatalf("PostComment failed: %v", err)
	}
	if gotPath != "/100_2/comments" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotMessage != "a reply" || gotToken != "tok" {
		t.Errorf("unexpected form values: message=%q token=%q", gotMessage, gotToken)
	}
}

func TestPostCommentRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"denied","code":200}}`))
	}))
	defer ts.Close()
	c := newClientForServer(t, ts)

	if err := c.PostComment(context.Background(), "100_2", "a reply"); err == nil {
		t.Error("expected error for rejected comment")
	}
}

func TestPostCommentValidatesInput(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ts.Close()
	c := newClientForServer(t, ts)

	if err := c.PostComment(context.Background(), "", "text"); err == nil {
		t.Error("expected error for empty object id")
	}
	if err := c.PostComment(context.Background(), "100_2", ""); err == nil {
		t.Error("expected error for empty message")
	}
}

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotPayload sendMessageRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type: %s", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.Write([]byte(`{"recipient_id":"555","message_id":"m1"}`))
	}))
	defer ts.Close()
	c := newClientForServer(t, ts)

	if err := c.SendMessage(context.Background(), "555", "here is your answer"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if gotPath != "/me/messages" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotPayload.Recipient.ID != "555" {
		t.Errorf("unexpected recipient: %s", gotPayload.Recipient.ID)
	}
	if gotPayload.MessagingType != "RESPONSE" {
		t.Errorf("expected RESPONSE messaging type, got %s", gotPayload.MessagingType)
	}
	if gotPayload.Message.Text != "here is your answer" {
		t.Errorf("unexpected text: %s", gotPayload.Message.Text)
	}
}

func TestSendMessageRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()
	c := newClientForServer(t, ts)

	if err := c.SendMessage(context.Background(), "555", "text"); err == nil {
		t.Error("expected error for rejected message")
	}
}
