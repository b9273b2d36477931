package discord

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBotProviderRoleMutations(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	bot := NewBot(Config{
		APIBaseURL: srv.URL,
		BotToken:   "token123",
		GuildID:    "guild1",
	})

	if err := bot.AssignRole(context.Background(), "user1", "role1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Fatalf("method = %s", gotMethod)
	}
	if gotPath != "/guilds/guild1/members/user1/roles/role1" {
		t.Fatalf("path = %s", gotPath)
	}
	if gotAuth != "Bot token123" {
		t.Fatalf("auth = %s", gotAuth)
	}

	if err := bot.RemoveRole(context.Background(), "user1", "role1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Fatalf("method = %s", gotMethod)
	}
}

func TestBotProviderSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Missing Permissions"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	bot := NewBot(Config{APIBaseURL: srv.URL, BotToken: "t", GuildID: "g"})
	if err := bot.AssignRole(context.Background(), "u", "r"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
