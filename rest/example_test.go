package rest_test

import (
	"context"
	"fmt"
	"net/http/httptest"

	"github.com/wesleyorama2/lightrest/internal/gamesapi"
	"github.com/wesleyorama2/lightrest/rest"
)

func Example() {
	server := httptest.NewServer(gamesapi.New())
	defer server.Close()

	client := rest.MustNew(rest.WithBaseURL(server.URL + "/api/"))
	ctx := context.Background()

	text, status, err := client.Post(ctx, "games", `{"title":"game test"}`)
	if err != nil {
		panic(err)
	}
	fmt.Println(status, text)

	game, status, err := rest.Get[gamesapi.Game](ctx, client, "games/1", nil)
	if err != nil {
		panic(err)
	}
	fmt.Println(status, game.Title)
	// Output:
	// 200 {"id":2,"title":"game test"}
	// 200 elden ring
}

func ExampleClient_Send() {
	server := httptest.NewServer(gamesapi.New())
	defer server.Close()

	client := rest.MustNew(rest.WithBaseURL(server.URL))
	req := rest.NewRequest(rest.MethodPut, "/api/games/1").
		AddHeader("X-Request-Id", "42").
		SetBody(gamesapi.Game{Title: "sekiro"})

	text, status, err := client.Send(context.Background(), req)
	if err != nil {
		panic(err)
	}
	fmt.Println(status, text)
	// Output: 200 {"id":1,"title":"sekiro"}
}

func ExampleAsync() {
	server := httptest.NewServer(gamesapi.New())
	defer server.Close()

	client := rest.MustNew(rest.WithBaseURL(server.URL + "/api/"))
	call := rest.Async(context.Background(), func(ctx context.Context) (gamesapi.Game, int, error) {
		return rest.Get[gamesapi.Game](ctx, client, "games/1", nil)
	})

	game, status, err := call.Wait()
	fmt.Println(status, game.ID, game.Title, err)
	// Output: 200 1 elden ring <nil>
}
