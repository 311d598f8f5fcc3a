package atidraw_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/atidraw"
)

func ExampleNew() {
	ctx := context.Background()
	srv, err := atidraw.New(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer srv.Close()

	resp := srv.Dispatch(ctx, "create_drawing", map[string]any{"title": "Sunset", "width": 320})
	fmt.Println(resp.Success, resp.Message)
	fmt.Println(resp.Payload["title"], resp.Payload["backgroundColor"])

	resp = srv.Dispatch(ctx, "paint", nil)
	fmt.Println(resp.Success, resp.Message)
	// Output:
	// true Drawing created successfully
	// Sunset #ffffff
	// false Unknown tool: paint
}

func ExampleServer_ListTools() {
	srv, err := atidraw.New(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	for _, tool := range srv.ListTools("storage") {
		fmt.Println(tool.Name)
	}
	// Output:
	// save_drawing
	// get_drawing
	// list_drawings
}
