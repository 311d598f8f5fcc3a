/*
Package atidraw is a tool server for drawing clients: a registry of named tools, an argument
validator driven by each tool's declared parameters, and a dispatcher that turns every call into a
uniform result envelope.

Five tools are built in: create_drawing, save_drawing, get_drawing, list_drawings and
generate_ai_drawing. They persist drawings through a ports.DrawingStore (memory, Redis or SQLite).

# Envelope

Every call, successful or not, yields a domain.Response. Success envelopes carry the tool's payload
fields at the top level next to "success" and "message"; failures carry only the message:

	{"success": true, "drawingId": "drawing_1709294400000_k3j2h1g0f", "message": "Drawing created successfully", ...}
	{"success": false, "message": "Unknown tool: paint"}

# Usage

	srv, err := atidraw.New(ctx, atidraw.WithSeed(drawing.DefaultSeed))
	if err != nil {
		log.Fatal(err)
	}
	defer srv.Close()

	resp := srv.Dispatch(ctx, "create_drawing", map[string]any{"title": "Sunset"})
	if !resp.Success {
		log.Fatal(resp.Message)
	}

The same Server backs the HTTP adapter (pkg/adapters/http) and the Model Context Protocol adapter
(pkg/adapters/mcp).
*/
package atidraw
