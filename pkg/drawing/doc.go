/*
Package drawing implements the built-in drawing tools.

Tools returns the five tool descriptors; Service binds them to a ports.DrawingStore
and a ports.ImageGenerator and registers the handlers with a registry.Registry.
Handlers decode their normalized argument bag into typed structs and return
the payload fields merged into the success envelope.
*/
package drawing
