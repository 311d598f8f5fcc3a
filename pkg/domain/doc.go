/*
Package domain contains the core models shared by the registry, the dispatcher and the transports.

It is kept free of I/O and persistence concerns. Adapters depend on it; it depends only
on the schema package.

# Key Entities

  - Tool: the descriptor of one invocable tool (name, description, category, parameters).
  - Call: a request to run a tool with an argument bag.
  - Response: the uniform success/error envelope returned by every call.
  - Drawing: the record persisted by the built-in drawing tools.
  - Hooks: observability callbacks fired around every dispatched call.
*/
package domain
