// Package mcp exposes dialogs as Model Context Protocol tools so an agent
// can walk a dialog tree: open_dialog, submit_reply, view_dialog,
// reset_dialog and close_dialog. The tree itself is served as the
// arbor://tree resource.
package mcp
