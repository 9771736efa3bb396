/*
Package file provides filesystem adapters: a loader for single-file trees
authored in YAML or JSON, and a session store that keeps one JSON file per
open dialog.

A tree file carries the greeting under "root" and every other node under
"nodes":

	root:
	  message: Hi, how can I help?
	  options:
	    - text: Pricing
	      next: pricing
	nodes:
	  pricing:
	    message: Our plans start at $10

The flat shape with top-level "message"/"options" (and the "root_message"/
"root_options" shape produced by the HTTP /tree endpoint) is accepted too.
*/
package file
