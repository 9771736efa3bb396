/*
Package arbor is a scripted dialog-tree engine for building guided chat
exchanges: support widgets, FAQ bots and onboarding flows.

A conversation is authored once as a tree of nodes. Each node carries a bot
message and a list of labeled options; the user advances by typing a label
exactly (surrounding whitespace ignored). There is no language understanding
and no fuzzy matching: unmatched input is ignored, and an option pointing at a
missing node produces an in-band error message while the dialog stays usable.

# Usage

Load a tree from a YAML/JSON file or a directory of Markdown documents and
drive a session:

	eng, err := arbor.New("./support.yaml")
	if err != nil {
		log.Fatal(err)
	}

	s := eng.NewSession("visitor-1")
	s.SetPendingInput("Pricing")
	if s.Submit() == dialog.OutcomeAdvanced {
		for _, m := range s.Messages() {
			fmt.Printf("%s: %s\n", m.Sender, m.Text)
		}
	}

Trees can also be built in Go with package dsl and served through the
memory loader. Hosts that keep many dialogs (HTTP, MCP) use package session,
which persists each live dialog through a ports.SessionStore.
*/
package arbor
