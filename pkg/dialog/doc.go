/*
Package dialog implements the conversation-tree navigation state machine.

A Session owns the mutable state of one conversation: the append-only
transcript, the options valid for the next turn and the text the user is
still composing. Presentation code feeds raw text in through SetPendingInput
and Submit, then re-reads Messages and CurrentOptions to draw itself.

	s := dialog.New(tree)
	s.SetPendingInput("Pricing")
	s.Submit()
	for _, m := range s.Messages() {
		fmt.Println(m.Sender, m.Text)
	}

Submit never fails. Input that matches no option is ignored, and an option
that points at a missing node is reported in the transcript itself.

A Session is not safe for concurrent use. Hosts that serve many users keep
one Session per conversation and serialize calls (see package session).
*/
package dialog
