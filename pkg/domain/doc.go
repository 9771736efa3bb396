/*
Package domain contains the core data model of the arbor dialog engine.

It defines the authored conversation tree and the values a session produces
while walking it. This package is kept pure and free of external dependencies
like I/O or persistence.

# Key Entities

  - Tree: the immutable graph (root greeting plus keyed nodes).
  - Node / Option: a bot utterance and the labeled edges leaving it.
  - Message: one transcript entry, spoken by the bot or typed by the user.
  - Snapshot: the serializable form of a live session.
*/
package domain
