/*
Package dsl provides a fluent builder for constructing arbor conversation trees in Go.

It is an alternative to authoring YAML/JSON or Markdown files, useful for
tests, embedded bots and generated trees.

Example usage:

	b := dsl.New("Hi, how can I help?")
	b.Root().
		Option("Pricing", "pricing").
		Option("Support", "support")

	b.Add("pricing").Say("Our plans start at $10")

	b.Add("support").
		Say("What do you need help with?").
		Option("Billing", "billing")

	b.Add("billing").Say("Write to billing@example.com")

	tree, err := b.Build()
*/
package dsl
