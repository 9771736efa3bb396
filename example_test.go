package arbor_test

import (
	"fmt"
	"log"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/dsl"
)

// ExampleNew_memory builds a tree in Go and walks the pricing branch.
func ExampleNew_memory() {
	b := dsl.New("Hi, how can I help?")
	b.Root().Option("Pricing", "pricing").Option("Support", "support")
	b.Add("pricing").Say("Our plans start at $10")
	b.Add("support").Say("Email us at help@example.com")

	loader, err := b.Loader()
	if err != nil {
		log.Fatal(err)
	}

	engine, err := arbor.New("", arbor.WithLoader(loader))
	if err != nil {
		log.Fatal(err)
	}

	s := engine.NewSession("example")

	s.SetPendingInput("pricing") // case-sensitive: ignored
	s.Submit()

	s.SetPendingInput("  Pricing ")
	s.Submit()

	for _, m := range s.Messages() {
		fmt.Printf("%s: %q\n", m.Sender, m.Text)
	}
	fmt.Println("terminal:", s.IsTerminal())

	// Output:
	// bot: "Hi, how can I help?"
	// user: "  Pricing "
	// bot: "Our plans start at $10"
	// terminal: true
}
