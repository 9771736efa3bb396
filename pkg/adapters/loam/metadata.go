package loam

// NodeMetadata is the frontmatter of a node document.
// The document body is the node message.
type NodeMetadata struct {
	ID      string           `json:"id" mapstructure:"id"`
	Message string           `json:"message" mapstructure:"message"`
	Options []OptionMetadata `json:"options" mapstructure:"options"`
}

// OptionMetadata is one authored option. "to" is accepted as an alias of "next".
type OptionMetadata struct {
	Text string `json:"text" mapstructure:"text"`
	Next string `json:"next" mapstructure:"next"`
	To   string `json:"to" mapstructure:"to"`
}

func (o OptionMetadata) target() string {
	if o.Next != "" {
		return o.Next
	}
	return trimExtension(o.To)
}
