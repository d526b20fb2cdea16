package loam

// TopicMetadata represents the frontmatter of a topic document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type TopicMetadata struct {
	Name     string   `json:"name" mapstructure:"name"`
	Triggers []string `json:"triggers" mapstructure:"triggers"`

	// Order positions the topic in resolution order. Lower values are matched first.
	Order int `json:"order" mapstructure:"order"`
}
