package events

// Topic constants for domain events emitted by the point of sale.
const (
	TopicProductAdded       = "product.added"
	TopicProductUpdated     = "product.updated"
	TopicBundleRecomputed   = "bundle.recomputed"
	TopicCustomerRegistered = "customer.registered"
	TopicOrderPlaced        = "order.placed"
	TopicRateChanged        = "rate.changed"
)

// DefaultTopics returns the canonical list of emitted topics.
func DefaultTopics() []string {
	return []string{
		TopicProductAdded,
		TopicProductUpdated,
		TopicBundleRecomputed,
		TopicCustomerRegistered,
		TopicOrderPlaced,
		TopicRateChanged,
	}
}
