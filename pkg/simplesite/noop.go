package simplesite

// NoopPublishObserver is a no-operation implementation of PublishObserver
type NoopPublishObserver struct{}

// ObservePublish does nothing
func (NoopPublishObserver) ObservePublish(outcome string, seconds float64) {}
