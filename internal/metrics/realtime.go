package metrics

// IncrementEventPublished counts one published event of the given type
func (m *Metrics) IncrementEventPublished(event string) {
	m.safeExecute("IncrementEventPublished", func() {
		m.EventsPublishedTotal.WithLabelValues(event).Inc()
	})
}

// IncrementEventDropped counts one delivery dropped for a full subscriber buffer
func (m *Metrics) IncrementEventDropped() {
	m.safeExecute("IncrementEventDropped", func() {
		m.EventsDroppedTotal.Inc()
	})
}

func (m *Metrics) WSConnected() {
	m.safeExecute("WSConnected", func() {
		m.WSConnectionsActive.Inc()
	})
}

func (m *Metrics) WSDisconnected() {
	m.safeExecute("WSDisconnected", func() {
		m.WSConnectionsActive.Dec()
	})
}

// IncrementRelayFallback counts an event delivered locally instead of through redis
func (m *Metrics) IncrementRelayFallback() {
	m.safeExecute("IncrementRelayFallback", func() {
		m.RelayFallbackTotal.Inc()
	})
}
