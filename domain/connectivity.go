package domain

// ConnectivitySource reports whether the network is reachable and notifies
// subscribers when that changes.
type ConnectivitySource interface {
	// Online returns the current connectivity status.
	Online() bool
	// OnConnectivityChange registers handler to be called with the new status
	// on every online/offline transition. The returned func unsubscribes.
	OnConnectivityChange(handler func(online bool)) (unsubscribe func())
}
