package services

// Notifier is the notification dispatcher contract. Fire-and-forget:
// implementations log failures and never surface them, so a dropped
// notification cannot roll back the mutation that raised it.
type Notifier interface {
	Notify(userID, kind, title, message, referenceID string, payload map[string]any)
}

// RealtimeEmitter pushes an event to a room, best-effort. Nobody listening is
// not an error.
type RealtimeEmitter interface {
	Emit(room, event string, payload map[string]any)
}

// ProviderRoom names the realtime channel scoped to one provider.
func ProviderRoom(providerID string) string { return "provider:" + providerID }
