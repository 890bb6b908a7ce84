package vtcore

// NotificationProvider returns the current desktop notification provider.
func (t *Terminal) NotificationProvider() NotificationProvider {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.notificationProvider
}

// SetNotificationProvider sets the desktop notification provider at runtime.
// Pass nil to silently drop notifications.
func (t *Terminal) SetNotificationProvider(p NotificationProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notificationProvider = p
}

// DesktopNotification delivers a decoded OSC 9 / OSC 99 notification payload
// to the configured provider, writing any response (e.g. a capability query
// reply) back through the response provider.
func (t *Terminal) DesktopNotification(payload *NotificationPayload) {
	if t.middleware != nil && t.middleware.DesktopNotification != nil {
		t.middleware.DesktopNotification(payload, t.desktopNotificationInternal)
		return
	}
	t.desktopNotificationInternal(payload)
}

func (t *Terminal) desktopNotificationInternal(payload *NotificationPayload) {
	t.mu.RLock()
	provider := t.notificationProvider
	t.mu.RUnlock()

	if provider == nil {
		return
	}

	response := provider.Notify(payload)
	if response != "" {
		t.writeResponseString(response)
	}
}
