package vtcore

// ApplicationCommandReceived handles an APC string. A 'G' prefix is the
// Kitty graphics protocol; anything else is forwarded to the configured APC
// provider unparsed.
func (t *Terminal) ApplicationCommandReceived(data []byte) {
	invoke1(t.mw().ApplicationCommandReceived, data, t.applicationCommandReceivedInternal)
}

func (t *Terminal) applicationCommandReceivedInternal(data []byte) {
	if len(data) > 0 && data[0] == 'G' {
		t.handleKittyGraphics(data)
		return
	}
	if t.apcProvider != nil {
		t.apcProvider.Receive(data)
	}
}

// PrivacyMessageReceived forwards a PM string to the configured provider.
func (t *Terminal) PrivacyMessageReceived(data []byte) {
	invoke1(t.mw().PrivacyMessageReceived, data, t.privacyMessageReceivedInternal)
}

func (t *Terminal) privacyMessageReceivedInternal(data []byte) {
	if t.pmProvider != nil {
		t.pmProvider.Receive(data)
	}
}

// StartOfStringReceived forwards an SOS string to the configured provider.
func (t *Terminal) StartOfStringReceived(data []byte) {
	invoke1(t.mw().StartOfStringReceived, data, t.startOfStringReceivedInternal)
}

func (t *Terminal) startOfStringReceivedInternal(data []byte) {
	if t.sosProvider != nil {
		t.sosProvider.Receive(data)
	}
}
