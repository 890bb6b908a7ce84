package vtcore

import (
	"encoding/base64"
	"strings"
)

// SetTitle sets the window title (OSC 0/2), notifying the title provider if
// one is configured.
func (t *Terminal) SetTitle(title string) {
	invoke1(t.mw().SetTitle, title, t.setTitleInternal)
}

func (t *Terminal) setTitleInternal(title string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.title = title
	if t.titleProvider != nil {
		t.titleProvider.SetTitle(title)
	}
}

// PushTitle saves the current title onto the title stack (XTWINOPS 22).
func (t *Terminal) PushTitle() {
	invoke0(t.mw().PushTitle, t.pushTitleInternal)
}

func (t *Terminal) pushTitleInternal() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.titleStack = append(t.titleStack, t.title)
	if t.titleProvider != nil {
		t.titleProvider.PushTitle()
	}
}

// PopTitle restores the most recently pushed title (XTWINOPS 23).
func (t *Terminal) PopTitle() {
	invoke0(t.mw().PopTitle, t.popTitleInternal)
}

func (t *Terminal) popTitleInternal() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.titleStack) > 0 {
		t.title = t.titleStack[len(t.titleStack)-1]
		t.titleStack = t.titleStack[:len(t.titleStack)-1]
	}
	if t.titleProvider != nil {
		t.titleProvider.PopTitle()
	}
}

// ClipboardLoad reads from the clipboard provider and answers with an OSC 52
// response carrying the base64-encoded contents.
func (t *Terminal) ClipboardLoad(clipboard byte, terminator string) {
	invoke2(t.mw().ClipboardLoad, clipboard, terminator, t.clipboardLoadInternal)
}

func (t *Terminal) clipboardLoadInternal(clipboard byte, terminator string) {
	if t.clipboardProvider == nil {
		return
	}
	content := t.clipboardProvider.Read(clipboard)
	if content == "" {
		return
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(content))
	t.writeResponseString("\x1b]52;" + string(clipboard) + ";" + encoded + terminator)
}

// ClipboardStore writes data to the clipboard provider via OSC 52.
func (t *Terminal) ClipboardStore(clipboard byte, data []byte) {
	invoke2(t.mw().ClipboardStore, clipboard, data, t.clipboardStoreInternal)
}

func (t *Terminal) clipboardStoreInternal(clipboard byte, data []byte) {
	if t.clipboardProvider != nil {
		t.clipboardProvider.Write(clipboard, data)
	}
}

// SetHyperlink sets the active hyperlink (OSC 8) for subsequently written
// characters; pass nil to clear it.
func (t *Terminal) SetHyperlink(hyperlink *Hyperlink) {
	invoke1(t.mw().SetHyperlink, hyperlink, t.setHyperlinkInternal)
}

func (t *Terminal) setHyperlinkInternal(hyperlink *Hyperlink) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if hyperlink == nil {
		t.currentHyperlink = nil
		return
	}
	t.currentHyperlink = t.hyperlinkIntern.intern(hyperlink.ID, hyperlink.URI)
}

// SetWorkingDirectory records the shell's reported working directory (OSC 7).
func (t *Terminal) SetWorkingDirectory(uri string) {
	invoke1(t.mw().SetWorkingDirectory, uri, t.setWorkingDirectoryInternal)
}

func (t *Terminal) setWorkingDirectoryInternal(uri string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.workingDir = uri
}

// WorkingDirectory returns the raw working-directory URI last reported via
// OSC 7.
func (t *Terminal) WorkingDirectory() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.workingDir
}

// WorkingDirectoryPath extracts the filesystem path from a file:// working
// directory URI, skipping over the host segment.
func (t *Terminal) WorkingDirectoryPath() string {
	t.mu.RLock()
	uri := t.workingDir
	t.mu.RUnlock()

	rest, ok := strings.CutPrefix(uri, "file://")
	if !ok || rest == "" {
		return ""
	}

	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return ""
	}
	return rest[slash:]
}
