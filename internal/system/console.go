package system

type logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// TakeConsole puts the active VT into graphics mode and hides the cursor. The returned
// function undoes both. Failures are only logged.
func TakeConsole(l logger) (restore func()) {
	logStep(l, "KD_GRAPHICS set", SetGraphicsMode())
	logStep(l, "cursor hidden", HideCursor())
	return func() {
		logStep(l, "cursor shown", ShowCursor())
		logStep(l, "KD_TEXT set", RestoreTextMode())
	}
}

func logStep(l logger, done string, err error) {
	if l == nil {
		return
	}
	if err != nil {
		l.Errorf("tty", "%v", err)
		return
	}
	l.Infof("tty", "%s", done)
}
