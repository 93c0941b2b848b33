package apiclient

// Navigator is told when the client gives up on the session, so the owner of the
// view can send the user back to the login page.
type Navigator interface {
	RedirectToLogin()
}

// NavigatorFunc adapts a plain function to a Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) RedirectToLogin() {
	f()
}

type noopNavigator struct{}

func (noopNavigator) RedirectToLogin() {}
