package state

import "movix-cli/model"

const (
	msgLoginFailed    = "Authentication failed"
	msgRegisterFailed = "Registration failed"
	msgLogoutFailed   = "Logout failed"
)

// AuthState is the session slice. IsAuthenticated always equals Token != "".
type AuthState struct {
	User            *model.User
	Token           string
	IsAuthenticated bool
	Loading         bool
	Error           string
}

// IsAdmin reports whether the session belongs to an admin user.
func (s AuthState) IsAdmin() bool {
	return s.User != nil && s.User.IsAdmin
}

// ReduceAuth applies a to the session slice. Actions of other slices are ignored.
func ReduceAuth(s AuthState, a Action) AuthState {
	switch a := a.(type) {
	case Login:
		s = reduceSession(s, a.Lifecycle, a.Response, msgLoginFailed)
	case Register:
		s = reduceSession(s, a.Lifecycle, a.Response, msgRegisterFailed)
	case Logout:
		switch a.Phase {
		case Pending:
			s.Loading = true
			s.Error = ""
		case Fulfilled:
			s.Loading = false
			s.User = nil
			s.Token = ""
		case Rejected:
			s.Loading = false
			s.Error = a.Failure.MessageOr(msgLogoutFailed)
		}
	case ClearAuthError:
		s.Error = ""
	}
	s.IsAuthenticated = s.Token != ""
	return s
}

func reduceSession(s AuthState, l Lifecycle, res model.AuthResponse, fallback string) AuthState {
	switch l.Phase {
	case Pending:
		s.Loading = true
		s.Error = ""
	case Fulfilled:
		s.Loading = false
		user := res.User
		s.User = &user
		s.Token = res.AccessToken
	case Rejected:
		s.Loading = false
		s.Error = l.Failure.MessageOr(fallback)
	}
	return s
}
