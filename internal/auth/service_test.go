package auth

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(Options{JWT: testJWTConfig()}, logrus.New())
}

func TestService_Login(t *testing.T) {
	s := newTestService()
	assert.Nil(t, s.CurrentUser())

	session, err := s.Login(context.Background(), "jane@example.com", "whatever")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", session.User.Name)
	assert.Equal(t, "jane@example.com", session.User.Email)
	assert.True(t, session.User.ProfileCompleted)
	assert.False(t, session.User.IsPropertyOwner)
	assert.NotEmpty(t, session.Token)

	current := s.CurrentUser()
	require.NotNil(t, current)
	assert.Equal(t, session.User, *current)

	user, err := s.Authenticate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
}

func TestService_LoginRequiresCredentials(t *testing.T) {
	s := newTestService()
	_, err := s.Login(context.Background(), " ", "secret")
	assert.ErrorIs(t, err, ErrCredentialsRequired)
	_, err = s.Login(context.Background(), "jane@example.com", "")
	assert.ErrorIs(t, err, ErrCredentialsRequired)
	assert.Nil(t, s.CurrentUser())
}

func TestService_LoginCancelled(t *testing.T) {
	s := NewService(Options{Delay: time.Hour, JWT: testJWTConfig()}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Login(ctx, "jane@example.com", "secret")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, s.CurrentUser())
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name      string
		req       RegisterRequest
		err       error
		owner     bool
		completed bool
	}{
		{
			name:      "Regular user",
			req:       RegisterRequest{Name: "Amina", Email: "amina@example.com", Password: "pw", ConfirmPassword: "pw", UserType: UserRegular},
			completed: true,
		},
		{
			name:      "Default type is regular",
			req:       RegisterRequest{Name: "Amina", Email: "amina@example.com", Password: "pw", ConfirmPassword: "pw"},
			completed: true,
		},
		{
			name:  "Property owner",
			req:   RegisterRequest{Name: "Otieno", Email: "o@example.com", Password: "pw", ConfirmPassword: "pw", UserType: UserPropertyOwner, IDNumber: "12345678", Company: "Otieno Homes"},
			owner: true,
		},
		{
			name: "Password mismatch",
			req:  RegisterRequest{Name: "Amina", Email: "amina@example.com", Password: "pw", ConfirmPassword: "px"},
			err:  ErrPasswordMismatch,
		},
		{
			name: "Missing name",
			req:  RegisterRequest{Email: "amina@example.com", Password: "pw", ConfirmPassword: "pw"},
			err:  ErrNameRequired,
		},
		{
			name: "Missing email",
			req:  RegisterRequest{Name: "Amina", Password: "pw", ConfirmPassword: "pw"},
			err:  ErrCredentialsRequired,
		},
		{
			name: "Unknown type",
			req:  RegisterRequest{Name: "Amina", Email: "a@example.com", Password: "pw", ConfirmPassword: "pw", UserType: "admin"},
			err:  ErrUnknownUserType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService()
			session, err := s.Register(context.Background(), tt.req)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Nil(t, s.CurrentUser())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, session.User.IsPropertyOwner)
			assert.Equal(t, tt.owner, session.User.IsHost)
			assert.Equal(t, tt.completed, session.User.ProfileCompleted)
			assert.Equal(t, tt.req.IDNumber, session.User.IDNumber)
			assert.Equal(t, tt.req.Company, session.User.Company)
		})
	}
}

func TestService_Logout(t *testing.T) {
	s := newTestService()
	session, err := s.Login(context.Background(), "jane@example.com", "secret")
	require.NoError(t, err)

	s.Logout()
	assert.Nil(t, s.CurrentUser())

	_, err = s.Authenticate(session.Token)
	assert.ErrorIs(t, err, ErrNotSignedIn)

	// logging out twice is harmless
	s.Logout()
}

func TestService_AuthenticateOnlyCurrentSession(t *testing.T) {
	s := newTestService()
	first, err := s.Login(context.Background(), "jane@example.com", "secret")
	require.NoError(t, err)
	second, err := s.Login(context.Background(), "jane@example.com", "secret")
	require.NoError(t, err)

	_, err = s.Authenticate(first.Token)
	assert.ErrorIs(t, err, ErrNotSignedIn)

	_, err = s.Authenticate(second.Token)
	assert.NoError(t, err)

	_, err = s.Authenticate("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
