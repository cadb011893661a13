package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	resolver := NewResolver(Table{
		Usernames: map[string]string{
			"k": "81477690",
		},
		Passwords: map[string]string{
			"k": "real-secret",
		},
	})

	out := resolver.Resolve(Credentials{Username: "k", Password: "k"})
	require.Equal(t, "81477690", out.Username)
	require.Equal(t, "real-secret", out.Password)

	// username lookup is normalized, secret lookup is exact
	out = resolver.Resolve(Credentials{Username: " K ", Password: "K"})
	require.Equal(t, "81477690", out.Username)
	require.Equal(t, "K", out.Password)
}

func TestResolvePassthrough(t *testing.T) {
	resolver := NewResolver(Table{})

	in := Credentials{Username: "76112233", Password: "hunter2"}
	require.Equal(t, in, resolver.Resolve(in))
}
