package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPolicyFor(t *testing.T) {
	req := require.New(t)

	p, err := PolicyFor("")
	req.NoError(err)
	req.Equal(DropFrame, p.OnBackPressure("1", "a"))

	p, err = PolicyFor("kick")
	req.NoError(err)
	req.Equal(KickMember, p.OnBackPressure("1", "a"))

	_, err = PolicyFor("ban")
	req.Error(err)
}
