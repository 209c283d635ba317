package pwdhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelfTest(t *testing.T) {
	require.NoError(t, SelfTest())
}

func TestKnownAnswersCoverProfiles(t *testing.T) {
	covered := map[string]bool{}
	for _, ka := range KnownAnswers() {
		covered[ka.Profile] = true
	}
	for _, name := range ProfileNames() {
		require.True(t, covered[name], "profile %s has no known answer", name)
	}
}
