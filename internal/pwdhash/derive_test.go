package pwdhash

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bkgoodman/superpwdhash/internal/realm"
)

// Reference vectors freeze the algorithm. If one of these changes, every
// user's site passwords change with it.
var vectors = []struct {
	password string
	realm    string
	profile  string
	want     string
}{
	{"correct-horse-battery", "example.com", "default", "jy/ZhFqzS8"},
	{"correct-horse-battery", "example.org", "default", "dZvK7oN+t1"},
	{"hunter2", "example.com", "default", "EiuA3vDsPQ"},
	{"a", "b", "default", "UuYUwb0IEx"},
	{"pässwörd", "bücher.de", "default", "4HtxG6ELke"},
	{"correct-horse-battery", "example.com", "long", "jy/ZhFqzS8UdcwRd"},

	// truncated text had no lowercase letter: "+B9FOUNHVM"
	{"correct-horse-battery", "site203.com", "default", "+B9FOUNHfM"},
	{"correct-horse-battery", "site410.com", "default", "J958QCF2Ro"},
	{"correct-horse-battery", "site666.com", "default", "IOfW0I3HAX"},

	// truncated text had no upper case letter or digit: "xaksplrgzm"
	{"correct-horse-battery", "site9683.com", "default", "xaksWlrgzm"},
	{"correct-horse-battery", "site10412.com", "default", "/dW+pokbfx"},
	{"correct-horse-battery", "site11656.com", "default", "kytqfyTamv"},
}

func TestDeriveVectors(t *testing.T) {
	for _, v := range vectors {
		t.Run(v.profile+"/"+v.realm, func(t *testing.T) {
			params, ok := Profile(v.profile)
			require.True(t, ok)

			got, err := Derive([]byte(v.password), v.realm, params)
			require.NoError(t, err)
			require.Equal(t, v.want, got)
			require.True(t, Validate(got, params))
		})
	}
}

func TestDeriveSingleRound(t *testing.T) {
	params := DefaultParams()
	params.Rounds = 1

	got, err := Derive([]byte("correct-horse-battery"), "example.com", params)
	require.NoError(t, err)
	require.Equal(t, "sRcQpm2+pV", got)
}

func TestDeriveDeterministic(t *testing.T) {
	params := DefaultParams()
	first, err := Derive([]byte("correct-horse-battery"), "example.com", params)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		again, err := Derive([]byte("correct-horse-battery"), "example.com", params)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestDeriveNormalizesRealm(t *testing.T) {
	params := DefaultParams()
	want, err := Derive([]byte("correct-horse-battery"), "example.com", params)
	require.NoError(t, err)

	for _, site := range []string{"example.com/", "https://example.com", "HTTPS://Example.COM/login?x=1", "  example.com  "} {
		got, err := Derive([]byte("correct-horse-battery"), site, params)
		require.NoError(t, err)
		require.Equal(t, want, got, "site %q", site)
	}
}

func TestDeriveStableUnderPrenormalizedRealm(t *testing.T) {
	params := DefaultParams()
	for _, site := range []string{
		"https://Caf%25C3%25A9.example/",
		"caf%c3%a9.example",
		"0%2580",
		"https://%80.com/",
		"http://[fe80::1%25en0]/",
		"https://B%C3%BCcher.de/",
	} {
		direct, err := Derive([]byte("correct-horse-battery"), site, params)
		require.NoError(t, err)
		viaRealm, err := Derive([]byte("correct-horse-battery"), realm.Normalize(site), params)
		require.NoError(t, err)
		require.Equal(t, direct, viaRealm, "site %q", site)
	}
}

func TestDeriveDoesNotModifyPassword(t *testing.T) {
	password := []byte("correct-horse-battery")
	_, err := Derive(password, "example.com", DefaultParams())
	require.NoError(t, err)
	require.Equal(t, "correct-horse-battery", string(password))
}

func TestDeriveRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name     string
		password []byte
		realm    string
		params   Params
	}{
		{name: "empty password", password: []byte(""), realm: "site.com", params: DefaultParams()},
		{name: "nil password", password: nil, realm: "site.com", params: DefaultParams()},
		{name: "empty realm", password: []byte("pw"), realm: "", params: DefaultParams()},
		{name: "blank realm", password: []byte("pw"), realm: "   ", params: DefaultParams()},
		{name: "length too short", password: []byte("pw"), realm: "site.com", params: Params{Length: 1, Rounds: 10}},
		{name: "length too long", password: []byte("pw"), realm: "site.com", params: Params{Length: MaxLength + 1, Rounds: 10}},
		{name: "zero rounds", password: []byte("pw"), realm: "site.com", params: Params{Length: 10, Rounds: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Derive(tc.password, tc.realm, tc.params)
			require.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
			require.Empty(t, got)
		})
	}
}

func TestDeriveSeparatesFields(t *testing.T) {
	// Plain concatenation would make all of these "abcdef"
	pairs := [][2]string{
		{"abc", "def"},
		{"ab", "cdef"},
		{"abcd", "ef"},
		{"abcde", "f"},
	}

	seen := map[string]string{}
	for _, p := range pairs {
		got, err := Derive([]byte(p[0]), p[1], DefaultParams())
		require.NoError(t, err)
		prev, dup := seen[got]
		require.False(t, dup, "%v collides with %s", p, prev)
		seen[got] = fmt.Sprint(p)
	}
}

func TestDeriveRealmSensitivity(t *testing.T) {
	params := DefaultParams()
	seen := make(map[string]string, 5000)

	for i := 0; i < 5000; i++ {
		site := fmt.Sprintf("site%d.example.com", i)
		got, err := Derive([]byte("correct-horse-battery"), site, params)
		require.NoError(t, err)
		require.Len(t, got, params.Length)
		require.True(t, Validate(got, params), "site %s produced %q", site, got)

		prev, dup := seen[got]
		require.False(t, dup, "%s and %s both derive %q", prev, site, got)
		seen[got] = site
	}
}

func TestDerivePasswordSensitivity(t *testing.T) {
	params := DefaultParams()
	seen := make(map[string]string, 5000)

	for i := 0; i < 5000; i++ {
		password := fmt.Sprintf("master-%d", i)
		got, err := Derive([]byte(password), "example.com", params)
		require.NoError(t, err)
		require.True(t, Validate(got, params))

		prev, dup := seen[got]
		require.False(t, dup, "%s and %s both derive %q", prev, password, got)
		seen[got] = password
	}
}

func TestDeriveConcurrent(t *testing.T) {
	params := DefaultParams()
	want, err := Derive([]byte("correct-horse-battery"), "example.com", params)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Derive([]byte("correct-horse-battery"), "example.com", params)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.Equal(t, want, got)
	}
}

func TestSeedBuffer(t *testing.T) {
	seed := seedBuffer([]byte("pw"), "a.io")
	require.Equal(t, []byte{0, 0, 0, 2, 'p', 'w', 0, 0, 0, 4, 'a', '.', 'i', 'o'}, seed)
}
