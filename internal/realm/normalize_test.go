package realm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bkgoodman/superpwdhash/internal/realm"
)

var corpus = []string{
	"",
	"   ",
	"example.com",
	"Example.COM",
	"example.com/",
	"https://example.com",
	"https://Example.com/login?x=1",
	"  http://EXAMPLE.com:8080/a/b#frag  ",
	"example.com:8443/path",
	"user:secret@Mail.Example.com",
	"ftp://files.example.org/pub",
	"http://[2001:DB8::1]:8080/",
	"[::1]",
	"http://[fe80::1%en0]/",
	"bücher.de",
	"https://B%C3%BCcher.de/",
	"my bank",
	"My Bank",
	"http://",
	"://nohost",
	"/just/a/path",
	"#fragment",
	"?q=1",
	"example.com:notaport",
	"foo bar://baz",
	"localhost",
	"192.168.0.1:3000",
	"example.com.",
	"0%2580",
	"https://Caf%25C3%25A9.example/",
	"caf%c3%a9.example",
	"https://%80.com/",
	"http://[fe80::1%25en0]/",
	"https://a%2Fb.example/",
	"https://ex%41mple.com",
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  string
	}{
		{name: "bare host", in: "example.com", out: "example.com"},
		{name: "uppercase host", in: "Example.COM", out: "example.com"},
		{name: "trailing slash", in: "example.com/", out: "example.com"},
		{name: "scheme only", in: "https://example.com", out: "example.com"},
		{name: "path and query", in: "https://Example.com/login?x=1", out: "example.com"},
		{name: "surrounding whitespace and port", in: "  http://EXAMPLE.com:8080/a/b#frag  ", out: "example.com"},
		{name: "port without scheme", in: "example.com:8443/path", out: "example.com"},
		{name: "userinfo", in: "user:secret@Mail.Example.com", out: "mail.example.com"},
		{name: "other scheme", in: "ftp://files.example.org/pub", out: "files.example.org"},
		{name: "ipv6 literal", in: "http://[2001:DB8::1]:8080/", out: "[2001:db8::1]"},
		{name: "bracketed ipv6", in: "[::1]", out: "[::1]"},
		{name: "unicode host", in: "bücher.de", out: "bücher.de"},
		{name: "escaped unicode host", in: "https://B%C3%BCcher.de/", out: "bücher.de"},
		{name: "label with space", in: "My Bank", out: "my bank"},
		{name: "scheme without host", in: "http://", out: "http://"},
		{name: "path only", in: "/just/a/path", out: "/just/a/path"},
		{name: "invalid port", in: "example.com:notaport", out: "example.com:notaport"},
		{name: "ip with port", in: "192.168.0.1:3000", out: "192.168.0.1"},
		{name: "escaped percent in host", in: "https://Caf%25C3%25A9.example/", out: "https://caf%25c3%25a9.example/"},
		{name: "escaped percent without scheme", in: "0%2580", out: "0%2580"},
		{name: "escape decoding to invalid utf8", in: "https://%80.com/", out: "https://%80.com/"},
		{name: "escaped ascii in host", in: "https://ex%41mple.com", out: "https://ex%41mple.com"},
		{name: "empty", in: "", out: ""},
		{name: "blank", in: "   ", out: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.out, realm.Normalize(tc.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range corpus {
		once := realm.Normalize(in)
		require.Equal(t, once, realm.Normalize(once), "input %q", in)
	}
}

func TestNormalizeSameSite(t *testing.T) {
	want := realm.Normalize("example.com")
	for _, in := range []string{"example.com/", "https://example.com", "HTTPS://EXAMPLE.COM/", " example.com "} {
		require.Equal(t, want, realm.Normalize(in), "input %q", in)
	}
}

func FuzzNormalizeIdempotent(f *testing.F) {
	for _, in := range corpus {
		f.Add(in)
	}

	f.Fuzz(func(t *testing.T, in string) {
		once := realm.Normalize(in)
		if twice := realm.Normalize(once); twice != once {
			t.Fatalf("Normalize(%q) = %q, Normalize again = %q", in, once, twice)
		}
	})
}
