package pwdhash

import "fmt"

// KnownAnswer is a pinned derivation result
type KnownAnswer struct {
	Password string
	Realm    string
	Profile  string
	Want     string
}

// KnownAnswers returns the vectors checked by SelfTest
func KnownAnswers() []KnownAnswer {
	return []KnownAnswer{
		{Password: "correct-horse-battery", Realm: "example.com", Profile: "default", Want: "jy/ZhFqzS8"},
		{Password: "hunter2", Realm: "example.com", Profile: "default", Want: "EiuA3vDsPQ"},
		{Password: "pässwörd", Realm: "bücher.de", Profile: "default", Want: "4HtxG6ELke"},
		{Password: "correct-horse-battery", Realm: "site203.com", Profile: "default", Want: "+B9FOUNHfM"},
		{Password: "correct-horse-battery", Realm: "site9683.com", Profile: "default", Want: "xaksWlrgzm"},
		{Password: "correct-horse-battery", Realm: "example.com", Profile: "long", Want: "jy/ZhFqzS8UdcwRd"},
	}
}

// SelfTest derives every known answer and checks both the exact output
// and the output policy. A failure means this build derives different
// passwords than every other build.
func SelfTest() error {
	for _, ka := range KnownAnswers() {
		params, ok := Profile(ka.Profile)
		if !ok {
			return fmt.Errorf("self-test: unknown profile %q", ka.Profile)
		}

		got, err := Derive([]byte(ka.Password), ka.Realm, params)
		if err != nil {
			return fmt.Errorf("self-test %s/%s: %w", ka.Profile, ka.Realm, err)
		}
		if got != ka.Want {
			return fmt.Errorf("self-test %s/%s: got %q, want %q", ka.Profile, ka.Realm, got, ka.Want)
		}
		if !Validate(got, params) {
			return fmt.Errorf("self-test %s/%s: %q violates the output policy", ka.Profile, ka.Realm, got)
		}
	}
	return nil
}
