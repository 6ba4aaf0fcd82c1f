package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Flat 4B", want: "Flat 4B"},
		{name: "tags", in: "<b>12</b> <script>x</script>Baker St", want: "12 xBaker St"},
		{name: "encoded tag", in: "&lt;img src=x&gt;221B", want: "221B"},
		{name: "whitespace", in: "  Westminster \n\t Bridge   Rd ", want: "Westminster Bridge Rd"},
		{name: "ampersand kept", in: "Friends &amp; Family", want: "Friends & Family"},
		{name: "double encoded tag", in: "&amp;lt;b&amp;gt;Rd", want: "Rd"},
		{name: "blank", in: " \n ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Fatalf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextIsIdempotent(t *testing.T) {
	inputs := []string{
		"Friends &amp;amp; Family",
		"&amp;lt;b&amp;gt;Rd&amp;lt;/b&amp;gt;",
		"10 Downing St,  London &nbsp; SW1A",
		"<p>Flat&nbsp;2</p>",
	}
	for _, in := range inputs {
		once := Text(in)
		if twice := Text(once); twice != once {
			t.Fatalf("Text(%q) = %q, again %q", in, once, twice)
		}
	}
}
